package review

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pavelanni/quizmark/internal/htmltree"
	"github.com/pavelanni/quizmark/internal/model"
)

func (g *grading) choiceGroup(id string, items []model.ChoiceItem, answer model.Answer) {
	ok := true
	for _, item := range items {
		checked := slices.Contains(answer, item.ID)
		if checked {
			g.review.ByID(item.ID).SetAttr("checked", "checked")
			g.filled.ByID(item.ID).SetAttr("checked", "checked")
			g.trace(item.Label)
		}
		if checked != item.Value {
			g.markItem(item.ID)
			ok = false
		}
	}
	if !ok {
		g.fail(id)
	}
}

func (g *grading) selectMenu(c *model.SelectMenu, answer string) {
	i := slices.IndexFunc(c.Items, func(item model.ChoiceItem) bool {
		return item.ID == answer
	})
	if i >= 0 {
		item := c.Items[i]
		g.review.ByID(item.ID).SetAttr("selected", "selected")
		g.filled.ByID(item.ID).SetAttr("selected", "selected")
		g.trace(item.Label)
	}
	if i < 0 || !c.Items[i].Value {
		g.fail(c.ID)
	}
}

func (g *grading) inputText(c *model.InputText, answer string) {
	actual := strings.TrimSpace(answer)
	expected := strings.TrimSpace(c.Value)
	g.trace(actual)
	g.review.ByID(c.ID).SetAttr("value", actual)
	g.filled.ByID(c.ID).SetAttr("value", actual)

	runs := compareWords(actual, expected, g.norm)
	if exact(runs) {
		return
	}
	g.review.ByID(c.ID).ReplaceWithHtml(reviewMarkup(c.ID, runs))
	g.filled.ByID(c.ID).ReplaceWithHtml(filledMarkup(c.ID, runs))
	// A mask directly followed by the wrong text says the same thing twice.
	g.filled.Find(htmltree.IDSelector(c.ID) + " ins.masked + mark").Prev().Remove()
	g.fail(c.ID)
}

func (g *grading) sortableGroup(c *model.SortableGroup, answer model.Answer) {
	filled := g.filled.ByID(c.ID).AddClass(disabledClass)
	review := g.review.ByID(c.ID).AddClass(disabledClass)
	for _, id := range answer {
		htmltree.MoveInto(filled, filled, "item-"+id)
		htmltree.MoveInto(review, review, "item-"+id)
	}

	ok := true
	for _, item := range c.Items {
		pos := slices.Index(answer, item.ID)
		g.trace(fmt.Sprintf("%d: %s", pos+1, item.Label))
		if pos != item.Value {
			g.markItem(item.ID)
			ok = false
		}
	}
	if !ok {
		g.fail(c.ID)
	}
}

func (g *grading) associativeGroup(c *model.AssociativeGroup, answer model.Answer) {
	filled := g.filled.ByID(c.ID).AddClass(disabledClass)
	review := g.review.ByID(c.ID).AddClass(disabledClass)

	submitted := partitionAnswer(c, answer)
	for _, cat := range submitted {
		filledTarget, reviewTarget := dropTarget(filled, cat.Header.ID), dropTarget(review, cat.Header.ID)
		for _, m := range cat.Members {
			htmltree.MoveInto(filled, filledTarget, "item-"+m.ID)
			htmltree.MoveInto(review, reviewTarget, "item-"+m.ID)
			if cat.Header.ID != model.LeftoversID {
				g.trace(cat.Header.Label + ": " + m.Label)
			}
		}
	}

	ok := true
	authored := model.PartitionByHeader(c.Items)
	seen := map[string]bool{}
	for _, cat := range submitted {
		if cat.Header.ID == model.LeftoversID {
			continue
		}
		seen[cat.Header.ID] = true
		i := slices.IndexFunc(authored, func(a model.Category) bool {
			return a.Header.ID == cat.Header.ID
		})
		if i < 0 {
			ok = false
			continue
		}
		if !g.compareMembers(cat, authored[i]) {
			ok = false
		}
	}
	// An authored category that was never submitted has all its members
	// missing.
	for _, cat := range authored {
		if seen[cat.Header.ID] {
			continue
		}
		for _, m := range cat.Members {
			g.markItem(m.ID)
			ok = false
		}
	}
	if !ok {
		g.fail(c.ID)
	}
}

// compareMembers marks membership mismatches in both directions.
func (g *grading) compareMembers(submitted, authored model.Category) bool {
	ok := true
	for _, m := range submitted.Members {
		if !authored.Contains(m.ID) {
			g.markItem(m.ID)
			ok = false
		}
	}
	for _, m := range authored.Members {
		if !submitted.Contains(m.ID) {
			g.markItem(m.ID)
			ok = false
		}
	}
	return ok
}

// partitionAnswer groups submitted ids the way authored items are grouped.
// The leftovers sentinel opens a bucket of unassigned items; unknown ids
// are skipped.
func partitionAnswer(c *model.AssociativeGroup, answer model.Answer) []model.Category {
	items := make([]model.AssociativeItem, 0, len(answer))
	for _, id := range answer {
		if id == model.LeftoversID {
			items = append(items, model.AssociativeItem{ID: model.LeftoversID, Category: true})
			continue
		}
		i := slices.IndexFunc(c.Items, func(item model.AssociativeItem) bool {
			return item.ID == id
		})
		if i >= 0 {
			items = append(items, c.Items[i])
		}
	}
	return model.PartitionByHeader(items)
}

// dropTarget returns the container submitted members of a category go to.
func dropTarget(fieldset *goquery.Selection, categoryID string) *goquery.Selection {
	if categoryID == model.LeftoversID {
		return fieldset.ChildrenFiltered(".items")
	}
	return fieldset.Find(htmltree.IDSelector("category-"+categoryID) + " .dropTarget")
}
