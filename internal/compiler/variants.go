package compiler

import (
	"fmt"
	"math/rand/v2"

	"github.com/PuerkitoBio/goquery"

	"github.com/pavelanni/quizmark/internal/htmltree"
	"github.com/pavelanni/quizmark/internal/model"
)

// buildVariants derives the solution and prompt markup from the template.
func buildVariants(form *model.Form, rnd *rand.Rand) error {
	solution, err := htmltree.Parse(form.HTML.Template)
	if err != nil {
		return fmt.Errorf("solution variant: %w", err)
	}
	for _, c := range form.Controls {
		applySolution(solution, c)
	}
	if form.HTML.Solution, err = solution.HTML(); err != nil {
		return fmt.Errorf("solution variant: %w", err)
	}

	prompt, err := htmltree.Parse(form.HTML.Template)
	if err != nil {
		return fmt.Errorf("prompt variant: %w", err)
	}
	prompt.Find(".solution").Remove()
	prompt.Find("fieldset.sortable").Each(func(_ int, s *goquery.Selection) {
		htmltree.Shuffle(s, ".item", rnd)
	})
	prompt.Find("fieldset.associative > .items").Each(func(_ int, s *goquery.Selection) {
		htmltree.Shuffle(s, ".item", rnd)
	})
	if form.HTML.Prompt, err = prompt.HTML(); err != nil {
		return fmt.Errorf("prompt variant: %w", err)
	}
	return nil
}

// applySolution fills the correct answer of c into the tree and disables
// its inputs.
func applySolution(tree *htmltree.Tree, c model.Control) {
	switch c := c.(type) {
	case *model.CheckboxGroup:
		applyChoices(tree, c.Items)
	case *model.RadioGroup:
		applyChoices(tree, c.Items)
	case *model.SelectMenu:
		tree.ByID(c.ID).SetAttr("disabled", "disabled")
		for _, item := range c.Items {
			if item.Value {
				tree.ByID(item.ID).SetAttr("selected", "selected")
			}
		}
	case *model.InputText:
		tree.ByID(c.ID).SetAttr("value", c.Value).SetAttr("disabled", "disabled")
	case *model.SortableGroup:
		fs := tree.ByID(c.ID).AddClass("disabled")
		fs.Find("input").SetAttr("disabled", "disabled")
	case *model.AssociativeGroup:
		fs := tree.ByID(c.ID).AddClass("disabled")
		for _, cat := range model.PartitionByHeader(c.Items) {
			target := fs.Find(htmltree.IDSelector("category-"+cat.Header.ID) + " .dropTarget")
			for _, m := range cat.Members {
				htmltree.MoveInto(fs, target, "item-"+m.ID)
			}
		}
		fs.Find("input").SetAttr("disabled", "disabled")
	}
}

func applyChoices(tree *htmltree.Tree, items []model.ChoiceItem) {
	for _, item := range items {
		input := tree.ByID(item.ID).SetAttr("disabled", "disabled")
		if item.Value {
			input.SetAttr("checked", "checked")
		}
	}
}
