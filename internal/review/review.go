// Package review grades submissions against compiled forms.
package review

import (
	"fmt"
	"log/slog"

	"github.com/pavelanni/quizmark/internal/htmltree"
	"github.com/pavelanni/quizmark/internal/model"
)

// Options alter how free-text answers are compared.
type Options struct {
	// MatchCase makes text comparison case-sensitive.
	MatchCase bool `json:"matchCase"`
	// Latinize folds accented letters to their Latin base before comparing.
	Latinize bool `json:"latinize"`
}

// Engine grades submissions. It keeps no per-call state and is safe for
// concurrent use.
type Engine struct {
	opts Options
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Grade checks values against form and returns the review. The form is not
// modified. A control of unknown type aborts grading with
// model.ErrUnknownControlType.
func (e *Engine) Grade(form *model.Form, values model.Values) (*model.Review, error) {
	g, err := newGrading(form, e.opts)
	if err != nil {
		return nil, err
	}
	for i, c := range form.Controls {
		if err := g.grade(c, values); err != nil {
			return nil, fmt.Errorf("control %d: %w", i, err)
		}
	}
	if g.result.HTML.Filled, err = g.filled.HTML(); err != nil {
		return nil, err
	}
	if g.result.HTML.Review, err = g.review.HTML(); err != nil {
		return nil, err
	}
	slog.Debug("submission graded", "signature", shortSignature(form.Signature),
		"controls", len(form.Controls), "errors", len(g.result.ErrorIDs))
	return g.result, nil
}

func shortSignature(sig string) string {
	if len(sig) > 8 {
		return sig[:8]
	}
	return sig
}

// grading holds the working trees of one Grade call.
type grading struct {
	norm   *normalizer
	filled *htmltree.Tree
	review *htmltree.Tree
	result *model.Review
}

func newGrading(form *model.Form, opts Options) (*grading, error) {
	filled, err := htmltree.Parse(form.HTML.Prompt)
	if err != nil {
		return nil, fmt.Errorf("filled tree: %w", err)
	}
	review, err := htmltree.Parse(form.HTML.Template)
	if err != nil {
		return nil, fmt.Errorf("review tree: %w", err)
	}
	g := &grading{
		norm:   newNormalizer(opts),
		filled: filled,
		review: review,
		result: model.NewReview(),
	}
	g.clearInputs(g.filled)
	g.clearInputs(g.review)
	return g, nil
}

// clearInputs disables every field and drops any preset answer.
func (g *grading) clearInputs(t *htmltree.Tree) {
	t.Find("input, select").SetAttr("disabled", "disabled").RemoveAttr("checked")
	t.Find("option").RemoveAttr("selected")
	t.Find(`input[type="text"]`).SetAttr("value", "")
}

func (g *grading) grade(c model.Control, values model.Values) error {
	switch c := c.(type) {
	case *model.CheckboxGroup:
		g.choiceGroup(c.ID, c.Items, values[c.ID])
	case *model.RadioGroup:
		g.choiceGroup(c.ID, c.Items, values[c.ID])
	case *model.SelectMenu:
		g.selectMenu(c, values[c.ID].Scalar())
	case *model.InputText:
		g.inputText(c, values[c.ID].Scalar())
	case *model.SortableGroup:
		g.sortableGroup(c, values[c.ID])
	case *model.AssociativeGroup:
		g.associativeGroup(c, values[c.ID])
	default:
		return fmt.Errorf("%w: %T", model.ErrUnknownControlType, c)
	}
	return nil
}

func (g *grading) trace(s string) {
	g.result.Input = append(g.result.Input, s)
}

// fail records the control as incorrect and marks it in the review tree.
func (g *grading) fail(id string) {
	g.result.ErrorIDs = append(g.result.ErrorIDs, id)
	g.review.ByID(id).AddClass(errorClass)
}

func (g *grading) markItem(id string) {
	g.review.ByID("item-" + id).AddClass(errorClass)
}

const (
	errorClass    = "error"
	disabledClass = "disabled"
)
