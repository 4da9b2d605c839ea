// Package compiler turns quiz markup into forms: HTML in three variants plus
// the answer key of every interactive control.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/pavelanni/quizmark/internal/model"
)

// ErrRender is returned when the markup renderer fails.
var ErrRender = errors.New("render markup")

// Extension adds the quiz grammar to a goldmark instance.
type Extension struct {
	st *state
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(&groupParser{kind: GroupCheckbox}, 50),
			util.Prioritized(&groupParser{kind: GroupRadio}, 51),
			util.Prioritized(&groupParser{kind: GroupSortable}, 52),
			util.Prioritized(&groupParser{kind: GroupAssociative}, 53),
			util.Prioritized(solutionParser{}, 54),
		),
		parser.WithInlineParsers(
			util.Prioritized(textInputParser{}, 90),
			util.Prioritized(selectMenuParser{}, 91),
		),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&controlRenderer{st: e.st}, 100),
	))
}

// Compiler compiles quiz markup. A Compiler holds state for the duration of
// one Compile call and must not be used concurrently.
type Compiler struct {
	md  goldmark.Markdown
	st  *state
	rnd *rand.Rand
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRand sets the source used to shuffle items in the prompt variant.
func WithRand(r *rand.Rand) Option {
	return func(c *Compiler) {
		c.rnd = r
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		st:  &state{},
		rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.md = goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			&Extension{st: c.st},
		),
	)
	c.st.renderer = c.md.Renderer()
	return c
}

// Compile compiles input into a form.
func (c *Compiler) Compile(input string) (*model.Form, error) {
	form := &model.Form{
		Signature: Signature(input),
		Text:      input,
		Controls:  model.ControlList{},
	}
	c.st.reset(form)
	defer c.st.reset(nil)

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(input), &buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	form.HTML.Template = buf.String()

	if err := buildVariants(form, c.rnd); err != nil {
		return nil, err
	}
	slog.Debug("form compiled", "signature", form.Signature[:8], "controls", len(form.Controls))
	return form, nil
}
