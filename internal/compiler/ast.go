package compiler

import (
	"fmt"
	"strconv"

	gast "github.com/yuin/goldmark/ast"
)

// GroupKind selects the grammar and emission of a block group.
type GroupKind int

const (
	// GroupCheckbox is a list of [ ] items.
	GroupCheckbox GroupKind = iota
	// GroupRadio is a list of ( ) items.
	GroupRadio
	// GroupSortable is a list of ^ items.
	GroupSortable
	// GroupAssociative is a list of @ categories with * members.
	GroupAssociative
)

func (k GroupKind) String() string {
	switch k {
	case GroupCheckbox:
		return "checkbox"
	case GroupRadio:
		return "radio"
	case GroupSortable:
		return "sortable"
	case GroupAssociative:
		return "associative"
	}
	return "GroupKind(" + strconv.Itoa(int(k)) + ")"
}

// KindGroup is the node kind of a block group.
var KindGroup = gast.NewNodeKind("QuizGroup")

// Group is a block of consecutive item lines. Its children are Items.
type Group struct {
	gast.BaseBlock
	GroupKind GroupKind
	// Indent is the column of the first marker.
	Indent int

	blank bool
}

// Kind implements ast.Node.
func (n *Group) Kind() gast.NodeKind { return KindGroup }

// Dump implements ast.Node.
func (n *Group) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"GroupKind": n.GroupKind.String(),
		"Indent":    strconv.Itoa(n.Indent),
	}, nil)
}

// KindItem is the node kind of a group item.
var KindItem = gast.NewNodeKind("QuizItem")

// Item is one line-started entry of a group. Its lines are the label text.
type Item struct {
	gast.BaseBlock
	Correct  bool
	Category bool
}

// Kind implements ast.Node.
func (n *Item) Kind() gast.NodeKind { return KindItem }

// Dump implements ast.Node.
func (n *Item) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Correct":  fmt.Sprint(n.Correct),
		"Category": fmt.Sprint(n.Category),
	}, nil)
}

// KindTextInput is the node kind of a text input span.
var KindTextInput = gast.NewNodeKind("QuizTextInput")

// TextInput is a {{ ... }} span.
type TextInput struct {
	gast.BaseInline
	Value string
	Size  int
}

// Kind implements ast.Node.
func (n *TextInput) Kind() gast.NodeKind { return KindTextInput }

// Dump implements ast.Node.
func (n *TextInput) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Value": n.Value,
		"Size":  strconv.Itoa(n.Size),
	}, nil)
}

// MenuOption is one {...} segment of a select menu span.
type MenuOption struct {
	Label   string
	Correct bool
}

// KindSelectMenu is the node kind of a select menu span.
var KindSelectMenu = gast.NewNodeKind("QuizSelectMenu")

// SelectMenu is a ({...}{+...}) span.
type SelectMenu struct {
	gast.BaseInline
	Options []MenuOption
}

// Kind implements ast.Node.
func (n *SelectMenu) Kind() gast.NodeKind { return KindSelectMenu }

// Dump implements ast.Node.
func (n *SelectMenu) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Options": fmt.Sprint(n.Options),
	}, nil)
}

// KindSolution is the node kind of a solution container.
var KindSolution = gast.NewNodeKind("QuizSolution")

// Solution holds content shown only in the solution variant.
type Solution struct {
	gast.BaseBlock
}

// Kind implements ast.Node.
func (n *Solution) Kind() gast.NodeKind { return KindSolution }

// Dump implements ast.Node.
func (n *Solution) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}
