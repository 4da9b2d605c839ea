package compiler

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/pavelanni/quizmark/internal/model"
)

// state is shared by the parsers and renderers of one compiler.
type state struct {
	reg      registry
	renderer renderer.Renderer
}

func (s *state) reset(form *model.Form) {
	s.reg.form = form
}

// controlRenderer writes control markup and registers each control at the
// moment its markup is written.
type controlRenderer struct {
	st *state
}

func (r *controlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindGroup, r.renderGroup)
	reg.Register(KindTextInput, r.renderTextInput)
	reg.Register(KindSelectMenu, r.renderSelectMenu)
	reg.Register(KindSolution, r.renderSolution)
}

func (r *controlRenderer) renderGroup(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	g := node.(*Group)
	var err error
	switch g.GroupKind {
	case GroupCheckbox, GroupRadio:
		err = r.renderChoiceGroup(w, source, g)
	case GroupSortable:
		err = r.renderSortableGroup(w, source, g)
	case GroupAssociative:
		err = r.renderAssociativeGroup(w, source, g)
	}
	if err != nil {
		return gast.WalkStop, err
	}
	return gast.WalkSkipChildren, nil
}

func (r *controlRenderer) renderChoiceGroup(w util.BufWriter, source []byte, g *Group) error {
	id := r.st.reg.nextID()
	var items *[]model.ChoiceItem
	inputType, class := "checkbox", "checkboxGroup"
	if g.GroupKind == GroupRadio {
		ctl := &model.RadioGroup{ID: id, Items: []model.ChoiceItem{}}
		r.st.reg.add(ctl)
		items = &ctl.Items
		inputType, class = "radio", "radioGroup"
	} else {
		ctl := &model.CheckboxGroup{ID: id, Items: []model.ChoiceItem{}}
		r.st.reg.add(ctl)
		items = &ctl.Items
	}

	openTag(w, "fieldset", "id", id, "class", class)
	_ = w.WriteByte('\n')
	for c := g.FirstChild(); c != nil; c = c.NextSibling() {
		item := c.(*Item)
		itemID := ItemID(id, len(*items))
		label, err := r.renderLabel(source, item)
		if err != nil {
			return err
		}
		*items = append(*items, model.ChoiceItem{ID: itemID, Value: item.Correct, Label: label})

		openTag(w, "div", "id", "item-"+itemID, "class", "item")
		voidTag(w, "input", "id", itemID, "name", id, "type", inputType, "value", itemID)
		openTag(w, "label", "for", itemID)
		_, _ = w.WriteString(label)
		closeTag(w, "label")
		closeTag(w, "div")
		_ = w.WriteByte('\n')
	}
	closeTag(w, "fieldset")
	_ = w.WriteByte('\n')
	return nil
}

func (r *controlRenderer) renderSortableGroup(w util.BufWriter, source []byte, g *Group) error {
	ctl := &model.SortableGroup{ID: r.st.reg.nextID(), Items: []model.SortableItem{}}
	r.st.reg.add(ctl)

	openTag(w, "fieldset", "id", ctl.ID, "class", "sortable")
	_ = w.WriteByte('\n')
	for c := g.FirstChild(); c != nil; c = c.NextSibling() {
		itemID := ItemID(ctl.ID, len(ctl.Items))
		label, err := r.renderLabel(source, c)
		if err != nil {
			return err
		}
		ctl.Items = append(ctl.Items, model.SortableItem{ID: itemID, Value: len(ctl.Items), Label: label})
		writeDraggable(w, ctl.ID, itemID, label)
	}
	closeTag(w, "fieldset")
	_ = w.WriteByte('\n')
	return nil
}

// renderAssociativeGroup writes the categories block followed by the items
// block. A browser posts the hidden inputs in document order, so the
// submission reads "category, members..., leftovers, members...".
func (r *controlRenderer) renderAssociativeGroup(w util.BufWriter, source []byte, g *Group) error {
	ctl := &model.AssociativeGroup{ID: r.st.reg.nextID(), Items: []model.AssociativeItem{}}
	r.st.reg.add(ctl)

	var categories, members bytes.Buffer
	cw, mw := bufio.NewWriter(&categories), bufio.NewWriter(&members)
	for c := g.FirstChild(); c != nil; c = c.NextSibling() {
		item := c.(*Item)
		itemID := ItemID(ctl.ID, len(ctl.Items))
		label, err := r.renderLabel(source, item)
		if err != nil {
			return err
		}
		ctl.Items = append(ctl.Items, model.AssociativeItem{ID: itemID, Label: label, Category: item.Category})
		if !item.Category {
			writeDraggable(mw, ctl.ID, itemID, label)
			continue
		}
		openTag(cw, "div", "id", "category-"+itemID, "class", "category")
		voidTag(cw, "input", "id", itemID, "name", ctl.ID, "type", "hidden", "value", itemID)
		openTag(cw, "div", "class", "label")
		_, _ = cw.WriteString(label)
		closeTag(cw, "div")
		openTag(cw, "div", "class", "dropTarget")
		closeTag(cw, "div")
		closeTag(cw, "div")
		_ = cw.WriteByte('\n')
	}
	if err := cw.Flush(); err != nil {
		return err
	}
	if err := mw.Flush(); err != nil {
		return err
	}

	openTag(w, "fieldset", "id", ctl.ID, "class", "associative")
	_ = w.WriteByte('\n')
	openTag(w, "div", "class", "categories")
	_ = w.WriteByte('\n')
	_, _ = w.Write(categories.Bytes())
	closeTag(w, "div")
	_ = w.WriteByte('\n')
	openTag(w, "div", "class", "items")
	voidTag(w, "input", "name", ctl.ID, "type", "hidden", "value", model.LeftoversID)
	_ = w.WriteByte('\n')
	_, _ = w.Write(members.Bytes())
	closeTag(w, "div")
	_ = w.WriteByte('\n')
	closeTag(w, "fieldset")
	_ = w.WriteByte('\n')
	return nil
}

func writeDraggable(w util.BufWriter, name, id, label string) {
	openTag(w, "div", "id", "item-"+id, "class", "item")
	openTag(w, "span", "class", "drag-handle")
	closeTag(w, "span")
	voidTag(w, "input", "id", id, "name", name, "type", "hidden", "value", id)
	openTag(w, "label")
	_, _ = w.WriteString(label)
	closeTag(w, "label")
	closeTag(w, "div")
	_ = w.WriteByte('\n')
}

// renderLabel renders the inline children of an item on their own. Inline
// controls inside the label are registered as a side effect.
func (r *controlRenderer) renderLabel(source []byte, item gast.Node) (string, error) {
	var buf bytes.Buffer
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if err := r.st.renderer.Render(&buf, source, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *controlRenderer) renderTextInput(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	n := node.(*TextInput)
	ctl := &model.InputText{ID: r.st.reg.nextID(), Value: n.Value}
	r.st.reg.add(ctl)
	voidTag(w, "input", "id", ctl.ID, "name", ctl.ID, "type", "text", "size", strconv.Itoa(n.Size))
	return gast.WalkContinue, nil
}

func (r *controlRenderer) renderSelectMenu(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	n := node.(*SelectMenu)
	ctl := &model.SelectMenu{ID: r.st.reg.nextID(), Items: []model.ChoiceItem{}}
	r.st.reg.add(ctl)
	openTag(w, "select", "id", ctl.ID, "name", ctl.ID)
	for _, opt := range n.Options {
		itemID := ItemID(ctl.ID, len(ctl.Items))
		ctl.Items = append(ctl.Items, model.ChoiceItem{ID: itemID, Value: opt.Correct, Label: opt.Label})
		openTag(w, "option", "id", itemID, "value", itemID)
		_, _ = w.Write(util.EscapeHTML([]byte(opt.Label)))
		closeTag(w, "option")
	}
	closeTag(w, "select")
	return gast.WalkContinue, nil
}

func (r *controlRenderer) renderSolution(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		openTag(w, "div", "class", "solution")
		_ = w.WriteByte('\n')
	} else {
		closeTag(w, "div")
		_ = w.WriteByte('\n')
	}
	return gast.WalkContinue, nil
}

// openTag writes a start tag. attrs alternate between names and values.
func openTag(w util.BufWriter, name string, attrs ...string) {
	_ = w.WriteByte('<')
	_, _ = w.WriteString(name)
	writeAttrs(w, attrs)
	_ = w.WriteByte('>')
}

func voidTag(w util.BufWriter, name string, attrs ...string) {
	_ = w.WriteByte('<')
	_, _ = w.WriteString(name)
	writeAttrs(w, attrs)
	_, _ = w.WriteString("/>")
}

func closeTag(w util.BufWriter, name string) {
	_, _ = w.WriteString("</")
	_, _ = w.WriteString(name)
	_ = w.WriteByte('>')
}

func writeAttrs(w util.BufWriter, attrs []string) {
	for i := 0; i+1 < len(attrs); i += 2 {
		_ = w.WriteByte(' ')
		_, _ = w.WriteString(attrs[i])
		_, _ = w.WriteString(`="`)
		_, _ = w.Write(util.EscapeHTML([]byte(attrs[i+1])))
		_ = w.WriteByte('"')
	}
}
