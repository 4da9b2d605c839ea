package compiler

import (
	"bytes"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// marker describes an item marker found at the start of a line.
type marker struct {
	width    int
	correct  bool
	category bool
}

// memberIndent is how far associative members sit past their category.
const memberIndent = 2

// matchMarker checks b, which starts at the first non-space character of a
// line, for an item marker of the given group kind.
func matchMarker(kind GroupKind, b []byte) (marker, bool) {
	switch kind {
	case GroupCheckbox:
		return matchBox(b, '[', ']')
	case GroupRadio:
		return matchBox(b, '(', ')')
	case GroupSortable:
		if bytes.HasPrefix(b, []byte("^ ")) {
			return marker{width: 2}, true
		}
	case GroupAssociative:
		if bytes.HasPrefix(b, []byte("@ ")) {
			return marker{width: 2, category: true}, true
		}
		if bytes.HasPrefix(b, []byte("* ")) {
			return marker{width: 2}, true
		}
	}
	return marker{}, false
}

func matchBox(b []byte, open, close byte) (marker, bool) {
	if len(b) < 4 || b[0] != open || b[2] != close || b[3] != ' ' {
		return marker{}, false
	}
	switch b[1] {
	case ' ':
		return marker{width: 4}, true
	case 'x', '+':
		return marker{width: 4, correct: true}, true
	}
	return marker{}, false
}

// groupParser recognizes one kind of block group.
type groupParser struct {
	kind GroupKind
}

func (p *groupParser) Trigger() []byte {
	switch p.kind {
	case GroupCheckbox:
		return []byte{'['}
	case GroupRadio:
		return []byte{'('}
	case GroupSortable:
		return []byte{'^'}
	default:
		return []byte{'@'}
	}
}

// itemMarker reports whether a line inside group g starts a new item.
// Associative categories must sit at the group's indent and members at
// least memberIndent columns past it.
func (p *groupParser) itemMarker(g *Group, line []byte, width, pos int) (marker, bool) {
	m, ok := matchMarker(p.kind, line[pos:])
	if !ok || p.kind != GroupAssociative {
		return m, ok
	}
	if m.category {
		return m, width < g.Indent+memberIndent
	}
	return m, width >= g.Indent+memberIndent
}

func (p *groupParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, parser.NoChildren
	}
	m, ok := matchMarker(p.kind, line[pos:])
	if !ok || (p.kind == GroupAssociative && !m.category) {
		return nil, parser.NoChildren
	}
	node := &Group{GroupKind: p.kind, Indent: pc.BlockIndent()}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *groupParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	g := node.(*Group)
	line, segment := reader.PeekLine()
	if util.IsBlank(line) {
		g.blank = true
		return parser.Continue | parser.NoChildren
	}
	width, pos := util.IndentWidth(line, reader.LineOffset())
	if _, ok := p.itemMarker(g, line, width, pos); !ok && g.blank {
		return parser.Close
	}
	g.blank = false
	g.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

// Close splits the collected lines into items. Marker lines start an item;
// other lines continue the label of the current one.
func (p *groupParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {
	g := node.(*Group)
	source := reader.Source()
	lines := g.Lines()
	var item *Item
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw := source[seg.Start:seg.Stop]
		width, pos := util.IndentWidth(raw, 0)
		if pos < len(raw) {
			if m, ok := p.itemMarker(g, raw, width, pos); ok {
				item = &Item{Correct: m.correct, Category: m.category}
				g.AppendChild(g, item)
				appendLabel(item, text.NewSegment(seg.Start+pos+m.width, seg.Stop), source)
				continue
			}
		}
		if item != nil {
			appendLabel(item, seg, source)
		}
	}
	for c := g.FirstChild(); c != nil; c = c.NextSibling() {
		trimLastLine(c, source)
	}
	g.SetLines(text.NewSegments())
}

func appendLabel(item *Item, seg text.Segment, source []byte) {
	seg = seg.TrimLeftSpace(source)
	if seg.IsEmpty() {
		return
	}
	item.Lines().Append(seg)
}

func trimLastLine(n gast.Node, source []byte) {
	lines := n.Lines()
	last := lines.Len() - 1
	if last < 0 {
		return
	}
	seg := lines.At(last)
	lines.Set(last, seg.TrimRightSpace(source))
}

func (p *groupParser) CanInterruptParagraph() bool {
	return false
}

func (p *groupParser) CanAcceptIndentedLine() bool {
	return false
}

// solutionParser recognizes ::: fenced containers.
type solutionParser struct{}

var solutionFence = []byte(":::")

func (solutionParser) Trigger() []byte {
	return []byte{':'}
}

func (solutionParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], solutionFence) {
		return nil, parser.NoChildren
	}
	rest := bytes.TrimSpace(line[pos+len(solutionFence):])
	if len(rest) != 0 && !bytes.Equal(rest, []byte("solution")) {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return &Solution{}, parser.HasChildren
}

func (solutionParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if bytes.Equal(bytes.TrimSpace(line), solutionFence) {
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(segment.Len() - newline)
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

func (solutionParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {}

func (solutionParser) CanInterruptParagraph() bool {
	return true
}

func (solutionParser) CanAcceptIndentedLine() bool {
	return false
}
