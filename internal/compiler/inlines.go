package compiler

import (
	"bytes"
	"unicode/utf8"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	textInputOpen  = []byte("{{")
	textInputClose = []byte("}}")
	menuOpen       = []byte("({")
	menuClose      = []byte("})")
)

// textInputParser recognizes {{ ... }} spans. The closing delimiter must be
// on the same line; otherwise the span is left as text.
type textInputParser struct{}

func (textInputParser) Trigger() []byte {
	return []byte{'{'}
}

func (textInputParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, textInputOpen) {
		return nil
	}
	body := line[len(textInputOpen):]
	end := bytes.Index(body, textInputClose)
	if end < 0 {
		return nil
	}
	body = body[:end]
	block.Advance(len(textInputOpen) + end + len(textInputClose))
	return &TextInput{
		Value: string(bytes.TrimSpace(body)),
		Size:  utf8.RuneCount(body),
	}
}

// selectMenuParser recognizes ({a}{+b}{c}) spans.
type selectMenuParser struct{}

func (selectMenuParser) Trigger() []byte {
	return []byte{'('}
}

func (selectMenuParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, menuOpen) {
		return nil
	}
	body := line[len(menuOpen):]
	end := bytes.Index(body, menuClose)
	if end < 0 {
		return nil
	}
	block.Advance(len(menuOpen) + end + len(menuClose))
	return &SelectMenu{Options: parseMenuOptions(body[:end])}
}

// parseMenuOptions splits "a}{+b}{c" into options. A leading '+' marks the
// option correct.
func parseMenuOptions(body []byte) []MenuOption {
	var opts []MenuOption
	for i := 0; i < len(body); {
		var opt MenuOption
		if body[i] == '+' {
			opt.Correct = true
			i++
		}
		start := i
		for i < len(body) && body[i] != '}' {
			i++
		}
		opt.Label = string(body[start:i])
		opts = append(opts, opt)
		for i < len(body) && body[i] != '{' {
			i++
		}
		i++
	}
	return opts
}
