package review

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/net/html"
)

type runKind int

const (
	runEqual runKind = iota
	runInserted
	runRemoved
)

// run is a span of tokens with the same diff verdict. Equal and removed
// runs carry submitted text; inserted runs carry expected text.
type run struct {
	kind runKind
	text string
}

// compareWords diffs actual against expected word by word. Tokens are
// compared by their normalized form but runs keep the text as written.
func compareWords(actual, expected string, n *normalizer) []run {
	at, et := tokenize(actual), tokenize(expected)
	keys := map[string]rune{}
	encode := func(tokens []string) []rune {
		out := make([]rune, len(tokens))
		for i, tok := range tokens {
			k := n.token(tok)
			r, ok := keys[k]
			if !ok {
				r = rune(len(keys) + 1)
				keys[k] = r
			}
			out[i] = r
		}
		return out
	}
	a, e := encode(at), encode(et)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	var runs []run
	ai, ei := 0, 0
	for _, d := range dmp.DiffMainRunes(a, e, false) {
		count := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			runs = appendRun(runs, runEqual, at[ai:ai+count])
			ai += count
			ei += count
		case diffmatchpatch.DiffInsert:
			runs = appendRun(runs, runInserted, et[ei:ei+count])
			ei += count
		case diffmatchpatch.DiffDelete:
			runs = appendRun(runs, runRemoved, at[ai:ai+count])
			ai += count
		}
	}
	return insertsFirst(runs)
}

func appendRun(runs []run, kind runKind, tokens []string) []run {
	if len(tokens) == 0 {
		return runs
	}
	return append(runs, run{kind: kind, text: strings.Join(tokens, "")})
}

// insertsFirst reorders every block of adjacent changes so inserted runs
// precede removed ones, merging runs of the same kind.
func insertsFirst(runs []run) []run {
	out := make([]run, 0, len(runs))
	for i := 0; i < len(runs); {
		if runs[i].kind == runEqual {
			out = append(out, runs[i])
			i++
			continue
		}
		var ins, del strings.Builder
		for ; i < len(runs) && runs[i].kind != runEqual; i++ {
			if runs[i].kind == runInserted {
				ins.WriteString(runs[i].text)
			} else {
				del.WriteString(runs[i].text)
			}
		}
		if ins.Len() > 0 {
			out = append(out, run{kind: runInserted, text: ins.String()})
		}
		if del.Len() > 0 {
			out = append(out, run{kind: runRemoved, text: del.String()})
		}
	}
	return out
}

// exact reports whether the diff found no change.
func exact(runs []run) bool {
	for _, r := range runs {
		if r.kind != runEqual {
			return false
		}
	}
	return true
}

// reviewMarkup shows both the expected and the submitted text.
func reviewMarkup(id string, runs []run) string {
	var b strings.Builder
	b.WriteString(`<span id="` + html.EscapeString(id) + `" class="inputText-review error detailed">`)
	for _, r := range runs {
		switch r.kind {
		case runEqual:
			b.WriteString("<span>" + html.EscapeString(r.text) + "</span>")
		case runInserted:
			b.WriteString("<ins>" + html.EscapeString(r.text) + "</ins>")
		case runRemoved:
			b.WriteString("<del>" + html.EscapeString(r.text) + "</del>")
		}
	}
	b.WriteString("</span>")
	return b.String()
}

// filledMarkup masks missing text and highlights wrong text.
func filledMarkup(id string, runs []run) string {
	var b strings.Builder
	b.WriteString(`<span id="` + html.EscapeString(id) + `" class="inputText-review error">`)
	for _, r := range runs {
		switch r.kind {
		case runEqual:
			b.WriteString("<span>" + html.EscapeString(r.text) + "</span>")
		case runInserted:
			b.WriteString(`<ins class="masked">&hellip;</ins>`)
		case runRemoved:
			b.WriteString("<mark>" + html.EscapeString(r.text) + "</mark>")
		}
	}
	b.WriteString("</span>")
	return b.String()
}
