// Package htmltree loads HTML fragments into a queryable, mutable tree and
// serializes them back.
package htmltree

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Tree is a parsed HTML fragment.
type Tree struct {
	doc  *goquery.Document
	body *goquery.Selection
}

// Parse loads an HTML fragment. The fragment is placed in a document body,
// so top-level text and elements are preserved in order.
func Parse(fragment string) (*Tree, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return &Tree{doc: doc, body: doc.Find("body").First()}, nil
}

// Find returns every element in the fragment matching a CSS selector.
func (t *Tree) Find(selector string) *goquery.Selection {
	return t.body.Find(selector)
}

// ByID returns the element with the given id. Ids produced by the compiler
// may start with a digit, so the lookup uses an attribute selector.
func (t *Tree) ByID(id string) *goquery.Selection {
	return t.body.Find(IDSelector(id)).First()
}

// HTML serializes the fragment.
func (t *Tree) HTML() (string, error) {
	out, err := t.body.Html()
	if err != nil {
		return "", fmt.Errorf("serialize fragment: %w", err)
	}
	return out, nil
}

// IDSelector returns a CSS selector matching the element with the given id.
func IDSelector(id string) string {
	return `[id="` + cssEscaper.Replace(id) + `"]`
}

var cssEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Shuffle reorders the children of parent that match selector using r. The
// matching children are re-appended after every non-matching child.
func Shuffle(parent *goquery.Selection, selector string, r *rand.Rand) {
	parent = parent.First()
	items := parent.ChildrenFiltered(selector)
	n := items.Length()
	if n < 2 {
		return
	}
	nodes := items.Nodes
	perm := r.Perm(n)
	for _, i := range perm {
		parent.AppendNodes(nodes[i])
	}
}

// MoveInto appends the element with the given id found inside scope to the
// first element of target. It is a no-op when the element is not inside
// scope or target is empty.
func MoveInto(scope, target *goquery.Selection, id string) {
	el := scope.Find(IDSelector(id)).First()
	if el.Length() == 0 || target.Length() == 0 {
		return
	}
	target.First().AppendSelection(el)
}
