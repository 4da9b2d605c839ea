package compiler

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/pavelanni/quizmark/internal/htmltree"
	"github.com/pavelanni/quizmark/internal/model"
)

func newTestCompiler() *Compiler {
	return New(WithRand(rand.New(rand.NewPCG(1, 2))))
}

func mustCompile(t *testing.T, input string) *model.Form {
	t.Helper()
	form, err := newTestCompiler().Compile(input)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return form
}

func mustTree(t *testing.T, fragment string) *htmltree.Tree {
	t.Helper()
	tree, err := htmltree.Parse(fragment)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tree
}

func TestCompileGolden(t *testing.T) {
	for _, name := range []string{"checkboxGroup", "sortableGroup"} {
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join("testdata", name+".md"))
			if err != nil {
				t.Fatalf("read source: %v", err)
			}
			data, err := os.ReadFile(filepath.Join("testdata", name+".golden.json"))
			if err != nil {
				t.Fatalf("read golden: %v", err)
			}
			var want struct {
				Signature string            `json:"signature"`
				Controls  model.ControlList `json:"controls"`
			}
			if err := json.Unmarshal(data, &want); err != nil {
				t.Fatalf("decode golden: %v", err)
			}

			form := mustCompile(t, string(src))
			if form.Signature != want.Signature {
				t.Errorf("signature: got %s, want %s", form.Signature, want.Signature)
			}
			if diff := cmp.Diff(want.Controls, form.Controls); diff != "" {
				t.Errorf("controls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIdentifierDerivation(t *testing.T) {
	const sig = "5185a87c9c41a8b7d10847c0feea457431737676cc78fa4f632029ba79b24ed8"
	if got, want := ControlID(sig, 0), "c-46b48f3e"; got != want {
		t.Errorf("ControlID: got %s, want %s", got, want)
	}
	if got, want := ControlID(sig, 1), "c-f02bdb2f"; got != want {
		t.Errorf("ControlID: got %s, want %s", got, want)
	}
	if got, want := ItemID("c-46b48f3e", 1), "0966d970"; got != want {
		t.Errorf("ItemID: got %s, want %s", got, want)
	}
}

func TestNextIDStableUntilRegistration(t *testing.T) {
	reg := registry{form: &model.Form{Signature: Signature("text")}}
	first := reg.nextID()
	if second := reg.nextID(); second != first {
		t.Fatalf("nextID changed without registration: %s then %s", first, second)
	}
	reg.add(&model.InputText{ID: first})
	if third := reg.nextID(); third == first {
		t.Errorf("nextID did not advance after registration")
	}
}

func TestCompileDeterministic(t *testing.T) {
	const input = "Pick:\n\n( ) one\n(x) two\n\nType {{ three }} and choose ({a}{+b}).\n\n^ first\n^ second\n^ third\n"
	a := mustCompile(t, input)
	formB, err := New().Compile(input)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a.Signature != formB.Signature {
		t.Errorf("signatures differ: %s, %s", a.Signature, formB.Signature)
	}
	if a.HTML.Template != formB.HTML.Template {
		t.Errorf("templates differ:\n%s\n%s", a.HTML.Template, formB.HTML.Template)
	}
	if a.HTML.Solution != formB.HTML.Solution {
		t.Errorf("solutions differ")
	}
	if diff := cmp.Diff(a.Controls, formB.Controls); diff != "" {
		t.Errorf("controls differ (-a +b):\n%s", diff)
	}
}

func TestCompilerReuse(t *testing.T) {
	c := newTestCompiler()
	first, err := c.Compile("{{ a }}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := c.Compile("plain text")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(first.Controls) != 1 {
		t.Errorf("first form: got %d controls, want 1", len(first.Controls))
	}
	if len(second.Controls) != 0 {
		t.Errorf("second form: got %d controls, want 0", len(second.Controls))
	}
}

func TestRadioGroup(t *testing.T) {
	form := mustCompile(t, "( ) red\n(+) green\n( ) blue\n")
	if len(form.Controls) != 1 {
		t.Fatalf("got %d controls, want 1", len(form.Controls))
	}
	rg, ok := form.Controls[0].(*model.RadioGroup)
	if !ok {
		t.Fatalf("got %T, want *model.RadioGroup", form.Controls[0])
	}
	want := []model.ChoiceItem{
		{ID: ItemID(rg.ID, 0), Value: false, Label: "red"},
		{ID: ItemID(rg.ID, 1), Value: true, Label: "green"},
		{ID: ItemID(rg.ID, 2), Value: false, Label: "blue"},
	}
	if diff := cmp.Diff(want, rg.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if rg.ID != ControlID(form.Signature, 0) {
		t.Errorf("got id %s, want %s", rg.ID, ControlID(form.Signature, 0))
	}

	tree := mustTree(t, form.HTML.Template)
	fs := tree.ByID(rg.ID)
	if !fs.Is("fieldset") || !fs.HasClass("radioGroup") {
		t.Errorf("control element is not a radioGroup fieldset")
	}
	if n := fs.Find(`input[type="radio"]`).Length(); n != 3 {
		t.Errorf("got %d radio inputs, want 3", n)
	}
	if got := tree.ByID("item-" + want[1].ID).Find("label").AttrOr("for", ""); got != want[1].ID {
		t.Errorf("label for: got %q, want %q", got, want[1].ID)
	}

	solution := mustTree(t, form.HTML.Solution)
	if _, ok := solution.ByID(want[1].ID).Attr("checked"); !ok {
		t.Error("correct item is not checked in solution")
	}
	if _, ok := solution.ByID(want[0].ID).Attr("checked"); ok {
		t.Error("incorrect item is checked in solution")
	}
	if n := solution.Find(`input:not([disabled])`).Length(); n != 0 {
		t.Errorf("%d inputs left enabled in solution", n)
	}
}

func TestInlineControls(t *testing.T) {
	form := mustCompile(t, "Answer {{ one  }} and ({a}{+b}{c}).\n")
	if len(form.Controls) != 2 {
		t.Fatalf("got %d controls, want 2", len(form.Controls))
	}
	in, ok := form.Controls[0].(*model.InputText)
	if !ok {
		t.Fatalf("first control: got %T, want *model.InputText", form.Controls[0])
	}
	if in.Value != "one" {
		t.Errorf("value: got %q, want %q", in.Value, "one")
	}
	menu, ok := form.Controls[1].(*model.SelectMenu)
	if !ok {
		t.Fatalf("second control: got %T, want *model.SelectMenu", form.Controls[1])
	}
	want := []model.ChoiceItem{
		{ID: ItemID(menu.ID, 0), Label: "a"},
		{ID: ItemID(menu.ID, 1), Value: true, Label: "b"},
		{ID: ItemID(menu.ID, 2), Label: "c"},
	}
	if diff := cmp.Diff(want, menu.Items); diff != "" {
		t.Errorf("menu items mismatch (-want +got):\n%s", diff)
	}

	tree := mustTree(t, form.HTML.Template)
	input := tree.ByID(in.ID)
	if got := input.AttrOr("size", ""); got != "6" {
		t.Errorf("size: got %s, want 6", got)
	}
	if got := tree.ByID(menu.ID).Find("option").Length(); got != 3 {
		t.Errorf("got %d options, want 3", got)
	}
	if !strings.Contains(form.HTML.Template, "</select>.</p>") {
		t.Errorf("text after the menu was lost: %s", form.HTML.Template)
	}

	solution := mustTree(t, form.HTML.Solution)
	if got := solution.ByID(in.ID).AttrOr("value", ""); got != "one" {
		t.Errorf("solution value: got %q, want %q", got, "one")
	}
	if _, ok := solution.ByID(want[1].ID).Attr("selected"); !ok {
		t.Error("correct option not selected in solution")
	}
}

func TestNestedInlineControlInLabel(t *testing.T) {
	form := mustCompile(t, "[x] pick {{ it }}\n[ ] other\n")
	if len(form.Controls) != 2 {
		t.Fatalf("got %d controls, want 2", len(form.Controls))
	}
	group, ok := form.Controls[0].(*model.CheckboxGroup)
	if !ok {
		t.Fatalf("first control: got %T, want *model.CheckboxGroup", form.Controls[0])
	}
	in, ok := form.Controls[1].(*model.InputText)
	if !ok {
		t.Fatalf("second control: got %T, want *model.InputText", form.Controls[1])
	}
	if in.ID != ControlID(form.Signature, 1) {
		t.Errorf("nested control id: got %s, want %s", in.ID, ControlID(form.Signature, 1))
	}
	if !strings.Contains(group.Items[0].Label, `id="`+in.ID+`"`) {
		t.Errorf("label %q does not contain the nested input", group.Items[0].Label)
	}
	tree := mustTree(t, form.HTML.Template)
	if n := tree.Find("label " + htmltree.IDSelector(in.ID)).Length(); n != 1 {
		t.Errorf("nested input rendered %d times inside labels, want 1", n)
	}
}

func TestUnterminatedSpansStayText(t *testing.T) {
	form := mustCompile(t, "Broken {{ input and ({a}{b} menu\n\nnext line }} and })\n")
	if len(form.Controls) != 0 {
		t.Fatalf("got %d controls, want 0", len(form.Controls))
	}
	for _, want := range []string{"{{ input", "({a}{b} menu"} {
		if !strings.Contains(form.HTML.Template, want) {
			t.Errorf("template %q lacks literal %q", form.HTML.Template, want)
		}
	}
}

func TestGroupBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		items  int
		labels []string
	}{
		{
			name:   "blank lines between items",
			input:  "[ ] a\n\n[x] b\n\n[ ] c\n",
			items:  3,
			labels: []string{"a", "b", "c"},
		},
		{
			name:   "ends at plain paragraph after blank",
			input:  "[x] a\n\nplain\n",
			items:  1,
			labels: []string{"a"},
		},
		{
			name:   "lazy continuation",
			input:  "[x] first line\ncontinued\n[ ] b\n",
			items:  2,
			labels: []string{"first line\ncontinued", "b"},
		},
		{
			name:   "indented markers",
			input:  "  [x] a\n  [ ] b\n",
			items:  2,
			labels: []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := mustCompile(t, tt.input)
			if len(form.Controls) != 1 {
				t.Fatalf("got %d controls, want 1", len(form.Controls))
			}
			group := form.Controls[0].(*model.CheckboxGroup)
			var labels []string
			for _, it := range group.Items {
				labels = append(labels, it.Label)
			}
			if diff := cmp.Diff(tt.labels, labels); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
		})
	}

	form := mustCompile(t, "[x] a\n\nplain\n")
	if !strings.Contains(form.HTML.Template, "<p>plain</p>") {
		t.Errorf("trailing paragraph missing: %s", form.HTML.Template)
	}
}

func TestGroupDoesNotInterruptParagraph(t *testing.T) {
	form := mustCompile(t, "Intro line\n[x] not a group\n")
	if len(form.Controls) != 0 {
		t.Errorf("got %d controls, want 0", len(form.Controls))
	}
}

func TestInvalidMarkersDecline(t *testing.T) {
	for _, input := range []string{"[y] nope\n", "[x]nope\n", "^nope\n", "* member without category\n"} {
		t.Run(input, func(t *testing.T) {
			form := mustCompile(t, input)
			if len(form.Controls) != 0 {
				t.Errorf("got %d controls, want 0", len(form.Controls))
			}
		})
	}
}

const associativeSource = `Sort the food:

@ Fruits
  * apple
  * pear
@ Vegetables
  * carrot
`

func TestAssociativeGroup(t *testing.T) {
	form := mustCompile(t, associativeSource)
	if len(form.Controls) != 1 {
		t.Fatalf("got %d controls, want 1", len(form.Controls))
	}
	ag, ok := form.Controls[0].(*model.AssociativeGroup)
	if !ok {
		t.Fatalf("got %T, want *model.AssociativeGroup", form.Controls[0])
	}
	id := func(i int) string { return ItemID(ag.ID, i) }
	want := []model.AssociativeItem{
		{ID: id(0), Label: "Fruits", Category: true},
		{ID: id(1), Label: "apple"},
		{ID: id(2), Label: "pear"},
		{ID: id(3), Label: "Vegetables", Category: true},
		{ID: id(4), Label: "carrot"},
	}
	if diff := cmp.Diff(want, ag.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	tree := mustTree(t, form.HTML.Template)
	fs := tree.ByID(ag.ID)
	var names []string
	fs.Find("input").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.AttrOr("value", ""))
	})
	wantOrder := []string{id(0), id(3), model.LeftoversID, id(1), id(2), id(4)}
	if diff := cmp.Diff(wantOrder, names); diff != "" {
		t.Errorf("posted order mismatch (-want +got):\n%s", diff)
	}
	if n := fs.Find(".categories .category .dropTarget").Length(); n != 2 {
		t.Errorf("got %d drop targets, want 2", n)
	}

	solution := mustTree(t, form.HTML.Solution)
	sfs := solution.ByID(ag.ID)
	if !sfs.HasClass("disabled") {
		t.Error("solution fieldset is not disabled")
	}
	fruits := sfs.Find(htmltree.IDSelector("category-"+id(0)) + " .dropTarget .item")
	if fruits.Length() != 2 {
		t.Errorf("got %d items under Fruits, want 2", fruits.Length())
	}
	if n := sfs.Find(htmltree.IDSelector("category-"+id(3)) + " .dropTarget " + htmltree.IDSelector("item-"+id(4))).Length(); n != 1 {
		t.Error("carrot not placed under Vegetables")
	}
}

func TestAssociativeMemberIndent(t *testing.T) {
	form := mustCompile(t, "@ A\n* flush member\n")
	ag := form.Controls[0].(*model.AssociativeGroup)
	if len(ag.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(ag.Items))
	}
	if got, want := ag.Items[0].Label, "A\n* flush member"; got != want {
		t.Errorf("label: got %q, want %q", got, want)
	}
}

func TestSolutionBlock(t *testing.T) {
	form := mustCompile(t, "Type {{ x }}.\n\n::: solution\nThe answer is *x*.\n:::\n\nAfter.\n")
	tree := mustTree(t, form.HTML.Template)
	if got := strings.TrimSpace(tree.Find(".solution").Text()); got != "The answer is x." {
		t.Errorf("solution text: got %q", got)
	}
	if n := tree.Find(".solution em").Length(); n != 1 {
		t.Errorf("solution content not parsed as markup")
	}
	prompt := mustTree(t, form.HTML.Prompt)
	if n := prompt.Find(".solution").Length(); n != 0 {
		t.Errorf("prompt still has %d solution blocks", n)
	}
	if !strings.Contains(form.HTML.Prompt, "After.") {
		t.Errorf("content after the solution was lost: %s", form.HTML.Prompt)
	}
	if strings.Contains(form.HTML.Prompt, ":::") {
		t.Errorf("fence leaked into output: %s", form.HTML.Prompt)
	}
}

func TestPromptShufflesSortable(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "sortableGroup.md"))
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	form := mustCompile(t, string(src))
	ids := func(fragment string) []string {
		var out []string
		mustTree(t, fragment).Find("fieldset.sortable > .item").Each(func(_ int, s *goquery.Selection) {
			out = append(out, s.AttrOr("id", ""))
		})
		return out
	}
	template, prompt := ids(form.HTML.Template), ids(form.HTML.Prompt)
	if len(template) != 7 {
		t.Fatalf("got %d template items, want 7", len(template))
	}
	sorted := slices.Clone(prompt)
	slices.Sort(sorted)
	want := slices.Clone(template)
	slices.Sort(want)
	if !slices.Equal(sorted, want) {
		t.Errorf("prompt items %v are not a permutation of %v", prompt, template)
	}
	if n := mustTree(t, form.HTML.Prompt).Find("[disabled]").Length(); n != 0 {
		t.Errorf("prompt carries %d disabled elements", n)
	}
}

func TestPromptShufflesAssociativeItems(t *testing.T) {
	form := mustCompile(t, associativeSource)
	children := func(fragment string) []string {
		var out []string
		mustTree(t, fragment).Find("fieldset.associative > .items").Children().Each(func(_ int, s *goquery.Selection) {
			if s.Is("input") {
				out = append(out, "input:"+s.AttrOr("value", ""))
				return
			}
			out = append(out, s.AttrOr("id", ""))
		})
		return out
	}
	template, prompt := children(form.HTML.Template), children(form.HTML.Prompt)
	if len(template) != 4 {
		t.Fatalf("got %d template children, want 4", len(template))
	}
	if len(prompt) != len(template) || prompt[0] != "input:"+model.LeftoversID {
		t.Fatalf("prompt children %v: want the leftovers input first", prompt)
	}
	sorted := slices.Clone(prompt[1:])
	slices.Sort(sorted)
	want := slices.Clone(template[1:])
	slices.Sort(want)
	if !slices.Equal(sorted, want) {
		t.Errorf("prompt items %v are not a permutation of %v", prompt[1:], template[1:])
	}

	again := children(mustCompile(t, associativeSource).HTML.Prompt)
	if !slices.Equal(prompt, again) {
		t.Errorf("same seed gave %v and %v", prompt, again)
	}
}
