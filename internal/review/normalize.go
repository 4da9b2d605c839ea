package review

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latinLetters maps letters that carry no combining mark to their closest
// Latin spelling.
var latinLetters = strings.NewReplacer(
	"ß", "ss", "ẞ", "SS",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "TH",
	"ı", "i",
)

// normalizer folds tokens for comparison. It holds stateful transformers
// and must not be shared between goroutines.
type normalizer struct {
	fold      cases.Caser
	matchCase bool
	latinize  bool
	strip     transform.Transformer
}

func newNormalizer(opts Options) *normalizer {
	return &normalizer{
		fold:      cases.Fold(),
		matchCase: opts.MatchCase,
		latinize:  opts.Latinize,
		strip:     transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// token returns the comparison key of a token. Whitespace runs all share
// one key.
func (n *normalizer) token(tok string) string {
	if isSpaceRun(tok) {
		return " "
	}
	if !n.matchCase {
		tok = n.fold.String(tok)
	}
	if n.latinize {
		if s, _, err := transform.String(n.strip, tok); err == nil {
			tok = s
		}
		tok = latinLetters.Replace(tok)
	}
	return tok
}

func isSpaceRun(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return s != ""
}

// tokenize splits s into word runs, whitespace runs and single other
// characters. Combining marks stay with the word they follow.
func tokenize(s string) []string {
	var tokens []string
	start, class := 0, -1
	for i, r := range s {
		c := runeClass(r)
		if c == classMark && class == classWord {
			continue
		}
		if c != class || c == classOther {
			if i > start {
				tokens = append(tokens, s[start:i])
			}
			start, class = i, c
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

const (
	classWord = iota
	classSpace
	classMark
	classOther
)

func runeClass(r rune) int {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	case unicode.Is(unicode.Mn, r):
		return classMark
	}
	return classOther
}
