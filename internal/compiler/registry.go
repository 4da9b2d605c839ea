package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/pavelanni/quizmark/internal/model"
)

// Signature returns the hex SHA-256 digest of a source text.
func Signature(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// digest8 returns the first 8 hex characters of the SHA-256 digest of s.
func digest8(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:4])
}

// ControlID derives the id of the control registered at position index of
// the form with the given signature.
func ControlID(signature string, index int) string {
	return "c-" + digest8(signature+":"+strconv.Itoa(index))
}

// ItemID derives the id of the item attached to a control after count
// other items.
func ItemID(controlID string, count int) string {
	return digest8(controlID + ":" + strconv.Itoa(count))
}

// registry collects controls into the form being compiled.
type registry struct {
	form *model.Form
}

// nextID returns the id the next registered control will get. It does not
// register anything, so repeated calls agree until add is called.
func (r *registry) nextID() string {
	return ControlID(r.form.Signature, len(r.form.Controls))
}

func (r *registry) add(c model.Control) {
	r.form.Controls = append(r.form.Controls, c)
}
