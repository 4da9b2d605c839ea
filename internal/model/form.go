package model

// FormHTML carries the three HTML renditions of a compiled form.
type FormHTML struct {
	Template string `json:"template"`
	Prompt   string `json:"prompt"`
	Solution string `json:"solution"`
}

// Form is the result of compiling a source document.
type Form struct {
	Signature string      `json:"signature"`
	Text      string      `json:"text"`
	HTML      FormHTML    `json:"html"`
	Controls  ControlList `json:"controls"`
}

// Control returns the control with the given id, or nil.
func (f *Form) Control(id string) Control {
	for _, c := range f.Controls {
		if c != nil && c.ControlID() == id {
			return c
		}
	}
	return nil
}

// ReviewHTML carries the two HTML renditions of a graded submission.
type ReviewHTML struct {
	Filled string `json:"filled"`
	Review string `json:"review"`
}

// Review is the outcome of grading one submission against a form.
type Review struct {
	// ErrorIDs lists the ids of incorrectly answered controls in form order.
	ErrorIDs []string `json:"errorIds"`
	// Input is a human-readable trace of what was submitted.
	Input []string   `json:"input"`
	HTML  ReviewHTML `json:"html"`
}

// NewReview returns a review with empty, non-nil lists.
func NewReview() *Review {
	return &Review{ErrorIDs: []string{}, Input: []string{}}
}

// Correct reports whether no control was graded as incorrect.
func (r *Review) Correct() bool {
	return len(r.ErrorIDs) == 0
}
