package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownControlType is returned when a control's type tag is not one of
// the six known kinds.
var ErrUnknownControlType = errors.New("unknown control type")

// ControlType tags a control description on the wire.
type ControlType string

const (
	// TypeCheckboxGroup is a multiple-selection choice group.
	TypeCheckboxGroup ControlType = "checkboxGroup"
	// TypeRadioGroup is a single-selection choice group.
	TypeRadioGroup ControlType = "radioGroup"
	// TypeSelectMenu is an inline drop-down menu.
	TypeSelectMenu ControlType = "selectMenu"
	// TypeInputText is an inline free-text blank.
	TypeInputText ControlType = "inputText"
	// TypeSortableGroup is an ordering exercise.
	TypeSortableGroup ControlType = "sortableGroup"
	// TypeAssociativeGroup is a categorisation exercise.
	TypeAssociativeGroup ControlType = "associativeGroup"
)

// Control is the grading key for one interactive element of a form.
// The set of implementations is closed.
type Control interface {
	ControlID() string
	ControlType() ControlType
	control()
}

// ChoiceItem is one option of a checkbox group, radio group or select menu.
type ChoiceItem struct {
	ID    string `json:"id"`
	Value bool   `json:"value"`
	Label string `json:"label"`
}

// SortableItem is one entry of a sortable group. Value is the zero-based
// position of the item in the correct order.
type SortableItem struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

// AssociativeItem is either a category header (Category set) or a member
// belonging to the nearest preceding header.
type AssociativeItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category bool   `json:"category,omitempty"`
}

// CheckboxGroup allows any number of items to be checked.
type CheckboxGroup struct {
	ID    string       `json:"id"`
	Items []ChoiceItem `json:"items"`
}

// RadioGroup allows at most one item to be checked.
type RadioGroup struct {
	ID    string       `json:"id"`
	Items []ChoiceItem `json:"items"`
}

// SelectMenu is an inline drop-down.
type SelectMenu struct {
	ID    string       `json:"id"`
	Items []ChoiceItem `json:"items"`
}

// InputText is an inline blank with a single expected answer.
type InputText struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// SortableGroup holds items in their correct order.
type SortableGroup struct {
	ID    string         `json:"id"`
	Items []SortableItem `json:"items"`
}

// AssociativeGroup holds category headers, each followed by its members.
type AssociativeGroup struct {
	ID    string            `json:"id"`
	Items []AssociativeItem `json:"items"`
}

func (c *CheckboxGroup) ControlID() string    { return c.ID }
func (c *RadioGroup) ControlID() string       { return c.ID }
func (c *SelectMenu) ControlID() string       { return c.ID }
func (c *InputText) ControlID() string        { return c.ID }
func (c *SortableGroup) ControlID() string    { return c.ID }
func (c *AssociativeGroup) ControlID() string { return c.ID }

func (*CheckboxGroup) ControlType() ControlType    { return TypeCheckboxGroup }
func (*RadioGroup) ControlType() ControlType       { return TypeRadioGroup }
func (*SelectMenu) ControlType() ControlType       { return TypeSelectMenu }
func (*InputText) ControlType() ControlType        { return TypeInputText }
func (*SortableGroup) ControlType() ControlType    { return TypeSortableGroup }
func (*AssociativeGroup) ControlType() ControlType { return TypeAssociativeGroup }

func (*CheckboxGroup) control()    {}
func (*RadioGroup) control()       {}
func (*SelectMenu) control()       {}
func (*InputText) control()        {}
func (*SortableGroup) control()    {}
func (*AssociativeGroup) control() {}

// MarshalJSON encodes the control with its "type" tag.
func (c *CheckboxGroup) MarshalJSON() ([]byte, error) {
	type plain CheckboxGroup
	return marshalTagged(c.ControlType(), (*plain)(c))
}

// MarshalJSON encodes the control with its "type" tag.
func (c *RadioGroup) MarshalJSON() ([]byte, error) {
	type plain RadioGroup
	return marshalTagged(c.ControlType(), (*plain)(c))
}

// MarshalJSON encodes the control with its "type" tag.
func (c *SelectMenu) MarshalJSON() ([]byte, error) {
	type plain SelectMenu
	return marshalTagged(c.ControlType(), (*plain)(c))
}

// MarshalJSON encodes the control with its "type" tag.
func (c *InputText) MarshalJSON() ([]byte, error) {
	type plain InputText
	return marshalTagged(c.ControlType(), (*plain)(c))
}

// MarshalJSON encodes the control with its "type" tag.
func (c *SortableGroup) MarshalJSON() ([]byte, error) {
	type plain SortableGroup
	return marshalTagged(c.ControlType(), (*plain)(c))
}

// MarshalJSON encodes the control with its "type" tag.
func (c *AssociativeGroup) MarshalJSON() ([]byte, error) {
	type plain AssociativeGroup
	return marshalTagged(c.ControlType(), (*plain)(c))
}

// marshalTagged encodes v and splices a "type" member in front of its fields.
func marshalTagged(t ControlType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+len(tag)+10)
	out = append(out, `{"type":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

// ControlList is an ordered list of controls that decodes polymorphically
// on the "type" member of each element.
type ControlList []Control

// UnmarshalJSON implements json.Unmarshaler.
func (l *ControlList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(ControlList, 0, len(raws))
	for i, raw := range raws {
		c, err := DecodeControl(raw)
		if err != nil {
			return fmt.Errorf("control %d: %w", i, err)
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

// DecodeControl decodes a single tagged control description.
func DecodeControl(data []byte) (Control, error) {
	var head struct {
		Type ControlType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var c Control
	switch head.Type {
	case TypeCheckboxGroup:
		c = &CheckboxGroup{}
	case TypeRadioGroup:
		c = &RadioGroup{}
	case TypeSelectMenu:
		c = &SelectMenu{}
	case TypeInputText:
		c = &InputText{}
	case TypeSortableGroup:
		c = &SortableGroup{}
	case TypeAssociativeGroup:
		c = &AssociativeGroup{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownControlType, head.Type)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
