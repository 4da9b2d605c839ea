package model

import (
	"bytes"
	"encoding/json"
	"net/url"
)

// Answer is the value submitted for one control. Single-valued controls
// use the first element; checkbox, sortable and associative groups use
// the whole sequence.
type Answer []string

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Answer{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*a = list
	return nil
}

// Scalar returns the first submitted value, or "" if none.
func (a Answer) Scalar() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// Values maps control ids to submitted answers.
type Values map[string]Answer

// ValuesFromForm converts decoded form fields into submission values.
// Repeated fields keep their submission order.
func ValuesFromForm(form url.Values) Values {
	out := make(Values, len(form))
	for k, vs := range form {
		out[k] = append(Answer(nil), vs...)
	}
	return out
}
