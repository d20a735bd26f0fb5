package service

import (
	"bytes"
	"encoding/json"
	"strings"
)

var (
	trueValues  = map[string]bool{"t": true, "y": true, "yes": true, "true": true, "on": true, "1": true}
	falseValues = map[string]bool{"f": true, "n": true, "no": true, "false": true, "off": true, "0": true, "": true}
)

// Bool is a boolean request field.  It accepts JSON booleans, the numbers
// 0 and 1, and the usual textual spellings ("true", "yes", "on", "1" and
// their negatives) from JSON strings or form values.  Anything else still
// binds; the problem is reported by validation as an is_favorite field error.
type Bool struct {
	Value bool
	bad   string // validation message when the input was not a boolean
}

// NewBool returns a valid Bool holding v.
func NewBool(v bool) Bool { return Bool{Value: v} }

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = Bool{bad: MsgNull}
		return nil
	case bytes.Equal(data, []byte("true")):
		*b = Bool{Value: true}
		return nil
	case bytes.Equal(data, []byte("false")):
		*b = Bool{}
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			*b = Bool{bad: MsgBool}
			return nil
		}
		if s == "" {
			*b = Bool{bad: MsgBool}
			return nil
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*b = Bool{bad: MsgBool}
			return nil
		}
		f, err := n.Float64()
		switch {
		case err == nil && f == 1:
			s = "1"
		case err == nil && f == 0:
			s = "0"
		default:
			*b = Bool{bad: MsgBool}
			return nil
		}
	}
	b.parse(s)
	return nil
}

// UnmarshalParam implements echo.BindUnmarshaler for form values.  An empty
// value is an unchecked checkbox and reads as false.
func (b *Bool) UnmarshalParam(param string) error {
	b.parse(param)
	return nil
}

func (b *Bool) parse(s string) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case trueValues[s]:
		*b = Bool{Value: true}
	case falseValues[s]:
		*b = Bool{}
	default:
		*b = Bool{bad: MsgBool}
	}
}
