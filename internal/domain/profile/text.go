package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text is an optional input scalar. A value is present only when it is
// truthy: "", null, 0 and false all decode as absent. Non-empty strings are
// always present, including "0" and whitespace.
type Text struct {
	value   string
	present bool
}

// T applies the presence rule to a Go string.
func T(s string) Text {
	return Text{value: s, present: s != ""}
}

func (t Text) Get() (string, bool) {
	return t.value, t.present
}

func (t Text) IsPresent() bool {
	return t.present
}

// Ptr returns nil for an absent value.
func (t Text) Ptr() *string {
	if !t.present {
		return nil
	}
	v := t.value
	return &v
}

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = T(s)
	case 't':
		*t = Text{value: "true", present: true}
	case 'f':
		// false is falsy
	case '{', '[':
		return fmt.Errorf("expected a scalar, got %s", b)
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("invalid scalar %s: %w", b, err)
		}
		if n != 0 {
			*t = Text{value: strconv.FormatFloat(n, 'f', -1, 64), present: true}
		}
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.present {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}
