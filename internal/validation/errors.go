package validation

import (
	"sort"
	"strings"
)

// Errors groups every violation of one submitted object by lower-cased field
// path. A field appears once, with all the messages of the rules it broke.
type Errors map[string][]string

// FieldError is one entry of Errors in list form.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation passed"
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e.List() {
		parts = append(parts, fe.Field+": "+strings.Join(fe.Messages, "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records msg against field. Duplicate messages for the same field are dropped.
func (e Errors) Add(field, msg string) {
	field = strings.ToLower(strings.TrimSpace(field))
	for _, existing := range e[field] {
		if existing == msg {
			return
		}
	}
	e[field] = append(e[field], msg)
}

// Merge returns e with every entry of other folded in. A nil receiver allocates.
func (e Errors) Merge(other Errors) Errors {
	if len(other) == 0 {
		return e
	}
	if e == nil {
		e = Errors{}
	}
	for field, msgs := range other {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
	return e
}

// Fields returns the invalid field paths in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for field := range e {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// List returns the violations sorted by field path.
func (e Errors) List() []FieldError {
	out := make([]FieldError, 0, len(e))
	for _, field := range e.Fields() {
		msgs := append([]string(nil), e[field]...)
		out = append(out, FieldError{Field: field, Messages: msgs})
	}
	return out
}

// Clone returns a deep copy.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for field, msgs := range e {
		out[field] = append([]string(nil), msgs...)
	}
	return out
}
