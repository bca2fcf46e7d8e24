// Package validation evaluates declarative per-field rules and reports the
// complete set of violations for an object, grouped by field.
//
// Rules are declared next to the type they validate:
//
//	func (r CreateItem) Rules() []validation.FieldRules {
//		return []validation.FieldRules{
//			validation.Field("Name", r.Name, validation.Required(), validation.MaxLength(255)),
//			validation.Nested("Address", r.Address),
//		}
//	}
//
// Evaluation never stops at the first invalid field or the first broken rule.
package validation

import (
	"fmt"
	"strings"
)

// Validatable is implemented by values that declare field rules.
type Validatable interface {
	Rules() []FieldRules
}

// FieldRules binds a field's value to the rules it must satisfy, or to the
// rules of a nested object.
type FieldRules struct {
	key      string
	label    string
	value    any
	rules    []Rule
	children func() []FieldRules
	inline   bool
}

// Field declares rules for a single field. name is the display label used
// in messages; its lower-cased form is the key in Errors.
func Field(name string, value any, rules ...Rule) FieldRules {
	name = strings.TrimSpace(name)
	return FieldRules{key: strings.ToLower(name), label: name, value: value, rules: rules}
}

// Nested evaluates the rules of v with every field path prefixed by name.
// A nil v contributes nothing; pair it with a Field(name, v, Required()) to
// make the nested object mandatory.
func Nested(name string, v Validatable) FieldRules {
	name = strings.TrimSpace(name)
	fr := FieldRules{key: strings.ToLower(name), label: name}
	if isNil(v) {
		return fr
	}
	fr.children = v.Rules
	return fr
}

// Each evaluates the rules of every element of items, keyed as name[i].
func Each[T Validatable](name string, items []T) FieldRules {
	name = strings.TrimSpace(name)
	fr := FieldRules{key: strings.ToLower(name), label: name, inline: true}
	fr.children = func() []FieldRules {
		out := make([]FieldRules, 0, len(items))
		for i, item := range items {
			out = append(out, Nested(fmt.Sprintf("%s[%d]", name, i), item))
		}
		return out
	}
	return fr
}

// Check evaluates fields and returns every violation. The result is nil when
// all rules pass.
func Check(fields ...FieldRules) Errors {
	errs := Errors{}
	collect(errs, "", fields)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate evaluates v's rules when v (or the value it points to) is
// Validatable. Values without rules are valid.
func Validate(v any) Errors {
	if isNil(v) {
		return nil
	}
	if val, ok := v.(Validatable); ok {
		return Check(val.Rules()...)
	}
	return nil
}

func collect(errs Errors, prefix string, fields []FieldRules) {
	for _, f := range fields {
		key := f.key
		if prefix != "" {
			key = prefix + "." + key
		}
		for _, rule := range f.rules {
			if rule == nil {
				continue
			}
			if msg, ok := rule.Check(f.label, f.value); !ok {
				errs.Add(key, msg)
			}
		}
		if f.children != nil {
			childPrefix := key
			// Each() children already carry the indexed name.
			if f.inline {
				childPrefix = prefix
			}
			collect(errs, childPrefix, f.children())
		}
	}
}
