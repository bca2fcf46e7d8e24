package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Rule checks one constraint. label is the field's display name; the
// returned message is only meaningful when ok is false.
type Rule interface {
	Check(label string, value any) (msg string, ok bool)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(label string, value any) (string, bool)

func (f RuleFunc) Check(label string, value any) (string, bool) { return f(label, value) }

// Required fails on nil, zero values, blank strings and empty collections.
func Required() Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		if isEmpty(value) {
			return label + " is required", false
		}
		return "", true
	})
}

// MinLength requires at least n characters. Empty values pass; combine with
// Required to reject them.
func MinLength(n int) Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		s, ok := stringOf(value)
		if !ok || s == "" {
			return "", true
		}
		if utf8.RuneCountInString(s) < n {
			return fmt.Sprintf("%s must be at least %d characters", label, n), false
		}
		return "", true
	})
}

// MaxLength allows at most n characters.
func MaxLength(n int) Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		s, ok := stringOf(value)
		if !ok || s == "" {
			return "", true
		}
		if utf8.RuneCountInString(s) > n {
			return fmt.Sprintf("%s must be at most %d characters", label, n), false
		}
		return "", true
	})
}

// Length requires between min and max characters inclusive. Empty values pass.
func Length(min, max int) Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		s, ok := stringOf(value)
		if !ok || s == "" {
			return "", true
		}
		n := utf8.RuneCountInString(s)
		if n < min || n > max {
			return fmt.Sprintf("%s must be between %d and %d characters", label, min, max), false
		}
		return "", true
	})
}

// Format requires the string to match re. description completes the message
// "<label> must be <description>"; empty description yields a generic message.
func Format(re *regexp.Regexp, description string) Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		s, ok := stringOf(value)
		if !ok || s == "" {
			return "", true
		}
		if re.MatchString(s) {
			return "", true
		}
		if description = strings.TrimSpace(description); description != "" {
			return fmt.Sprintf("%s must be %s", label, description), false
		}
		return label + " has an invalid format", false
	})
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email() Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		s, ok := stringOf(value)
		if !ok || s == "" {
			return "", true
		}
		if !emailPattern.MatchString(s) {
			return label + " must be a valid email address", false
		}
		return "", true
	})
}

// OneOf restricts a string to the listed values (case-sensitive).
func OneOf(values ...string) Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		s, ok := stringOf(value)
		if !ok || s == "" {
			return "", true
		}
		for _, v := range values {
			if s == v {
				return "", true
			}
		}
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(values, ", ")), false
	})
}

// Range requires an integer value between min and max inclusive.
func Range(min, max int64) Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		n, ok := intOf(value)
		if !ok {
			return "", true
		}
		if n < min || n > max {
			return fmt.Sprintf("%s must be between %d and %d", label, min, max), false
		}
		return "", true
	})
}

// By wraps a predicate; msg is used verbatim when ok returns false.
func By(msg string, ok func(value any) bool) Rule {
	return RuleFunc(func(label string, value any) (string, bool) {
		if ok(value) {
			return "", true
		}
		return msg, false
	})
}

func stringOf(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", true
		}
		return *v, true
	case fmt.Stringer:
		if isNil(v) {
			return "", true
		}
		return v.String(), true
	default:
		return "", false
	}
}

func intOf(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	default:
		return 0, false
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case time.Time:
		return v.IsZero()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isEmpty(rv.Elem().Interface())
	case reflect.Slice, reflect.Map, reflect.String, reflect.Chan:
		return rv.Len() == 0
	default:
		return rv.IsZero()
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
