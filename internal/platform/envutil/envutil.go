// Package envutil reads optional knobs straight from the environment. Unset
// or unparsable values fall back to the caller's default.
package envutil

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var errBadBool = errors.New("not a boolean")

// Get reads name through parse.
func Get[T any](name string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func String(name, def string) string {
	return Get(name, def, func(s string) (string, error) { return s, nil })
}

func Float(name string, def float64) float64 {
	return Get(name, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// Bool accepts 1/true/yes/on and 0/false/no/off, case-insensitively.
func Bool(name string, def bool) bool {
	return Get(name, def, parseBool)
}

// Duration accepts Go duration strings ("250ms") or bare seconds ("30").
func Duration(name string, def time.Duration) time.Duration {
	return Get(name, def, parseDuration)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, errBadBool
}

func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
