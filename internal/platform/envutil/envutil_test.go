package envutil

import (
	"strings"
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_D1", "250ms")
	t.Setenv("ENVUTIL_D2", "30")
	t.Setenv("ENVUTIL_D3", "soon")

	if got := Duration("ENVUTIL_D1", time.Second); got != 250*time.Millisecond {
		t.Fatalf("D1: got=%v", got)
	}
	if got := Duration("ENVUTIL_D2", time.Second); got != 30*time.Second {
		t.Fatalf("D2: got=%v", got)
	}
	if got := Duration("ENVUTIL_D3", time.Second); got != time.Second {
		t.Fatalf("D3: got=%v", got)
	}
	if got := Duration("ENVUTIL_UNSET", 5*time.Second); got != 5*time.Second {
		t.Fatalf("unset: got=%v", got)
	}
}

func TestBoolFloatString(t *testing.T) {
	t.Setenv("ENVUTIL_B", "On")
	t.Setenv("ENVUTIL_B2", "maybe")
	t.Setenv("ENVUTIL_F", "x")
	if !Bool("ENVUTIL_B", false) {
		t.Fatalf("Bool: expected true")
	}
	if Bool("ENVUTIL_UNSET", false) {
		t.Fatalf("Bool unset: expected default false")
	}
	if !Bool("ENVUTIL_B2", true) {
		t.Fatalf("Bool invalid: expected default true")
	}
	if got := Float("ENVUTIL_F", 0.5); got != 0.5 {
		t.Fatalf("Float invalid: got=%v", got)
	}
	if got := String("ENVUTIL_UNSET", "def"); got != "def" {
		t.Fatalf("String: got=%q", got)
	}
}

func TestGetCustomParser(t *testing.T) {
	t.Setenv("ENVUTIL_LIST", " a,b ")
	got := Get("ENVUTIL_LIST", []string{"z"}, func(s string) ([]string, error) { return strings.Split(s, ","), nil })
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Get: got=%v", got)
	}
}
