package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("dropped %d samples")
	if got != "dropped %d samples" {
		t.Errorf("custom logger not called, got %q", got)
	}

	// nil installs a no-op, not a nil func.
	SetLogger(nil)
	got = ""
	Logf("should be swallowed")
	if got != "" {
		t.Error("no-op logger should not forward")
	}
	if Logf == nil {
		t.Error("Logf must never be nil")
	}
}

func TestPrefixed(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	logf := Prefixed("fetch")

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	logf("dropped %d samples")
	if got != "fetch: dropped %d samples" {
		t.Errorf("prefix not applied, got %q", got)
	}

	// The prefix wrapper follows later SetLogger calls.
	SetLogger(nil)
	got = ""
	logf("should be swallowed")
	if got != "" {
		t.Error("prefixed logger must route through the current sink")
	}
}
