package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFilteringAndComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Enabled: true, Level: "warn", Console: true, Output: &buf}); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Init(Options{})

	Infof("hidden")
	For("poller").Warnf("slow response from %s", "/entities")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] [poller] slow response from /entities") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestDisabledLoggerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Enabled: false, Output: &buf}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Errorf("nope")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": Debug, "WARNING": Warn, "error": Error, "": Info, "loud": Info}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
