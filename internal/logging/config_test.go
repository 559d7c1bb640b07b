package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"trace", zerolog.TraceLevel, true},
		{"diagnostics", zerolog.TraceLevel, true},
		{"DEBUG", zerolog.DebugLevel, true},
		{"info", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"bogus", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		got, ok := parseLevel(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseLevel(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseBool(t *testing.T) {
	if v, ok := parseBool("true"); !v || !ok {
		t.Fatalf("true: %v %v", v, ok)
	}
	if _, ok := parseBool(""); ok {
		t.Fatalf("empty must not parse")
	}
	if _, ok := parseBool("maybe"); ok {
		t.Fatalf("garbage must not parse")
	}
}

func TestConfigureIsIdempotent(t *testing.T) {
	first := ConfigureTests()
	second := ConfigureTests()
	if first.GetLevel() != second.GetLevel() {
		t.Fatalf("configure must settle on one level")
	}
}
