package utils

import (
	"bufio"
	"os"
	"strings"
	"testing"
	"time"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Yes\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out strings.Builder
		got, err := Confirm(bufio.NewReader(strings.NewReader(tt.input)), &out, "Remove a.txt?")
		if err != nil {
			t.Errorf("Confirm(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Confirm(%q): expected %v, got %v", tt.input, tt.want, got)
		}
		if out.String() != "Remove a.txt? [y/N] " {
			t.Errorf("Unexpected prompt: %q", out.String())
		}
	}
}

func TestPromptWithDefault(t *testing.T) {
	tests := []struct {
		input string
		def   string
		want  string
	}{
		{"\n", "www-data", "www-data"},
		{"nginx\n", "www-data", "nginx"},
		{"  nginx  \n", "", "nginx"},
		{"", "www-data", "www-data"},
		{"nginx", "www-data", "nginx"},
	}

	for _, tt := range tests {
		var out strings.Builder
		got, err := PromptWithDefault(bufio.NewReader(strings.NewReader(tt.input)), &out, "Web user", tt.def)
		if err != nil {
			t.Errorf("PromptWithDefault(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PromptWithDefault(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestPromptWithDefaultNoInput(t *testing.T) {
	var out strings.Builder
	if _, err := PromptWithDefault(bufio.NewReader(strings.NewReader("")), &out, "Base URL", ""); err == nil {
		t.Error("Expected error when input ends without a default")
	}
	if out.String() != "Base URL: " {
		t.Errorf("Unexpected prompt: %q", out.String())
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC)
	if got := FormatTimestamp(ts, time.UTC); got != "2024-03-01 12:30:05" {
		t.Errorf("Expected 2024-03-01 12:30:05, got %s", got)
	}
	if got := FormatTimestamp(time.Time{}, time.UTC); got != "-" {
		t.Errorf("Expected -, got %s", got)
	}
}

func TestRedactSecret(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"abc":        "***",
		"abcd":       "****",
		"abcdef":     "ab**ef",
		"0123456789": "01******89",
	}
	for in, want := range tests {
		if got := RedactSecret(in); got != want {
			t.Errorf("RedactSecret(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestFormatPaths(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	got := FormatPaths([]string{"/var/www/a", "/var/www/b"})
	want := "\n    - /var/www/a\n    - /var/www/b\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
