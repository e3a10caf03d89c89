// ABOUTME: Tests for shared CLI helper functions
// ABOUTME: Verifies string truncation and positive integer validation
package commands

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"needs truncation", "hello world", 8, "hello..."},
		{"tiny max", "hello", 3, "hel"},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt(3, "top-k"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validatePositiveInt(0, "top-k"); err == nil {
		t.Error("expected error for zero")
	}
	if err := validatePositiveInt(-1, "top-k"); err == nil {
		t.Error("expected error for negative")
	}
}
