package formatting_test

import (
	"testing"

	"github.com/garunski/applymonitor/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"512", 512},
		{"1KB", 1024},
		{"1 kb", 1024},
		{"1MB", 1024 * 1024},
		{"1.5MB", 1572864},
		{"2GB", 2 * 1024 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBytesInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "10XB", "-1MB"} {
		t.Run(input, func(t *testing.T) {
			if _, err := formatting.ParseBytes(input); err == nil {
				t.Errorf("ParseBytes(%q) expected error", input)
			}
		})
	}
}
