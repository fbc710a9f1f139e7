package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact width unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello w…"},
		{"zero width", "hello", 0, ""},
		{"negative width", "hello", -1, ""},
		{"empty string", "", 5, ""},
		{"wide characters", "日本語テスト", 7, "日本語…"},
		{"wide character does not split", "Steam 充值卡", 8, "Steam …"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.width)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
			if lipgloss.Width(got) > max(tt.width, 0) {
				t.Errorf("Truncate(%q, %d) width = %d", tt.input, tt.width, lipgloss.Width(got))
			}
		})
	}
}

func TestTruncate_Styled(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("out of stock")

	got := Truncate(styled, 6)
	if w := lipgloss.Width(got); w != 6 {
		t.Errorf("Truncate(styled, 6) width = %d, want 6", w)
	}
	if Truncate(styled, 20) != styled {
		t.Error("styled text within width should be unchanged")
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"日本", 5, "日本 "},
		{"", 3, "   "},
	}

	for _, tt := range tests {
		if got := PadRight(tt.input, tt.width); got != tt.want {
			t.Errorf("PadRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	got := Wrap("one two three four", 9)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Errorf("Wrap() = %q, want several lines", got)
	}
	for _, line := range lines {
		if lipgloss.Width(line) > 9 {
			t.Errorf("line %q is wider than 9", line)
		}
	}
	if strings.Join(strings.Fields(got), " ") != "one two three four" {
		t.Errorf("Wrap() lost words: %q", got)
	}
	if Wrap("keep", 0) != "keep" {
		t.Error("Wrap with width 0 should return the input")
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"# Welcome\n\nBody", "Welcome"},
		{"\n\n  - Sale today  \n", "Sale today"},
		{"> quoted", "quoted"},
		{"", ""},
		{"\n#\n", ""},
	}

	for _, tt := range tests {
		if got := FirstLine(tt.input); got != tt.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("abc"); got != "•••" {
		t.Errorf("Mask(abc) = %q", got)
	}
	if got := Mask("密码"); got != "••" {
		t.Errorf("Mask(密码) = %q", got)
	}
	if Mask("") != "" {
		t.Error("Mask(\"\") should be empty")
	}
}
