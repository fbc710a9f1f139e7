// Package util holds text helpers for rendering shop data in a terminal,
// where product names mix ASCII and double-width CJK and may carry styling.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text. It is one column wide.
const Ellipsis = "…"

// Truncate cuts s to width terminal columns, keeping escape sequences
// intact and ending with Ellipsis when anything was dropped.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// PadRight truncates or pads s with spaces to exactly width columns.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// Wrap breaks s into lines of at most width columns at word boundaries.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wordwrap(s, width, "")
}

// FirstLine returns the first non-blank line of a markdown text without its
// heading or list marker. Used for one-line notice banners.
func FirstLine(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#>*- ")
		if line != "" {
			return line
		}
	}
	return ""
}

// Mask hides a secret, keeping only its length visible.
func Mask(secret string) string {
	return strings.Repeat("•", len([]rune(secret)))
}
