package render

import (
	"fmt"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders v with 1024-based units and one decimal.
func FormatBytes(v float64) string {
	idx := 0
	for v >= 1024 && idx < len(units)-1 {
		v /= 1024
		idx++
	}
	return fmt.Sprintf("%.1f %s", v, units[idx])
}

func FormatRate(v float64) string {
	return FormatBytes(v) + "/s"
}

// Bar draws filled cells out of width, padded with spaces.
func Bar(filled, width int) string {
	if width <= 0 {
		return ""
	}
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat(" ", width-filled)
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
