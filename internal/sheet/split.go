// Package sheet lays export rows out as flat tables and writes them as CSV,
// zip archives of CSV files or XLSX workbooks.
package sheet

import (
	"strings"
)

// DefaultMaxCellLength keeps cells under the 32767 character limit of
// spreadsheet applications.
const DefaultMaxCellLength = 32000

// softCutRatio is how far into a window a paragraph break must be for the
// cut to move back to it.
const softCutRatio = 0.6

// Split breaks text into chunks of at most maxLen runes. A chunk ends after
// the last paragraph break of its window when that break lies in the final
// 40% of the window, and otherwise at the hard limit. Chunks are right
// trimmed and empty chunks are dropped. Text that fits is returned as is.
func Split(text string, maxLen int) []string {
	if maxLen < 1 {
		maxLen = 1
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var out []string
	for start := 0; start < len(runes); {
		end := start + maxLen
		if end >= len(runes) {
			end = len(runes)
		} else if brk := lastParagraphBreak(runes[start:end]); brk >= 0 && float64(brk) >= softCutRatio*float64(end-start) {
			end = start + brk + 2
		}

		if chunk := strings.TrimRight(string(runes[start:end]), " \t\r\n"); chunk != "" {
			out = append(out, chunk)
		}
		start = end
	}
	return out
}

// lastParagraphBreak returns the index of the first newline of the last
// "\n\n" in window, or -1.
func lastParagraphBreak(window []rune) int {
	for i := len(window) - 2; i >= 0; i-- {
		if window[i] == '\n' && window[i+1] == '\n' {
			return i
		}
	}
	return -1
}
