package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var numberedItem = regexp.MustCompile(`^(\s*)(\d+)\.\s(.*)$`)

// RenumberLists rewrites the numerals of numbered list items so each list
// counts from 1. Fenced code is left alone. A nested list restarts when its
// parent item moves on, and any other non-blank line at or left of a list's
// indentation ends that list.
func RenumberLists(text string) string {
	lines := strings.Split(text, "\n")
	counters := make(map[int]int)
	inFence := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := numberedItem.FindStringSubmatch(line); m != nil {
			depth := len(m[1])
			dropFrom(counters, depth+1)
			counters[depth]++
			lines[i] = m[1] + strconv.Itoa(counters[depth]) + ". " + m[3]
			continue
		}

		if trimmed == "" {
			continue
		}
		dropFrom(counters, len(line)-len(strings.TrimLeft(line, " \t")))
	}

	return strings.Join(lines, "\n")
}

// dropFrom forgets the counters of every depth >= depth
func dropFrom(counters map[int]int, depth int) {
	for d := range counters {
		if d >= depth {
			delete(counters, d)
		}
	}
}
