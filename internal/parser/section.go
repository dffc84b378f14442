package parser

import (
	"regexp"
	"strings"

	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/textnorm"
)

var h2 = regexp.MustCompile(`^##\s+(.+)$`)

var (
	videoHeadings = textnorm.NewSet(
		"videó szöveg", "video szöveg", "videó: szöveg", "videó - szöveg",
		"videó tartalom", "video text", "video transcript",
	)
	lessonHeadings = textnorm.NewSet(
		"lecke szöveg", "lecke: szöveg", "lecke - szöveg",
		"lecke tartalom", "lesson text", "lesson content",
	)
)

type section struct {
	key   string
	lines []string
}

// ExtractSection returns the body of the video section, or of the lesson
// section when there is no non-blank video section. The two are never
// combined.
func ExtractSection(text string) (string, models.ContentKind) {
	sections := splitSections(text)

	if body := firstBody(sections, videoHeadings); body != "" {
		return body, models.KindVideo
	}
	if body := firstBody(sections, lessonHeadings); body != "" {
		return body, models.KindLesson
	}
	return "", models.KindNone
}

func splitSections(text string) []section {
	var out []section
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		} else if !inFence {
			if m := h2.FindStringSubmatch(line); m != nil {
				out = append(out, section{key: textnorm.Key(m[1])})
				continue
			}
		}
		if len(out) > 0 {
			out[len(out)-1].lines = append(out[len(out)-1].lines, line)
		}
	}
	return out
}

func firstBody(sections []section, headings textnorm.Set) string {
	for _, s := range sections {
		if _, ok := headings[s.key]; !ok {
			continue
		}
		if body := trimBlankLines(s.lines); body != "" {
			return RenumberLists(body)
		}
	}
	return ""
}

func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
