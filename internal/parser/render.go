package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/takak2166/notion2csv/internal/models"
)

const defaultCalloutIcon = "💡"

type frame struct {
	block  *models.Block
	indent int
}

// Render converts a block tree to text. Numbered items are all emitted as
// "1." and left for RenumberLists.
func Render(blocks []*models.Block) string {
	var out lineWriter

	stack := make([]frame, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		stack = append(stack, frame{block: blocks[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		lines := renderBlock(f.block, strings.Repeat(" ", f.indent))
		if f.block.Type == models.BlockCode {
			out.verbatim(lines)
		} else {
			out.add(lines)
		}

		children := f.block.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{block: children[i], indent: f.indent + 2})
		}
	}

	return strings.Trim(strings.Join(out.lines, "\n"), "\n")
}

// lineWriter collects rendered lines, keeping at most one empty line in a
// row outside code blocks.
type lineWriter struct {
	lines  []string
	blanks int
}

func (w *lineWriter) add(lines []string) {
	for _, l := range lines {
		if l == "" {
			w.blanks++
			if w.blanks > 1 {
				continue
			}
		} else {
			w.blanks = 0
		}
		w.lines = append(w.lines, l)
	}
}

func (w *lineWriter) verbatim(lines []string) {
	w.lines = append(w.lines, lines...)
	w.blanks = 0
}

// marked emits text after prefix and marker. Soft line breaks inside text are
// indented past the marker so they stay part of the item.
func marked(prefix, marker, text string) []string {
	parts := strings.Split(text, "\n")
	out := []string{prefix + marker + parts[0]}
	pad := prefix + strings.Repeat(" ", utf8.RuneCountInString(marker))
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, pad+p)
	}
	return out
}

func renderBlock(b *models.Block, prefix string) []string {
	text := inline(b.RichText)

	switch b.Type {
	case models.BlockParagraph:
		if strings.TrimSpace(text) == "" {
			return []string{""}
		}
		return marked(prefix, "", text)
	case models.BlockHeading1:
		return []string{"# " + text}
	case models.BlockHeading2:
		return []string{"## " + text}
	case models.BlockHeading3:
		return []string{"### " + text}
	case models.BlockBulletedListItem:
		return marked(prefix, "- ", text)
	case models.BlockNumberedListItem:
		return marked(prefix, "1. ", text)
	case models.BlockQuote:
		return marked(prefix, "> ", text)
	case models.BlockToDo:
		box := "[ ]"
		if b.Checked {
			box = "[x]"
		}
		return marked(prefix, "- "+box+" ", text)
	case models.BlockCallout:
		icon := b.Icon
		if icon == "" {
			icon = defaultCalloutIcon
		}
		return marked(prefix, icon+" ", text)
	case models.BlockToggle:
		return marked(prefix, "▸ ", text)
	case models.BlockCode:
		out := []string{prefix + "```" + b.Language}
		out = append(out, strings.Split(models.PlainText(b.RichText), "\n")...)
		return append(out, prefix+"```")
	case models.BlockEquation:
		if b.Expression == "" {
			return nil
		}
		return []string{prefix + "$$ " + b.Expression + " $$"}
	case models.BlockDivider:
		return []string{prefix + "---"}
	}

	tag := fmt.Sprintf("[%s]", strings.ToUpper(string(b.Type)))
	if b.Type.IsMedia() {
		return []string{strings.TrimRight(prefix+tag+" "+inline(b.Caption), " ")}
	}
	return []string{prefix + tag}
}

// inline renders rich text spans with markdown markers for their annotations.
func inline(spans []models.RichText) string {
	var b strings.Builder
	for _, s := range spans {
		text := s.PlainText
		if text == "" {
			continue
		}
		a := s.Annotations
		if a.Code {
			text = "`" + text + "`"
		}
		if a.Bold {
			text = "**" + text + "**"
		}
		if a.Italic {
			text = "*" + text + "*"
		}
		if a.Strikethrough {
			text = "~~" + text + "~~"
		}
		if a.Underline {
			text = "<u>" + text + "</u>"
		}
		if s.Href != "" {
			text = "[" + text + "](" + s.Href + ")"
		}
		b.WriteString(text)
	}
	return b.String()
}
