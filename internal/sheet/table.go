package sheet

import (
	"strconv"

	"github.com/takak2166/notion2csv/internal/models"
)

// ContentColumns names n content columns: content, content_2, content_3...
func ContentColumns(n int) []string {
	if n < 1 {
		n = 1
	}
	cols := []string{"content"}
	for i := 2; i <= n; i++ {
		cols = append(cols, "content_"+strconv.Itoa(i))
	}
	return cols
}

// GroupHeader is the header of a per-group table with n content columns.
func GroupHeader(n int) []string {
	return append([]string{"title", "section", "order"}, ContentColumns(n)...)
}

// UnifiedHeader is the header of the table holding every group.
func UnifiedHeader(n int) []string {
	return append([]string{"group", "title", "section", "order", "content_kind"}, ContentColumns(n)...)
}

// GroupRecord lays out r for a per-group table
func GroupRecord(r models.Row, maxLen int) []string {
	return append([]string{r.Title, r.Section, r.Order}, contentCells(r, maxLen)...)
}

// UnifiedRecord lays out r for the unified table
func UnifiedRecord(r models.Row, maxLen int) []string {
	return append([]string{r.Group, r.Title, r.Section, r.Order, string(r.Kind)}, contentCells(r, maxLen)...)
}

// ContentWidth is the number of content columns r needs.
func ContentWidth(r models.Row, maxLen int) int {
	return len(contentCells(r, maxLen))
}

// MaxContentWidth is the widest ContentWidth among rows, at least 1.
func MaxContentWidth(rows []models.Row, maxLen int) int {
	width := 1
	for _, r := range rows {
		if w := ContentWidth(r, maxLen); w > width {
			width = w
		}
	}
	return width
}

func contentCells(r models.Row, maxLen int) []string {
	if r.Content == "" {
		return []string{""}
	}
	cells := Split(r.Content, maxLen)
	if len(cells) == 0 {
		return []string{""}
	}
	return cells
}
