package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/takak2166/notion2csv/internal/models"
)

// utf8BOM makes spreadsheet applications open the file as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes a table with a fixed header. Shorter records are padded
// to the header width.
type CSVWriter struct {
	w     *csv.Writer
	width int
}

// NewCSVWriter writes the BOM and header to w
func NewCSVWriter(w io.Writer, header []string) (*CSVWriter, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}
	cw := &CSVWriter{w: csv.NewWriter(w), width: len(header)}
	if err := cw.w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return cw, nil
}

// Write appends one record
func (c *CSVWriter) Write(record []string) error {
	if len(record) > c.width {
		return fmt.Errorf("record has %d fields, header has %d", len(record), c.width)
	}
	for len(record) < c.width {
		record = append(record, "")
	}
	return c.w.Write(record)
}

// Flush writes buffered records and reports any write error
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// WriteGroupCSV writes the rows of one group as a per-group table.
func WriteGroupCSV(w io.Writer, rows []models.Row, maxLen int) error {
	cw, err := NewCSVWriter(w, GroupHeader(MaxContentWidth(rows, maxLen)))
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(GroupRecord(r, maxLen)); err != nil {
			return err
		}
	}
	return cw.Flush()
}
