package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// WriteWorkbook writes one worksheet per group with sanitized, unique sheet
// names.
func WriteWorkbook(w io.Writer, groups []Group, maxLen int) error {
	f := excelize.NewFile()
	defer f.Close()

	if len(groups) == 0 {
		groups = []Group{{Name: "Sheet"}}
	}

	names := NewSheetNamer()
	for i, g := range groups {
		name := names.Next(g.Name)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, g, maxLen); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, g Group, maxLen int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", cells(GroupHeader(MaxContentWidth(g.Rows, maxLen)))); err != nil {
		return err
	}
	for i, r := range g.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(GroupRecord(r, maxLen))); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func cells(record []string) []interface{} {
	out := make([]interface{}, len(record))
	for i, v := range record {
		out[i] = v
	}
	return out
}
