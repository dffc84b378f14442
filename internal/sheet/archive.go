package sheet

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/takak2166/notion2csv/internal/models"
)

// Group is the rows of one display group, in output order.
type Group struct {
	Name string
	Rows []models.Row
}

// WriteArchive writes one per-group CSV file per group into a zip archive.
// Every member is stamped with modified; a zero time leaves members without
// a timestamp so equal input always yields equal bytes.
func WriteArchive(w io.Writer, groups []Group, maxLen int, modified time.Time) error {
	zw := zip.NewWriter(w)
	names := NewFileNamer()

	for _, g := range groups {
		name := names.Next(g.Name)
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified.UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
		if err := WriteGroupCSV(fw, g.Rows, maxLen); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}
