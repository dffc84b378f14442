package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/sheet"
)

// ArtifactName is the file name of the final artifact of mode
func ArtifactName(mode models.ExportMode) string {
	switch mode {
	case models.ModeArchive:
		return "osszes_kurzus.zip"
	case models.ModeWorkbook:
		return "osszes_kurzus.xlsx"
	}
	return "osszes_kurzus.csv"
}

// assemble writes the artifact of a fully completed run from the row store.
func (e *Engine) assemble(ctx context.Context, cp *models.RunCheckpoint, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ArtifactName(cp.Mode))

	err := writeAtomic(path, func(w io.Writer) error {
		switch cp.Mode {
		case models.ModeUnified:
			return e.writeUnified(ctx, cp, w)
		case models.ModeArchive:
			gs, err := e.loadGroups(ctx, cp)
			if err != nil {
				return err
			}
			return sheet.WriteArchive(w, gs, e.cfg.MaxCellLength, time.Time{})
		case models.ModeWorkbook:
			gs, err := e.loadGroups(ctx, cp)
			if err != nil {
				return err
			}
			return sheet.WriteWorkbook(w, gs, e.cfg.MaxCellLength)
		}
		return fmt.Errorf("%w: %q", ErrInvalidMode, cp.Mode)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Artifact written", map[string]interface{}{
		"run_id": cp.RunID,
		"path":   path,
		"rows":   cp.RowsWritten,
	})
	return path, nil
}

// writeUnified streams the row store twice: once to size the header, once
// to write the rows.
func (e *Engine) writeUnified(ctx context.Context, cp *models.RunCheckpoint, w io.Writer) error {
	width := 1
	err := e.store.EachRow(ctx, cp.RunID, func(r models.Row) error {
		if n := sheet.ContentWidth(r, e.cfg.MaxCellLength); n > width {
			width = n
		}
		return nil
	})
	if err != nil {
		return err
	}

	cw, err := sheet.NewCSVWriter(w, sheet.UnifiedHeader(width))
	if err != nil {
		return err
	}
	err = e.store.EachRow(ctx, cp.RunID, func(r models.Row) error {
		return cw.Write(sheet.UnifiedRecord(r, e.cfg.MaxCellLength))
	})
	if err != nil {
		return err
	}
	return cw.Flush()
}

// loadGroups returns every group of the run with its stored rows, in run
// order. Groups without pages are kept so each gets a file or sheet.
func (e *Engine) loadGroups(ctx context.Context, cp *models.RunCheckpoint) ([]sheet.Group, error) {
	byName := make(map[string][]models.Row, len(cp.Groups))
	err := e.store.EachRow(ctx, cp.RunID, func(r models.Row) error {
		byName[r.Group] = append(byName[r.Group], r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]sheet.Group, 0, len(cp.Groups))
	for _, name := range cp.Groups {
		out = append(out, sheet.Group{Name: name, Rows: byName[name]})
	}
	return out, nil
}

// writeAtomic writes path through a temporary file in the same directory.
func writeAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteGroupFile writes the rows of one group to <dir>/export_<slug>.csv.
func WriteGroupFile(dir string, g models.DisplayGroup, rows []models.Row, maxLen int) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, sheet.NewFileNamer().Next(g.Name))
	err := writeAtomic(path, func(w io.Writer) error {
		return sheet.WriteGroupCSV(w, rows, maxLen)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
