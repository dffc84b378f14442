package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
	"github.com/takak2166/notion2csv/internal/models"
)

// SnapshotVersion is written into every snapshot
const SnapshotVersion = 1

// Snapshot is a self-contained copy of a run: its checkpoint and the rows of
// every completed group.
type Snapshot struct {
	Version    int                   `json:"version"`
	Checkpoint *models.RunCheckpoint `json:"checkpoint"`
	Rows       []models.Row          `json:"rows"`
}

// Export writes the snapshot of runID as indented JSON.
func (s *Store) Export(ctx context.Context, runID string, w io.Writer) error {
	cp, err := s.Load(ctx, runID)
	if err != nil {
		return err
	}
	rows, err := s.Rows(ctx, runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Snapshot{Version: SnapshotVersion, Checkpoint: cp, Rows: rows}); err != nil {
		return fmt.Errorf("checkpoint: encode snapshot: %w", err)
	}
	return nil
}

// Import loads a snapshot written by Export, replacing any run with the same
// id. An unfinished run is refused while a different unfinished run exists
// for its session, since that run would otherwise be the one resumed.
func (s *Store) Import(ctx context.Context, r io.Reader) (*models.RunCheckpoint, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := validate(snap); err != nil {
		return nil, err
	}
	cp := snap.Checkpoint
	if cp.Failed == nil {
		cp.Failed = map[string]string{}
	}
	cp.RowStore = fmt.Sprintf("%s#%s", s.path, cp.RunID)

	data, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: encode: %w", err)
	}

	byGroup := make(map[string][]models.Row)
	for _, row := range snap.Rows {
		byGroup[row.Group] = append(byGroup[row.Group], row)
	}

	err = runTx(ctx, s.db, func(tx *sql.Tx) error {
		if !cp.State.Terminal() {
			var other string
			err := tx.QueryRowContext(ctx,
				`SELECT run_id FROM runs WHERE session_key = ? AND state <> ? AND run_id <> ? LIMIT 1`,
				cp.SessionKey, string(models.StateComplete), cp.RunID).Scan(&other)
			switch {
			case err == nil:
				return fmt.Errorf("%w: %s (clear it before importing %s)", ErrActiveRun, other, cp.RunID)
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("checkpoint: find active run: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM run_rows WHERE run_id = ?`, cp.RunID); err != nil {
			return fmt.Errorf("checkpoint: clear rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, cp.RunID); err != nil {
			return fmt.Errorf("checkpoint: clear run: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (run_id, session_key, state, checkpoint, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			cp.RunID, cp.SessionKey, string(cp.State), string(data),
			cp.CreatedAt.UnixMilli(), cp.UpdatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("checkpoint: insert run: %w", err)
		}
		for pos, group := range cp.Groups {
			if err := insertRows(ctx, tx, cp.RunID, pos, group, byGroup[group]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

func validate(snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	cp := snap.Checkpoint
	if cp == nil {
		return fmt.Errorf("%w: missing checkpoint", ErrInvalidSnapshot)
	}
	if _, err := uuid.Parse(cp.RunID); err != nil {
		return fmt.Errorf("%w: run id: %v", ErrInvalidSnapshot, err)
	}
	if !cp.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSnapshot, cp.Mode)
	}
	if cp.SessionKey == "" || len(cp.Groups) == 0 {
		return fmt.Errorf("%w: session key and groups are required", ErrInvalidSnapshot)
	}
	for _, g := range cp.Completed {
		if !slices.Contains(cp.Groups, g) {
			return fmt.Errorf("%w: completed group %q is not in the run", ErrInvalidSnapshot, g)
		}
	}
	for _, row := range snap.Rows {
		if !cp.IsCompleted(row.Group) {
			return fmt.Errorf("%w: rows for unfinished group %q", ErrInvalidSnapshot, row.Group)
		}
	}
	return nil
}
