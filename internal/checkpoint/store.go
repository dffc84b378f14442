// Package checkpoint persists batch export runs and the rows of their
// completed groups in SQLite.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/takak2166/notion2csv/internal/models"
)

var (
	ErrNotFound        = errors.New("checkpoint not found")
	ErrInvalidSnapshot = errors.New("invalid checkpoint snapshot")
	ErrActiveRun       = errors.New("another unfinished run exists for the session")
)

// Store keeps run checkpoints and a durable row store in one SQLite file.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the store at path
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionKey identifies the runs that export the same database, grouping
// property and mode.
func SessionKey(databaseID, propertyName string, mode models.ExportMode) string {
	return fmt.Sprintf("%s|%s|%s", databaseID, propertyName, mode)
}

// Create stores a new run. A run id (UUIDv7) and timestamps are assigned
// when missing.
func (s *Store) Create(ctx context.Context, cp *models.RunCheckpoint) error {
	if cp.RunID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("checkpoint: run id: %w", err)
		}
		cp.RunID = id.String()
	}
	now := s.now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	if cp.State == "" {
		cp.State = models.StateNotStarted
	}
	if cp.Failed == nil {
		cp.Failed = map[string]string{}
	}
	cp.RowStore = fmt.Sprintf("%s#%s", s.path, cp.RunID)

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: encode: %w", err)
	}
	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (run_id, session_key, state, checkpoint, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			cp.RunID, cp.SessionKey, string(cp.State), string(data),
			cp.CreatedAt.UnixMilli(), cp.UpdatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("checkpoint: insert run: %w", err)
		}
		return nil
	})
}

// Load reads the run with id runID
func (s *Store) Load(ctx context.Context, runID string) (*models.RunCheckpoint, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT checkpoint FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load %s: %w", runID, err)
	}
	return decode(data)
}

// FindActive returns the most recent run of sessionKey that has not
// completed.
func (s *Store) FindActive(ctx context.Context, sessionKey string) (*models.RunCheckpoint, error) {
	return s.findLatest(ctx, sessionKey, true)
}

// FindLatest returns the most recent run of sessionKey in any state.
func (s *Store) FindLatest(ctx context.Context, sessionKey string) (*models.RunCheckpoint, error) {
	return s.findLatest(ctx, sessionKey, false)
}

func (s *Store) findLatest(ctx context.Context, sessionKey string, activeOnly bool) (*models.RunCheckpoint, error) {
	query := `SELECT checkpoint FROM runs WHERE session_key = ?`
	if activeOnly {
		query += ` AND state <> '` + string(models.StateComplete) + `'`
	}
	query += ` ORDER BY created_at DESC, run_id DESC LIMIT 1`

	var data string
	err := s.db.QueryRowContext(ctx, query, sessionKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionKey)
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: find run: %w", err)
	}
	return decode(data)
}

// Save persists cp
func (s *Store) Save(ctx context.Context, cp *models.RunCheckpoint) error {
	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.update(ctx, tx, cp)
	})
}

// CompleteGroup stores the rows of group and cp in one transaction. Rows a
// previous attempt may have left for the group are replaced. cp is expected
// to already list group as completed.
func (s *Store) CompleteGroup(ctx context.Context, cp *models.RunCheckpoint, group string, rows []models.Row) error {
	pos := slices.Index(cp.Groups, group)
	if pos < 0 {
		return fmt.Errorf("checkpoint: group %q is not part of run %s", group, cp.RunID)
	}

	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM run_rows WHERE run_id = ? AND group_pos = ?`, cp.RunID, pos); err != nil {
			return fmt.Errorf("checkpoint: clear rows: %w", err)
		}
		if err := insertRows(ctx, tx, cp.RunID, pos, group, rows); err != nil {
			return err
		}
		return s.update(ctx, tx, cp)
	})
}

func insertRows(ctx context.Context, tx *sql.Tx, runID string, pos int, group string, rows []models.Row) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_rows (run_id, group_pos, group_name, seq, page_id, title, section, ord, content, kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("checkpoint: prepare rows: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, pos, group, i,
			r.PageID, r.Title, r.Section, r.Order, r.Content, string(r.Kind)); err != nil {
			return fmt.Errorf("checkpoint: insert row: %w", err)
		}
	}
	return nil
}

func (s *Store) update(ctx context.Context, tx *sql.Tx, cp *models.RunCheckpoint) error {
	cp.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: encode: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET state = ?, checkpoint = ?, updated_at = ? WHERE run_id = ?`,
		string(cp.State), string(data), cp.UpdatedAt.UnixMilli(), cp.RunID)
	if err != nil {
		return fmt.Errorf("checkpoint: update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, cp.RunID)
	}
	return nil
}

// EachRow streams the stored rows of runID in run group order. fn must not
// use the Store.
func (s *Store) EachRow(ctx context.Context, runID string, fn func(models.Row) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_name, page_id, title, section, ord, content, kind
		 FROM run_rows WHERE run_id = ? ORDER BY group_pos, seq`, runID)
	if err != nil {
		return fmt.Errorf("checkpoint: read rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.Row
		var kind string
		if err := rows.Scan(&r.Group, &r.PageID, &r.Title, &r.Section, &r.Order, &r.Content, &kind); err != nil {
			return fmt.Errorf("checkpoint: scan row: %w", err)
		}
		r.Kind = models.ContentKind(kind)
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Rows returns every stored row of runID in run group order.
func (s *Store) Rows(ctx context.Context, runID string) ([]models.Row, error) {
	var out []models.Row
	err := s.EachRow(ctx, runID, func(r models.Row) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// Delete removes a run and its rows
func (s *Store) Delete(ctx context.Context, runID string) error {
	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM run_rows WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("checkpoint: delete rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("checkpoint: delete run: %w", err)
		}
		return nil
	})
}

// DeleteSession removes every run of sessionKey and reports how many there
// were.
func (s *Store) DeleteSession(ctx context.Context, sessionKey string) (int, error) {
	var n int
	err := runTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM run_rows WHERE run_id IN (SELECT run_id FROM runs WHERE session_key = ?)`, sessionKey); err != nil {
			return fmt.Errorf("checkpoint: delete rows: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE session_key = ?`, sessionKey)
		if err != nil {
			return fmt.Errorf("checkpoint: delete runs: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checkpoint: delete runs: %w", err)
		}
		n = int(affected)
		return nil
	})
	return n, err
}

func decode(data string) (*models.RunCheckpoint, error) {
	var cp models.RunCheckpoint
	if err := json.Unmarshal([]byte(data), &cp); err != nil {
		return nil, fmt.Errorf("checkpoint: decode: %w", err)
	}
	if cp.Failed == nil {
		cp.Failed = map[string]string{}
	}
	return &cp, nil
}
