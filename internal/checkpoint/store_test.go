package checkpoint

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takak2166/notion2csv/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "notion2csv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newRun(key string) *models.RunCheckpoint {
	return &models.RunCheckpoint{
		SessionKey:   key,
		Mode:         models.ModeUnified,
		DatabaseID:   "db",
		PropertyName: "Kurzus",
		Groups:       []string{"small", "medium", "large"},
	}
}

func TestCreateAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cp := newRun("db|Kurzus|unified")
	require.NoError(t, s.Create(ctx, cp))

	id, err := uuid.Parse(cp.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, models.StateNotStarted, cp.State)
	assert.True(t, strings.HasSuffix(cp.RowStore, "#"+cp.RunID))

	loaded, err := s.Load(ctx, cp.RunID)
	require.NoError(t, err)
	assert.Equal(t, cp.Groups, loaded.Groups)
	assert.Equal(t, cp.SessionKey, loaded.SessionKey)
	assert.NotNil(t, loaded.Failed)

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindActive(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	key := SessionKey("db", "Kurzus", models.ModeArchive)

	_, err := s.FindActive(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	done := newRun(key)
	done.State = models.StateComplete
	require.NoError(t, s.Create(ctx, done))
	_, err = s.FindActive(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound, "completed runs are not resumable")

	partial := newRun(key)
	partial.State = models.StatePartial
	require.NoError(t, s.Create(ctx, partial))

	found, err := s.FindActive(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, partial.RunID, found.RunID)

	latest, err := s.FindLatest(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, partial.RunID, latest.RunID)

	_, err = s.FindActive(ctx, SessionKey("db", "Kurzus", models.ModeWorkbook))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteGroupAndEachRow(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cp := newRun("key")
	require.NoError(t, s.Create(ctx, cp))

	cp.Completed = append(cp.Completed, "large")
	cp.RowsWritten += 1
	require.NoError(t, s.CompleteGroup(ctx, cp, "large", []models.Row{
		{PageID: "p3", Group: "large", Title: "c", Content: "z", Kind: models.KindLesson},
	}))

	cp.Completed = append(cp.Completed, "small")
	cp.RowsWritten += 2
	rows := []models.Row{
		{PageID: "p1", Group: "small", Title: "a", Order: "1", Content: "x", Kind: models.KindVideo},
		{PageID: "p2", Group: "small", Title: "b", Order: "2"},
	}
	require.NoError(t, s.CompleteGroup(ctx, cp, "small", rows))
	// Replaying a group replaces its rows instead of duplicating them.
	require.NoError(t, s.CompleteGroup(ctx, cp, "small", rows))

	got, err := s.Rows(ctx, cp.RunID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{got[0].PageID, got[1].PageID, got[2].PageID})
	assert.Equal(t, models.KindVideo, got[0].Kind)
	assert.Equal(t, "small", got[0].Group)

	loaded, err := s.Load(ctx, cp.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"large", "small"}, loaded.Completed)
	assert.Equal(t, 3, loaded.RowsWritten)

	assert.Error(t, s.CompleteGroup(ctx, cp, "unknown", nil))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a, b := newRun("key"), newRun("key")
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))
	a.Completed = []string{"small"}
	require.NoError(t, s.CompleteGroup(ctx, a, "small", []models.Row{{PageID: "p", Group: "small"}}))

	require.NoError(t, s.Delete(ctx, a.RunID))
	_, err := s.Load(ctx, a.RunID)
	assert.ErrorIs(t, err, ErrNotFound)
	rows, err := s.Rows(ctx, a.RunID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	n, err := s.DeleteSession(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveMissingRun(t *testing.T) {
	s := openTestStore(t)
	err := s.Save(context.Background(), &models.RunCheckpoint{RunID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t)

	cp := newRun("key")
	cp.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, src.Create(ctx, cp))
	cp.State = models.StatePartial
	cp.Completed = []string{"small"}
	cp.Failed = map[string]string{"medium": "status 500: boom"}
	cp.RecordDuration(1500 * time.Millisecond)
	require.NoError(t, src.CompleteGroup(ctx, cp, "small", []models.Row{
		{PageID: "p1", Group: "small", Title: "Első", Content: "tartalom", Kind: models.KindVideo},
	}))

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, cp.RunID, &buf))
	assert.Contains(t, buf.String(), `"Első"`)

	dst := openTestStore(t)
	restored, err := dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, cp.RunID, restored.RunID)
	assert.Equal(t, "status 500: boom", restored.Failed["medium"])
	assert.Equal(t, []int64{1500}, restored.DurationsMS)

	active, err := dst.FindActive(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, cp.RunID, active.RunID)
	assert.Equal(t, []string{"large"}, active.Pending())

	rows, err := dst.Rows(ctx, cp.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "tartalom", rows[0].Content)

	// Importing twice replaces the run.
	_, err = dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	rows, err = dst.Rows(ctx, cp.RunID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestImportRefusesSecondActiveRun(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t)

	cp := newRun("key")
	require.NoError(t, src.Create(ctx, cp))
	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, cp.RunID, &buf))

	dst := openTestStore(t)
	newer := newRun("key")
	require.NoError(t, dst.Create(ctx, newer))

	_, err := dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrActiveRun)
	_, err = dst.Load(ctx, cp.RunID)
	assert.ErrorIs(t, err, ErrNotFound)

	// A finished run does not block the import.
	newer.State = models.StateComplete
	require.NoError(t, dst.Save(ctx, newer))
	_, err = dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	active, err := dst.FindActive(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, cp.RunID, active.RunID)
}

func TestImportRejectsInvalidSnapshots(t *testing.T) {
	s := openTestStore(t)
	tests := map[string]string{
		"Not JSON":        `{`,
		"Wrong version":   `{"version": 2}`,
		"No checkpoint":   `{"version": 1}`,
		"Bad run id":      `{"version": 1, "checkpoint": {"run_id": "x", "mode": "unified", "session_key": "k", "groups": ["a"]}}`,
		"Unknown mode":    `{"version": 1, "checkpoint": {"run_id": "0190b6f4-3d4e-7b8a-9c0d-1e2f3a4b5c6d", "mode": "pdf", "session_key": "k", "groups": ["a"]}}`,
		"No groups":       `{"version": 1, "checkpoint": {"run_id": "0190b6f4-3d4e-7b8a-9c0d-1e2f3a4b5c6d", "mode": "unified", "session_key": "k"}}`,
		"Unfinished rows": `{"version": 1, "checkpoint": {"run_id": "0190b6f4-3d4e-7b8a-9c0d-1e2f3a4b5c6d", "mode": "unified", "session_key": "k", "groups": ["a"]}, "rows": [{"group": "a"}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Import(context.Background(), strings.NewReader(input))
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}
