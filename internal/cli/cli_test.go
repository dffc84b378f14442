package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takak2166/notion2csv/internal/checkpoint"
	"github.com/takak2166/notion2csv/internal/export"
	"github.com/takak2166/notion2csv/internal/models"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ErrResumeRequired, ExitResume},
		{fmt.Errorf("run: %w", ErrResumeRequired), ExitResume},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestModes(t *testing.T) {
	all, err := modes("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := modes("workbook")
	require.NoError(t, err)
	assert.Equal(t, []models.ExportMode{models.ModeWorkbook}, one)

	_, err = modes("pdf")
	assert.ErrorIs(t, err, export.ErrInvalidMode)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, &export.Result{
		RunID:     "run-1",
		Resumed:   true,
		State:     models.StatePartial,
		Completed: []string{"SEO"},
		Failed:    map[string]string{"Ads": "status 400: bad filter"},
	})
	out := buf.String()
	assert.Contains(t, out, "Resumed run run-1: partial")
	assert.Contains(t, out, "failed Ads: status 400: bad filter")
	assert.Contains(t, out, "--retry-failed")
}

// execute runs the root command with a fresh set of command flags.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	statusMode = ""
	checkpointExportMode = string(models.ModeArchive)
	checkpointClearMode = ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCheckpointCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dbPath := filepath.Join(dir, "state", "notion2csv.db")
	t.Setenv("NOTION_DATABASE_ID", "db")
	t.Setenv("NOTION_PROPERTY_NAME", "Kurzus")
	t.Setenv("NOTION2CSV_CHECKPOINT_PATH", dbPath)

	ctx := context.Background()
	store, err := checkpoint.Open(dbPath)
	require.NoError(t, err)
	cp := &models.RunCheckpoint{
		SessionKey:   checkpoint.SessionKey("db", "Kurzus", models.ModeArchive),
		Mode:         models.ModeArchive,
		DatabaseID:   "db",
		PropertyName: "Kurzus",
		State:        models.StatePartial,
		Groups:       []string{"SEO", "Ads"},
	}
	require.NoError(t, store.Create(ctx, cp))
	cp.Completed = []string{"SEO"}
	cp.RowsWritten = 1
	require.NoError(t, store.CompleteGroup(ctx, cp, "SEO", []models.Row{{PageID: "p1", Group: "SEO", Title: "Első"}}))
	require.NoError(t, store.Close())

	out, err := execute(t, "status", "--mode", "archive")
	require.NoError(t, err)
	assert.Contains(t, out, "archive: run "+cp.RunID+" partial")
	assert.Contains(t, out, "next: Ads")

	snapshot := filepath.Join(dir, "run.json")
	out, err = execute(t, "checkpoint", "export", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported run "+cp.RunID)
	assert.FileExists(t, snapshot)

	out, err = execute(t, "checkpoint", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "archive: deleted 1 runs")
	assert.Contains(t, out, "unified: deleted 0 runs")

	out, err = execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "archive: no run")

	out, err = execute(t, "checkpoint", "import", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, cp.RunID)

	store, err = checkpoint.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.Rows(ctx, cp.RunID)
	require.NoError(t, err)
	assert.Equal(t, "Első", rows[0].Title)
}

func TestStatusRequiresDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NOTION_DATABASE_ID", "")
	os.Unsetenv("NOTION_DATABASE_ID")

	_, err := execute(t, "status")
	assert.Error(t, err)
}
