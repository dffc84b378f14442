package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/takak2166/notion2csv/internal/checkpoint"
	"github.com/takak2166/notion2csv/internal/models"
)

var statusMode string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest checkpointed run of each mode",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusMode, "mode", "m", "", "only this mode (default: all)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ms, err := modes(statusMode)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	for _, mode := range ms {
		key := checkpoint.SessionKey(cfg.DatabaseID, cfg.PropertyName, mode)
		cp, err := store.FindLatest(cmd.Context(), key)
		if errors.Is(err, checkpoint.ErrNotFound) {
			fmt.Fprintf(out, "%s: no run\n", mode)
			continue
		}
		if err != nil {
			return err
		}
		printCheckpoint(out, cp)
	}
	return nil
}

func printCheckpoint(w io.Writer, cp *models.RunCheckpoint) {
	pending := cp.Pending()
	fmt.Fprintf(w, "%s: run %s %s (updated %s)\n", cp.Mode, cp.RunID, cp.State, cp.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  groups: %d  completed: %d  failed: %d  pending: %d  rows: %d  retries: %d\n",
		len(cp.Groups), len(cp.Completed), len(cp.Failed), len(pending), cp.RowsWritten, cp.Retries)
	if len(pending) > 0 {
		fmt.Fprintf(w, "  next: %s\n", strings.Join(pending[:min(len(pending), 5)], ", "))
		if eta := cp.ETA(); eta > 0 {
			fmt.Fprintf(w, "  eta: %s\n", eta.Round(time.Second))
		}
	}
}
