package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/takak2166/notion2csv/internal/checkpoint"
	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
)

var (
	checkpointExportMode string
	checkpointClearMode  string
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Download, upload or clear checkpointed runs",
}

var checkpointExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the latest run of a mode, with its rows, to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointExport,
}

var checkpointImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a run from a JSON file written by checkpoint export",
	Long: `Load a run from a JSON file written by checkpoint export. A run with the
same id is replaced; an unfinished imported run is resumed by the next export.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckpointImport,
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the runs of a mode (default: all modes)",
	Args:  cobra.NoArgs,
	RunE:  runCheckpointClear,
}

func init() {
	checkpointExportCmd.Flags().StringVarP(&checkpointExportMode, "mode", "m", string(models.ModeArchive), "archive, unified or workbook")
	checkpointClearCmd.Flags().StringVarP(&checkpointClearMode, "mode", "m", "", "only this mode (default: all)")

	checkpointCmd.AddCommand(checkpointExportCmd)
	checkpointCmd.AddCommand(checkpointImportCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)
}

func runCheckpointExport(cmd *cobra.Command, args []string) error {
	ms, err := modes(checkpointExportMode)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	cp, err := store.FindLatest(ctx, checkpoint.SessionKey(cfg.DatabaseID, cfg.PropertyName, ms[0]))
	if err != nil {
		return fmt.Errorf("no %s run to export: %w", ms[0], err)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := store.Export(ctx, cp.RunID, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported run %s to %s\n", cp.RunID, args[0])
	return nil
}

func runCheckpointImport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	cp, err := store.Import(cmd.Context(), f)
	if err != nil {
		return err
	}
	if cp.DatabaseID != cfg.DatabaseID || cp.PropertyName != cfg.PropertyName {
		logger.Warn("Imported run belongs to another database or property", map[string]interface{}{
			"run_id":      cp.RunID,
			"database_id": cp.DatabaseID,
			"property":    cp.PropertyName,
		})
	}
	printCheckpoint(cmd.OutOrStdout(), cp)
	return nil
}

func runCheckpointClear(cmd *cobra.Command, args []string) error {
	ms, err := modes(checkpointClearMode)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, mode := range ms {
		n, err := store.DeleteSession(cmd.Context(), checkpoint.SessionKey(cfg.DatabaseID, cfg.PropertyName, mode))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: deleted %d runs\n", mode, n)
	}
	return nil
}
