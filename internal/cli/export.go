package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/takak2166/notion2csv/internal/export"
	"github.com/takak2166/notion2csv/internal/models"
)

var (
	exportMode        string
	exportMaxGroups   int
	exportMaxDuration time.Duration
	exportRetryFailed bool
	exportOutput      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every group, resuming an unfinished run",
	Long: `Export every display group into one artifact.

Modes:
  archive   one CSV per group in osszes_kurzus.zip
  unified   all groups in osszes_kurzus.csv
  workbook  one sheet per group in osszes_kurzus.xlsx

Progress is checkpointed after every group. When a cap stops the run or some
groups fail, the command exits with status 3; run it again to continue.

Examples:
  notion2csv export --mode unified
  notion2csv export --mode archive --max-groups 5
  notion2csv export --mode workbook --retry-failed`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportMode, "mode", "m", string(models.ModeArchive), "archive, unified or workbook")
	exportCmd.Flags().IntVar(&exportMaxGroups, "max-groups", 0, "stop after this many groups (0 = no limit)")
	exportCmd.Flags().DurationVar(&exportMaxDuration, "max-duration", 0, "stop starting new groups after this long (0 = no limit)")
	exportCmd.Flags().BoolVar(&exportRetryFailed, "retry-failed", false, "retry groups that failed in an earlier invocation")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory (default: output_dir)")
}

func runExport(cmd *cobra.Command, args []string) error {
	mode := models.ExportMode(exportMode)
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", export.ErrInvalidMode, exportMode)
	}
	ctx := cmd.Context()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	outDir := exportOutput
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	res, err := newEngine(cfg, cat, store).Run(ctx, export.Request{
		Mode:        mode,
		RetryFailed: exportRetryFailed,
		MaxGroups:   exportMaxGroups,
		MaxDuration: exportMaxDuration,
		OutputDir:   outDir,
	})
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	if res.State != models.StateComplete {
		return ErrResumeRequired
	}
	return nil
}

func printResult(w io.Writer, res *export.Result) {
	verb := "Started"
	if res.Resumed {
		verb = "Resumed"
	}
	fmt.Fprintf(w, "%s run %s: %s\n", verb, res.RunID, res.State)
	fmt.Fprintf(w, "  completed: %d  failed: %d  pending: %d  rows: %d  retries: %d\n",
		len(res.Completed), len(res.Failed), len(res.Pending), res.RowsWritten, res.Retries)

	names := make([]string, 0, len(res.Failed))
	for name := range res.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  failed %s: %s\n", name, res.Failed[name])
	}

	switch {
	case res.ArtifactPath != "":
		fmt.Fprintf(w, "Written %s\n", res.ArtifactPath)
	case res.NeedsResume:
		fmt.Fprintln(w, "Stopped at the configured limit; run the command again to continue.")
	case len(res.Failed) > 0:
		fmt.Fprintln(w, "Some groups failed; run again with --retry-failed to retry them.")
	}
}
