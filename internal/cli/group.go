package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/takak2166/notion2csv/internal/export"
)

var groupOutput string

var groupCmd = &cobra.Command{
	Use:   "group <name>",
	Short: "Export a single group to CSV",
	Long: `Export one display group to <output>/export_<name>.csv without touching
any checkpointed run. The name is matched ignoring case and accents.`,
	Args: cobra.ExactArgs(1),
	RunE: runGroup,
}

func init() {
	groupCmd.Flags().StringVarP(&groupOutput, "output", "o", "", "output directory (default: output_dir)")
}

func runGroup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	g, rows, err := newEngine(cfg, cat, nil).Group(ctx, args[0])
	if err != nil {
		return err
	}

	dir := groupOutput
	if dir == "" {
		dir = cfg.OutputDir
	}
	path, err := export.WriteGroupFile(dir, g, rows, cfg.MaxCellLength)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Written %s (%d rows)\n", path, len(rows))
	return nil
}
