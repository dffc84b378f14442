package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the display groups of the database",
	Long: `List every display group with its page count and the option names whose
pages it collects. Groups are shown by page count, largest first.`,
	Args: cobra.NoArgs,
	RunE: runGroups,
}

func runGroups(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Grouping: %s (%s)\n", cat.roles.Grouping.Name, cat.roles.Grouping.Type)
	fmt.Fprintf(out, "Title: %s  Section: %s  Order: %s\n\n",
		orNone(cat.roles.Title), orNone(cat.roles.Section), orNone(cat.roles.Order))

	total := 0
	for _, g := range cat.groups {
		total += g.Count
		fmt.Fprintf(out, "%5d  %s\n", g.Count, g.Name)
		if len(g.Canonical) > 1 {
			fmt.Fprintf(out, "       includes: %s\n", strings.Join(g.Canonical, ", "))
		}
	}
	fmt.Fprintf(out, "\n%d groups, %d pages\n", len(cat.groups), total)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
