package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// actions: list the catalog.
func actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the known API actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPATH\tTYPE")
			for _, a := range rongcloud.Actions() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.Path, a.ContentType)
			}
			return tw.Flush()
		},
	}
}
