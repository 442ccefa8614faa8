package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one sync cycle and print the stored rows",
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.Addon.Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tCOLOR\tURL")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Title, r.BackgroundColor, r.URL)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "\n%d rows written to %s\n", len(rows), a.Config.Panel.DatasetID)
	return nil
}
