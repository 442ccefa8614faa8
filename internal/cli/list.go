package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/experiments"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured experiments and whether each is active",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	descriptors, err := a.Fetcher.Fetch(ctx, a.Config.Experiments.ConfigURL)
	if err != nil {
		return err
	}
	enabled, err := a.Sync.EnabledExperiments(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXPERIMENT\tACTIVE")
	for _, r := range experiments.Merge(descriptors, enabled) {
		fmt.Fprintf(w, "%s\t%t\n", r.Name, r.IsEnabled)
	}
	return w.Flush()
}
