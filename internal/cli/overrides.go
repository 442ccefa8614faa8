package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clearOverridesCmd = &cobra.Command{
	Use:   "clear-overrides",
	Short: "Clear overrides for every configured experiment",
	Long: `Clear the host override of every experiment listed in the configuration,
as uninstalling the add-on does. With --all, every stored override is
cleared, including experiments no longer in the configuration.`,
	RunE: runClearOverrides,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <experiment>",
	Short: "Set an experiment override",
	Long: `Set the host override of one experiment.

Examples:
  switchboard toggle new-tab-tiles --on
  switchboard toggle new-tab-tiles --off`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

var (
	clearAll  bool
	toggleOn  bool
	toggleOff bool
)

func init() {
	rootCmd.AddCommand(clearOverridesCmd)
	rootCmd.AddCommand(toggleCmd)

	clearOverridesCmd.Flags().BoolVar(&clearAll, "all", false, "Clear every stored override")
	toggleCmd.Flags().BoolVar(&toggleOn, "on", false, "Enable the experiment")
	toggleCmd.Flags().BoolVar(&toggleOff, "off", false, "Disable the experiment")
	toggleCmd.MarkFlagsMutuallyExclusive("on", "off")
	toggleCmd.MarkFlagsOneRequired("on", "off")
}

func runClearOverrides(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if !clearAll {
		n := a.Addon.ClearOverrides(ctx)
		fmt.Fprintf(out(cmd), "Cleared %d overrides\n", n)
		return nil
	}

	overrides, err := a.Settings.Overrides(ctx)
	if err != nil {
		return err
	}
	cleared := 0
	for _, o := range overrides {
		if err := a.Settings.ClearOverride(ctx, o.Name); err != nil {
			return fmt.Errorf("clear %s: %w", o.Name, err)
		}
		cleared++
	}
	fmt.Fprintf(out(cmd), "Cleared %d overrides\n", cleared)
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	if err := a.Settings.SetOverride(context.Background(), name, toggleOn); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "%s: enabled=%t\n", name, toggleOn)
	return nil
}
