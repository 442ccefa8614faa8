package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the add-on and the reference host API",
	Long: `Start the add-on with the given lifecycle reason and serve the host API.

On SIGINT or SIGTERM the add-on is shut down with --shutdown-reason.

Examples:
  switchboard serve                          # APP_STARTUP, no initial sync
  switchboard serve --reason install         # install: panel installed and synced now
  switchboard serve --shutdown-reason uninstall  # remove data and overrides on exit`,
	RunE: runServe,
}

var (
	servePort           string
	serveReason         string
	serveShutdownReason string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveReason, "reason", "startup", "Startup reason: startup, install, enable, upgrade, downgrade")
	serveCmd.Flags().StringVar(&serveShutdownReason, "shutdown-reason", "shutdown", "Shutdown reason: shutdown, disable, uninstall, upgrade, downgrade")
}

func runServe(cmd *cobra.Command, args []string) error {
	reason, err := host.ParseReason(serveReason)
	if err != nil {
		return err
	}
	shutdownReason, err := host.ParseReason(serveShutdownReason)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if servePort != "" {
		a.Config.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Start(ctx, reason)

	srv := server.NewServer(a)
	defer srv.Close()

	runErr := srv.Run(ctx)

	a.Logger.Info("stopping add-on", zap.Stringer("reason", shutdownReason))
	a.Stop(context.Background(), shutdownReason)

	if runErr != nil {
		return fmt.Errorf("server error: %w", runErr)
	}
	return nil
}
