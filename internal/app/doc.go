// Package app assembles the reference host and the experiments add-on.
//
// New wires configuration into every collaborator: the sqlite pool behind
// row storage and overrides, the messaging dispatcher answering
// Experiments:GetActive, the panel and page registries, the periodic-sync
// scheduler, and the add-on itself. The HTTP server and the CLI both start
// from an App.
//
// Example Usage:
//
//	a, err := app.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	a.Addon.Startup(ctx, a.Data, host.ReasonAppStartup)
package app
