/*
Command switchboard runs the switchboard experiments add-on against a local
reference host.

Usage:

	switchboard serve [--port 8000] [--reason startup] [--shutdown-reason shutdown]
	switchboard refresh
	switchboard list
	switchboard toggle <experiment> --on|--off
	switchboard clear-overrides [--all]

The serve command exposes:

	GET    /about/experiments                the interactive experiments page
	POST   /about/experiments/toggle/:name   click a row of the open page
	GET    /panels, /panels/:id              registered home panels
	POST   /panels/:id/refresh               pull-to-refresh a panel
	GET    /datasets/:id                     rows stored for a dataset
	GET    /overrides                        stored overrides
	DELETE /overrides/:name                  clear one override
	GET    /health, /metrics

Configuration is read from the environment; see internal/infrastructure/config.
*/
package main
