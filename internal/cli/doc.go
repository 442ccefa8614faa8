// Package cli implements the switchboard command line: serve runs the add-on
// with the reference host API; refresh, list, toggle and clear-overrides
// drive single operations against the same storage.
package cli
