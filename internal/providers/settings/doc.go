// Package settings implements the host override API: per-experiment
// booleans that force an experiment on or off regardless of what the
// remote configuration says. The add-on only ever sets or clears flags;
// the host owns and persists them.
package settings
