// Package ipc implements the host messaging channel used by the add-on.
//
// A Dispatcher routes request messages by type to registered handlers and
// returns the handler's result, like a browser's sendRequestForResult.
// ActiveExperiments answers "Experiments:GetActive" from the configured
// baseline plus the override flags in package settings, encoded either as a
// JSON string or as a structured slice.
//
// Example Usage:
//
//	d := ipc.NewDispatcher(logger)
//	d.Register(host.MessageGetActive, ipc.ActiveExperiments(baseline, overrides, "string"))
//	payload, err := d.SendRequestForResult(ctx, host.Message{Type: host.MessageGetActive})
package ipc
