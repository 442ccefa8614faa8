// Package periodic is the reference host's periodic-sync scheduler.
//
// Each dataset gets one ticker goroutine and every tick runs the callback
// in a goroutine of its own. A slow callback does not delay or suppress the
// next tick, so callbacks for the same dataset may overlap. Close cancels
// the callbacks' context and waits for them.
package periodic
