// Package metrics provides the numeric building blocks for the sampling
// pipeline: counter-to-rate derivation, exponential smoothing, and the
// fixed-capacity rolling windows viewers render from.
//
// None of the types lock. Each instance is owned by exactly one goroutine:
// a collector's counter state by its sampler loop, a viewer's windows by
// the UI event loop.
package metrics
