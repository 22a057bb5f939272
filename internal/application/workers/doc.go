// Package workers implements the bounded worker pool used to compile
// independent graphs concurrently.
//
// A pool runs a fixed number of goroutines that pull job indexes from a
// shared queue. The first failing job cancels the remaining work; every
// failure is returned, combined. Worker status can be sampled at any time
// through Status.
package workers
