// Package restart runs independent k-means restarts in parallel and selects
// the best one.
//
// The Driver is a fork-join worker pool: immutable Task descriptors are sent
// over a channel to a fixed set of workers, each worker runs seeding and
// iteration to completion with its own random stream, and the driver blocks
// until every task has produced an outcome. Results are stored by restart
// index, so the outcome never depends on completion order.
package restart
