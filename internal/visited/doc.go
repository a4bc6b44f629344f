// Package visited provides the set of solar system ids that have already
// been decoded.
//
// # Purpose
//
// Every explorer shares one Set. Before decoding a node an explorer claims it
// with Add, which inserts the id and reports whether it was new in a single
// atomic step. Only the explorer whose Add returned true decodes the node, so
// a node is decoded at most once no matter how many explorers see it.
//
// # Implementations
//
//   - Memory: in-process, backed by sync.Map.
//   - Redis: a Redis set addressed by a run-scoped key, for explorers spread
//     over several processes that need one shared view.
package visited
