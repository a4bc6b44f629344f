package visited

import "context"

// Set is a concurrency-safe set of node ids.
type Set interface {
	// Add inserts id. added is true only for the caller that inserted it.
	Add(ctx context.Context, id int) (added bool, err error)
	// Contains reports whether id has been added.
	Contains(ctx context.Context, id int) (bool, error)
	// Len returns the number of ids in the set.
	Len(ctx context.Context) (int, error)
}
