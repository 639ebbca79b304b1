package repository

import "context"

type Entry struct {
	Key   string
	Value []byte
}

type IndexEntry struct {
	Key    string
	Member string
	Score  float64
}

// Batch groups the writes of one save. Stores apply it in a single round
// trip but callers must not rely on all-or-nothing semantics.
type Batch struct {
	Values []Entry
	Index  []IndexEntry
}

type StoreInterface interface {
	WriteBatch(ctx context.Context, b Batch) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// MGet returns one slot per key, nil for missing keys.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	// RevRange lists index members by descending score. A negative limit
	// means no limit.
	RevRange(ctx context.Context, key string, offset, limit int64) ([]string, error)
	Count(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
