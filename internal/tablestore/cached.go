package tablestore

import (
	"context"
	"time"

	"balcao/internal/cache"
)

// DefaultReadTTL bounds remote-call volume during a page render burst.
const DefaultReadTTL = 20 * time.Second

// CachedStore is a read-through decorator over a Store. Full-table reads
// are cached for a short window; every write through it invalidates the
// written table so the next read is remote.
type CachedStore struct {
	inner Store
	reads *cache.TTL[[][]string]
}

var (
	_ Store       = (*CachedStore)(nil)
	_ Invalidator = (*CachedStore)(nil)
)

func NewCached(inner Store, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultReadTTL
	}
	return &CachedStore{
		inner: inner,
		reads: cache.NewTTL[[][]string](64, ttl),
	}
}

// ReadCache exposes the underlying cache for cleanup registration.
func (c *CachedStore) ReadCache() cache.Cleaner {
	return c.reads
}

func (c *CachedStore) Invalidate(table string) {
	c.reads.Delete(table)
}

func (c *CachedStore) Tables(ctx context.Context) ([]string, error) {
	return c.inner.Tables(ctx)
}

// ReadAll always hands out a copy. Callers edit the rows they read
// before writing them back, so the cached snapshot must never alias
// what a caller holds.
func (c *CachedStore) ReadAll(ctx context.Context, table string) ([][]string, error) {
	if rows, ok := c.reads.Get(table); ok {
		return cloneRows(rows), nil
	}
	rows, err := c.inner.ReadAll(ctx, table)
	if err != nil {
		return nil, err
	}
	c.reads.Set(table, cloneRows(rows))
	return rows, nil
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (c *CachedStore) AppendRows(ctx context.Context, table string, rows [][]string) error {
	c.reads.Delete(table)
	return c.inner.AppendRows(ctx, table, rows)
}

func (c *CachedStore) ReplaceAll(ctx context.Context, table string, rows [][]string) error {
	c.reads.Delete(table)
	return c.inner.ReplaceAll(ctx, table, rows)
}

func (c *CachedStore) UpdateHeader(ctx context.Context, table string, header []string) error {
	c.reads.Delete(table)
	return c.inner.UpdateHeader(ctx, table, header)
}

func (c *CachedStore) CreateTable(ctx context.Context, table string, header []string) error {
	c.reads.Delete(table)
	return c.inner.CreateTable(ctx, table, header)
}
