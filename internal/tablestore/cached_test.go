package tablestore

import (
	"context"
	"testing"
	"time"
)

// countingStore counts reads so tests can observe cache hits.
type countingStore struct {
	Store
	reads  int
	tables map[string][][]string
}

func newCountingStore() *countingStore {
	return &countingStore{tables: map[string][][]string{
		"T": {{"A"}, {"1"}},
	}}
}

func (s *countingStore) ReadAll(_ context.Context, table string) ([][]string, error) {
	s.reads++
	rows, ok := s.tables[table]
	if !ok {
		return nil, ErrTableNotFound
	}
	return rows, nil
}

func (s *countingStore) AppendRows(_ context.Context, table string, rows [][]string) error {
	s.tables[table] = append(s.tables[table], rows...)
	return nil
}

func TestCachedReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore()
	cached := NewCached(inner, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := cached.ReadAll(ctx, "T"); err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
	}
	if inner.reads != 1 {
		t.Errorf("inner reads = %d, want 1", inner.reads)
	}
}

func TestCachedReadsDoNotAlias(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore()
	cached := NewCached(inner, time.Minute)

	first, err := cached.ReadAll(ctx, "T")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	first[1][0] = "edited"

	second, err := cached.ReadAll(ctx, "T")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if second[1][0] != "1" {
		t.Errorf("cached snapshot mutated through an earlier read: %q", second[1][0])
	}
	second[1] = append(second[1], "extra")
	third, _ := cached.ReadAll(ctx, "T")
	if len(third[1]) != 1 {
		t.Errorf("cached snapshot grew through an earlier read: %v", third[1])
	}
}

func TestCachedWriteInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore()
	cached := NewCached(inner, time.Minute)

	if _, err := cached.ReadAll(ctx, "T"); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if err := cached.AppendRows(ctx, "T", [][]string{{"2"}}); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}

	rows, err := cached.ReadAll(ctx, "T")
	if err != nil {
		t.Fatalf("ReadAll after write: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("stale read after write: %d rows, want 3", len(rows))
	}
	if inner.reads != 2 {
		t.Errorf("inner reads = %d, want 2", inner.reads)
	}
}

func TestCachedErrorNotCached(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore()
	cached := NewCached(inner, time.Minute)

	if _, err := cached.ReadAll(ctx, "Missing"); err == nil {
		t.Fatal("expected error for missing table")
	}
	if _, err := cached.ReadAll(ctx, "Missing"); err == nil {
		t.Fatal("expected error on second read too")
	}
	if inner.reads != 2 {
		t.Errorf("errors must not be cached: reads = %d, want 2", inner.reads)
	}
}

func TestInvalidateHelper(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore()
	cached := NewCached(inner, time.Minute)

	if _, err := cached.ReadAll(ctx, "T"); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	Invalidate(cached, "T")
	if _, err := cached.ReadAll(ctx, "T"); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if inner.reads != 2 {
		t.Errorf("Invalidate did not drop the entry: reads = %d, want 2", inner.reads)
	}

	// No-op on a plain store.
	Invalidate(inner, "T")
}
