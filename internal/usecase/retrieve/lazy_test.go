package retrieve

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/auditcloud/ragdex/internal/domain"
	"github.com/auditcloud/ragdex/internal/domain/search/filter"
)

type stubEmbedder struct {
	name string
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type stubSearcher struct {
	name string

	searchFunc func(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]domain.Hit, error)
}

func (s *stubSearcher) SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]domain.Hit, error) {
	if s.searchFunc != nil {
		return s.searchFunc(ctx, vector, filters, topK)
	}
	return nil, nil
}

func (s *stubSearcher) Ping(ctx context.Context) error { return nil }

func TestEmbedderCell_SingleInit(t *testing.T) {
	var calls atomic.Int32
	cell := NewEmbedderCell(func() (domain.Embedder, error) {
		calls.Add(1)
		return &stubEmbedder{name: "e"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cell.Get(); err != nil {
				t.Errorf("Get() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("factory called %d times, want 1", got)
	}
}

func TestEmbedderCell_RetriesAfterFailure(t *testing.T) {
	var calls int
	cell := NewEmbedderCell(func() (domain.Embedder, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("provider down")
		}
		return &stubEmbedder{name: "e"}, nil
	})

	if _, err := cell.Get(); err == nil {
		t.Fatal("first Get() should fail")
	}
	e, err := cell.Get()
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if e == nil {
		t.Fatal("second Get() returned nil embedder")
	}
	if calls != 2 {
		t.Errorf("factory called %d times, want 2", calls)
	}

	// Successful handle is cached; no further factory calls.
	if _, err := cell.Get(); err != nil {
		t.Fatalf("third Get() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("factory called %d times after success, want 2", calls)
	}
}

func TestSearcherCell_InvalidateTriggersReconnect(t *testing.T) {
	ctx := context.Background()
	var calls int
	cell := NewSearcherCell(func(ctx context.Context) (Searcher, error) {
		calls++
		return &stubSearcher{name: "s"}, nil
	})

	first, err := cell.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("factory called %d times, want 1", calls)
	}

	// Getting again reuses the handle.
	if _, err := cell.Get(ctx); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("factory called %d times after reuse, want 1", calls)
	}

	cell.Invalidate(first)
	second, err := cell.Get(ctx)
	if err != nil {
		t.Fatalf("Get() after invalidate error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("factory called %d times after invalidate, want 2", calls)
	}
	if second == first {
		t.Error("invalidate should have produced a fresh handle")
	}
}

func TestSearcherCell_StaleInvalidateIgnored(t *testing.T) {
	ctx := context.Background()
	var calls int
	cell := NewSearcherCell(func(ctx context.Context) (Searcher, error) {
		calls++
		return &stubSearcher{name: "s"}, nil
	})

	first, _ := cell.Get(ctx)
	cell.Invalidate(first)
	second, _ := cell.Get(ctx)

	// A late invalidate for the old handle must not evict the new one.
	cell.Invalidate(first)
	third, err := cell.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if third != second {
		t.Error("stale invalidate evicted the current handle")
	}
	if calls != 2 {
		t.Errorf("factory called %d times, want 2", calls)
	}
}
