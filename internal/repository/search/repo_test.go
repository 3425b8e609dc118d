package search

import (
	"context"
	"errors"
	"testing"

	"github.com/auditcloud/ragdex/internal/db"
	"github.com/auditcloud/ragdex/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	pingFn      func(ctx context.Context) error
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func TestSearchKNN_IndexNameAndKeyStripping(t *testing.T) {
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
			if q.IndexName != "ragdex:audit_documents:idx" {
				t.Errorf("index name = %q", q.IndexName)
			}
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "ragdex:audit_documents:rec-1", Score: 0.9, Fields: map[string]string{"text": "a"}},
					{Key: "ragdex:audit_documents:rec-2", Score: 0.8, Fields: map[string]string{"text": "b"}},
				},
			}, nil
		},
	}
	repo := New(ms, "ragdex:", "audit_documents")

	hits, err := repo.SearchKNN(context.Background(), []float32{0.1}, filter.Expression{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID() != "rec-1" || hits[1].ID() != "rec-2" {
		t.Errorf("expected prefix-stripped ids, got %q %q", hits[0].ID(), hits[1].ID())
	}
	if hits[0].Score() != 0.9 {
		t.Errorf("score = %f", hits[0].Score())
	}
}

func TestSearchKNN_StripsVectorField(t *testing.T) {
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{
				Total: 1,
				Entries: []db.SearchEntry{
					{Key: "ragdex:audit_documents:rec-1", Score: 0.9, Fields: map[string]string{
						"vector": "\x00\x01\x02\x03",
						"amount": "1000",
					}},
				},
			}, nil
		},
	}
	repo := New(ms, "ragdex:", "audit_documents")

	hits, err := repo.SearchKNN(context.Background(), []float32{0.1}, filter.Expression{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := hits[0].Payload().Field("vector"); ok {
		t.Error("vector blob must not leak into payload")
	}
	if v, ok := hits[0].Payload().Amount(); !ok || v != "1000" {
		t.Errorf("amount = %q, %v", v, ok)
	}
}

func TestSearchKNN_EmptyPayload(t *testing.T) {
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{
				Total:   1,
				Entries: []db.SearchEntry{{Key: "ragdex:audit_documents:rec-1", Score: 0.5}},
			}, nil
		},
	}
	repo := New(ms, "ragdex:", "audit_documents")

	hits, err := repo.SearchKNN(context.Background(), []float32{0.1}, filter.Expression{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits[0].Payload().Len() != 0 {
		t.Error("expected empty payload when store returns no fields")
	}
}

func TestSearchKNN_StoreError(t *testing.T) {
	wantErr := errors.New("connection refused")
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return nil, wantErr
		},
	}
	repo := New(ms, "ragdex:", "audit_documents")

	_, err := repo.SearchKNN(context.Background(), []float32{0.1}, filter.Expression{}, 5)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
