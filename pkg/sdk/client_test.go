package ragdex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "largest transfer?" || !req.VerifyNumbers {
			t.Errorf("request = %+v", req)
		}

		json.NewEncoder(w).Encode(ChatResponse{
			Answer:         "1,200.00 on 2024-03-15. Sources: [Source 1]",
			Sources:        []string{"tx-1"},
			RetrievalCount: 1,
			Query:          req.Query,
		})
	}))
	defer server.Close()

	client := New(server.URL, WithAPIKey("secret"))
	res, err := client.Chat(context.Background(), ChatRequest{Query: "largest transfer?", VerifyNumbers: true})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if res.RetrievalCount != 1 || res.Sources[0] != "tx-1" {
		t.Errorf("response = %+v", res)
	}
}

func TestChat_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "validation_failed",
			"message": "query text is required",
		})
	}))
	defer server.Close()

	_, err := New(server.URL).Chat(context.Background(), ChatRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "validation_failed" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "wire" || r.URL.Query().Get("k") != "3" {
			t.Errorf("params = %v", r.URL.Query())
		}
		json.NewEncoder(w).Encode(SearchResponse{
			Query: "wire",
			Hits:  []Hit{{ID: "tx-1", Score: 0.9}},
			Total: 1,
		})
	}))
	defer server.Close()

	res, err := New(server.URL).Search(context.Background(), "wire", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res.Total != 1 || res.Hits[0].ID != "tx-1" {
		t.Errorf("response = %+v", res)
	}
}

func TestHealth_DegradedStillDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(HealthReport{
			Status: "degraded",
			Checks: map[string]string{"database": "error", "generation": "ok"},
		})
	}))
	defer server.Close()

	report, err := New(server.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if report.Healthy() {
		t.Error("Healthy() = true, want false")
	}
	if report.Checks["database"] != "error" {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestHealth_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(HealthReport{Status: "ok", Checks: map[string]string{"database": "ok"}})
	}))
	defer server.Close()

	report, err := New(server.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if !report.Healthy() {
		t.Error("Healthy() = false, want true")
	}
}
