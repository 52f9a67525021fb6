package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRandom_LiveAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":"Stay hungry.","author":"Steve Jobs","tags":["Motivation","Work"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	q := c.Random(context.Background())

	if q.Content != "Stay hungry." {
		t.Errorf("Content = %q, want the API content", q.Content)
	}
	if q.Author != "Steve Jobs" {
		t.Errorf("Author = %q, want %q", q.Author, "Steve Jobs")
	}
	if q.Tag != "Motivation" {
		t.Errorf("Tag = %q, want first tag", q.Tag)
	}
	if q.Source != "quotable_api" {
		t.Errorf("Source = %q, want quotable_api", q.Source)
	}
}

func TestRandom_FallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	q := c.Random(context.Background())

	if q.Source != "local_cache" {
		t.Errorf("Source = %q, want local_cache on API error", q.Source)
	}
	if q.Content == "" || q.Author == "" {
		t.Errorf("fallback quote incomplete: %+v", q)
	}
}

func TestRandom_FallbackOnUnreachableAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, nil)
	q := c.Random(context.Background())

	if q.Source != "local_cache" {
		t.Errorf("Source = %q, want local_cache when API is unreachable", q.Source)
	}
}

func TestRandom_FallbackOnBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if q := c.Random(context.Background()); q.Source != "local_cache" {
		t.Errorf("Source = %q, want local_cache on undecodable body", q.Source)
	}
}

func TestLocalQuote_StableWithinHour(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 12, 0, 0, time.UTC)
	a := localQuote(now)
	b := localQuote(now.Add(20 * time.Minute))
	if a != b {
		t.Errorf("same hour should pick the same quote: %+v vs %+v", a, b)
	}
	if a.Source != "local_cache" {
		t.Errorf("Source = %q, want local_cache", a.Source)
	}
}
