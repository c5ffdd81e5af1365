package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDetectURL(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"check this out https://example.com/page", "https://example.com/page", true},
		{"http://example.com.", "http://example.com", true},
		{"(see https://example.com/a?b=1)", "https://example.com/a?b=1", true},
		{"no links here", "", false},
		{"ftp://example.com is not http", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectURL(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("DetectURL(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveReadsOpenGraphTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head>
			<title>Fallback Title</title>
			<meta property="og:title" content="Open Graph Title">
			<meta property="og:description" content="A description.">
			<meta property="og:image" content="https://example.com/img.png">
		</head><body></body></html>`))
	}))
	defer server.Close()

	p := NewFetcher(time.Second).Resolve(context.Background(), server.URL)
	if p.Title != "Open Graph Title" {
		t.Fatalf("Title = %q", p.Title)
	}
	if p.Description != "A description." {
		t.Fatalf("Description = %q", p.Description)
	}
	if p.ImageURL != "https://example.com/img.png" {
		t.Fatalf("ImageURL = %q", p.ImageURL)
	}
	if p.URL != server.URL {
		t.Fatalf("URL = %q", p.URL)
	}
}

func TestResolveFallsBackToTitleElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Plain Title</title></head><body></body></html>`))
	}))
	defer server.Close()

	p := NewFetcher(time.Second).Resolve(context.Background(), server.URL)
	if p.Title != "Plain Title" {
		t.Fatalf("Title = %q", p.Title)
	}
}

func TestResolveDegradesToBareURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewFetcher(time.Second).Resolve(context.Background(), server.URL)
	if p.URL != server.URL || p.Title != "" {
		t.Fatalf("expected bare-URL preview, got %+v", p)
	}

	// Unreachable host must also degrade, not error.
	p = NewFetcher(100 * time.Millisecond).Resolve(context.Background(), "http://127.0.0.1:1")
	if p.URL != "http://127.0.0.1:1" || p.Title != "" {
		t.Fatalf("expected bare-URL preview, got %+v", p)
	}
}

func TestResolveSkipsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	p := NewFetcher(time.Second).Resolve(context.Background(), server.URL)
	if p.Title != "" {
		t.Fatalf("non-HTML body produced metadata: %+v", p)
	}
}
