package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chriscorrea/wikiword/internal/fetch"
)

const pageJSON = `{"query":{"pages":{"12345":{"pageid":12345,"title":"cat","revisions":[{"*":"==English==\n===Noun===\n# a small animal"}]}}}}`

func TestPageContent(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr error
		expectOut string
	}{
		{
			name:      "success",
			status:    http.StatusOK,
			body:      pageJSON,
			expectOut: "==English==\n===Noun===\n# a small animal",
		},
		{
			name:      "server error status",
			status:    http.StatusInternalServerError,
			body:      "oops",
			expectErr: fetch.ErrServer,
		},
		{
			name:      "api error payload",
			status:    http.StatusOK,
			body:      `{"error":{"code":"badtitle","info":"Bad title"}}`,
			expectErr: fetch.ErrServer,
		},
		{
			name:      "malformed json",
			status:    http.StatusOK,
			body:      `{"query":`,
			expectErr: fetch.ErrParse,
		},
		{
			name:      "missing page",
			status:    http.StatusOK,
			body:      `{"query":{"pages":{"-1":{"ns":0,"title":"zzzz","missing":""}}}}`,
			expectErr: fetch.ErrParse,
		},
		{
			name:      "no pages",
			status:    http.StatusOK,
			body:      `{"batchcomplete":""}`,
			expectErr: fetch.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := fetch.NewClient(fetch.Options{Endpoint: server.URL})
			content, err := client.PageContent(context.Background(), "cat")

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("PageContent() error = %v, want %v", err, tt.expectErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PageContent() unexpected error: %v", err)
			}
			if content != tt.expectOut {
				t.Errorf("PageContent() = %q, want %q", content, tt.expectOut)
			}
		})
	}
}

func TestPageContentRequest(t *testing.T) {
	var gotQuery map[string][]string
	var gotAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(pageJSON))
	}))
	defer server.Close()

	client := fetch.NewClient(fetch.Options{
		Endpoint:  server.URL,
		UserAgent: "test-agent/1.0",
	})

	title := "Wiktionary:Word of the day/Archive/2024/March"
	if _, err := client.PageContent(context.Background(), title); err != nil {
		t.Fatalf("PageContent() unexpected error: %v", err)
	}

	expected := map[string]string{
		"action": "query",
		"prop":   "revisions",
		"titles": title,
		"rvprop": "content",
		"format": "json",
	}
	for key, want := range expected {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("query %q = %v, want %q", key, got, want)
		}
	}
	if _, ok := gotQuery["rvexpandtemplates"]; ok {
		t.Errorf("PageContent() should not expand templates")
	}
	if gotAgent != "test-agent/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "test-agent/1.0")
	}

	if _, err := client.ExpandedPageContent(context.Background(), "cat"); err != nil {
		t.Fatalf("ExpandedPageContent() unexpected error: %v", err)
	}
	if got := gotQuery["rvexpandtemplates"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("ExpandedPageContent() rvexpandtemplates = %v, want [true]", got)
	}
}

func TestPageContentUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close() // nothing listens here anymore

	client := fetch.NewClient(fetch.Options{Endpoint: endpoint, Timeout: 2 * time.Second})
	_, err := client.PageContent(context.Background(), "cat")

	if !errors.Is(err, fetch.ErrConnectivity) {
		t.Fatalf("PageContent() error = %v, want ErrConnectivity", err)
	}
	if !strings.Contains(err.Error(), "failed to fetch URL") {
		t.Errorf("PageContent() error should mention URL fetching, got %v", err)
	}
}

func TestPageContentCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageJSON))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := fetch.NewClient(fetch.Options{Endpoint: server.URL})
	_, err := client.PageContent(ctx, "cat")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("PageContent() error = %v, want context.Canceled", err)
	}
	if !errors.Is(err, fetch.ErrConnectivity) {
		t.Errorf("PageContent() error = %v, want ErrConnectivity", err)
	}
}

func TestPageContentTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "20000000")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := fetch.NewClient(fetch.Options{Endpoint: server.URL})
	_, err := client.PageContent(context.Background(), "cat")

	if !errors.Is(err, fetch.ErrServer) {
		t.Errorf("PageContent() error = %v, want ErrServer", err)
	}
}
