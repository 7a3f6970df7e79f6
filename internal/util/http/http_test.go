package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	var gotAgent, gotAccept, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Test")
		_, _ = w.Write([]byte("icon-bytes"))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL, FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "icon-bytes" {
		t.Errorf("Fetch() = %q", data)
	}
	if !strings.HasPrefix(gotAgent, UserAgentName+"/") {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if !strings.Contains(gotAccept, "image/") {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotCustom != "yes" {
		t.Errorf("X-Test = %q", gotCustom)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/large":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{}); err == nil {
		t.Error("Fetch(404) expected error")
	}
	if _, err := Fetch(context.Background(), srv.URL+"/large", FetchOptions{MaxBytes: 16}); err == nil {
		t.Error("Fetch(large) expected size error")
	}
	if _, err := Fetch(context.Background(), srv.URL+"/large", FetchOptions{MaxBytes: 64}); err != nil {
		t.Errorf("Fetch(at limit) error = %v", err)
	}
	if _, err := Fetch(context.Background(), "://bad", FetchOptions{}); err == nil {
		t.Error("Fetch(bad url) expected error")
	}
}
