package serper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bububa/research-crew/tools"
)

func TestSearch(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if key := r.Header.Get("X-API-KEY"); key != "test-key" {
			t.Errorf("unexpected api key %s", key)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{
			"answerBox": {"answer": "Paris"},
			"organic": [
				{"title": "Paris - Wikipedia", "link": "https://en.wikipedia.org/wiki/Paris", "snippet": "Paris is the capital of France.", "position": 1},
				{"title": "France", "link": "https://example.com/france", "snippet": "Country in Europe.", "position": 2},
				{"title": "Extra", "link": "https://example.com/extra", "position": 3}
			]
		}`))
	}))
	defer srv.Close()

	tool, err := New(WithAPIKey("test-key"), WithBaseURL(srv.URL), WithMaxResults(2), WithCountry("fr"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := tool.Run(context.Background(), NewInput("capital of France"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Q != "capital of France" || got.Num != 2 || got.GL != "fr" {
		t.Errorf("unexpected request body %+v", got)
	}
	if len(out.Results) != 2 {
		t.Fatalf("expect 2 results, but got %d", len(out.Results))
	}
	txt := out.String()
	if !strings.HasPrefix(txt, "Answer: Paris") || !strings.Contains(txt, "Link: https://en.wikipedia.org/wiki/Paris") {
		t.Errorf("unexpected rendering:\n%s", txt)
	}
}

func TestSearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "Unauthorized."}`))
	}))
	defer srv.Close()
	tool, err := New(WithAPIKey("bad"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	var failed error
	tool.SetErrorHook(func(_ context.Context, _ tools.AnonymousTool, _ any, err error) { failed = err })
	if _, err := tool.RunAnonymous(context.Background(), `{"query":"x"}`); err == nil || !strings.Contains(err.Error(), "Unauthorized") {
		t.Errorf("expect unauthorized error, got %v", err)
	}
	if failed == nil {
		t.Error("expect error hook to fire")
	}
	if _, err := tool.Run(context.Background(), NewInput("")); err == nil {
		t.Error("expect validation error for empty query")
	}
}

func TestNewMissingAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	if _, err := New(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expect ErrMissingAPIKey, got %v", err)
	}
}

func TestOutputNoResults(t *testing.T) {
	if got := (Output{}).String(); got != "No results found." {
		t.Errorf("unexpected rendering %q", got)
	}
}
