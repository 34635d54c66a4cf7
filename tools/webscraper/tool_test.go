package webscraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testPage = `<html>
<head>
  <title>Test Page</title>
  <meta name="author" content="Jane Doe">
  <meta name="description" content="A page for testing">
  <meta property="og:site_name" content="Example">
</head>
<body>
  <nav>Navigation</nav>
  <main>
    <h1>Hello</h1>
    <p>Some <a href="/about">linked</a> text.</p>


    <p>Second paragraph.</p>
  </main>
  <script>alert("x")</script>
  <footer>Footer</footer>
</body>
</html>`

func newPageServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			t.Errorf("unexpected user agent %s", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebscraper(t *testing.T) {
	srv := newPageServer(t, testPage)
	tool := New()
	out, err := tool.Run(context.Background(), NewInput(srv.URL+"/", true))
	if err != nil {
		t.Fatal(err)
	}
	meta := out.Metadata
	if meta.Title != "Test Page" || meta.Author != "Jane Doe" || meta.Description != "A page for testing" || meta.SiteName != "Example" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if !strings.HasPrefix(srv.URL, "http://"+meta.Domain) {
		t.Errorf("unexpected domain %s", meta.Domain)
	}
	for _, want := range []string{"# Hello", "Second paragraph.", "/about"} {
		if !strings.Contains(out.Content, want) {
			t.Errorf("expect content to contain %q:\n%s", want, out.Content)
		}
	}
	for _, unwanted := range []string{"Navigation", "alert", "Footer", "\n\n\n"} {
		if strings.Contains(out.Content, unwanted) {
			t.Errorf("expect content without %q:\n%s", unwanted, out.Content)
		}
	}
	if !strings.HasPrefix(out.String(), "# Test Page\n\n") {
		t.Errorf("unexpected rendering:\n%s", out.String())
	}
}

func TestWebscraperWithoutLinks(t *testing.T) {
	srv := newPageServer(t, testPage)
	out, err := New().Run(context.Background(), NewInput(srv.URL+"/", false))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.Content, "/about") {
		t.Errorf("expect links to be stripped:\n%s", out.Content)
	}
	if !strings.Contains(out.Content, "linked") {
		t.Errorf("expect link text to be kept:\n%s", out.Content)
	}
}

func TestWebscraperMaxContentLength(t *testing.T) {
	srv := newPageServer(t, testPage)
	_, err := New(WithMaxContentLength(16)).Run(context.Background(), NewInput(srv.URL+"/", false))
	if !errors.Is(err, ErrContentTooLarge) {
		t.Errorf("expect ErrContentTooLarge, but got %v", err)
	}
}

func TestWebscraperErrors(t *testing.T) {
	srv := newPageServer(t, testPage)
	tool := New()
	if _, err := tool.Run(context.Background(), NewInput(srv.URL+"/missing", false)); err == nil {
		t.Error("expect error for 404 page")
	}
	if _, err := tool.RunAnonymous(context.Background(), `{"url":"not a url"}`); err == nil {
		t.Error("expect validation error for invalid url")
	}
}

func TestWebscraperDefinition(t *testing.T) {
	def := New().Definition()
	if def.Name != "scrape_website" || def.Parameters == nil {
		t.Errorf("unexpected definition %+v", def)
	}
}
