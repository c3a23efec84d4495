package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>World's Best Egg Toast | Recipes</title></head>
<body>
<nav><ul><li>Home</li><li>Recipes</li></ul></nav>
<h1>Egg Toast</h1>
<p>A quick   breakfast classic.</p>
<h2>Ingredients</h2>
<ul>
<li>2 eggs</li>
<li>1 slice of bread</li>
<li>1/2 tbsp butter</li>
</ul>
<h2>Method</h2>
<p>Fry the eggs and toast the bread.</p>
<p>Fry the eggs and toast the bread.</p>
</body>
</html>`

func TestExtract(t *testing.T) {
	result, err := Extract(samplePage)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Title != "Egg Toast" {
		t.Errorf("Expected h1 title, got %q", result.Title)
	}
	if len(result.Ingredients) != 3 {
		t.Fatalf("Expected 3 ingredient lines, got %v", result.Ingredients)
	}
	if result.Ingredients[0] != "2 eggs" || result.Ingredients[2] != "1/2 tbsp butter" {
		t.Errorf("Unexpected ingredient extraction: %v", result.Ingredients)
	}
	if !strings.Contains(result.Text, "## Ingredients") {
		t.Errorf("Expected headings in text rendering, got %q", result.Text)
	}
	if strings.Count(result.Text, "Fry the eggs and toast the bread.") != 1 {
		t.Errorf("Expected duplicate paragraphs to be removed")
	}
	if strings.Contains(result.Text, "  ") {
		t.Errorf("Expected collapsed whitespace, got %q", result.Text)
	}
}

func TestExtractTitleFallback(t *testing.T) {
	result, err := Extract(`<html><head><title>Fallback Title</title></head><body><p>x</p></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Title != "Fallback Title" {
		t.Errorf("Expected title element fallback, got %q", result.Title)
	}
}

func TestLooksLikeIngredient(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"2 eggs", true},
		{"1/2 cup sugar", true},
		{"250 g flour", true},
		{"½ tsp salt", true},
		{"Preheat the oven", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeIngredient(tt.line); got != tt.want {
			t.Errorf("looksLikeIngredient(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(nil)
	result, err := c.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if result.URL != srv.URL {
		t.Errorf("Expected result URL %s, got %s", srv.URL, result.URL)
	}
	if result.Title != "Egg Toast" {
		t.Errorf("Expected extracted title, got %q", result.Title)
	}
}

func TestFetchPageNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(nil)
	if _, err := c.FetchPage(context.Background(), srv.URL); err == nil {
		t.Fatalf("Expected error for non-200 response")
	}
}
