package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mealforge/mealforge/pkg/logging"
)

// maxPageBytes bounds how much of a fetched page is read.
const maxPageBytes = 1 << 20

// Result is an extracted external recipe page used to enrich a generation
// prompt.
type Result struct {
	URL         string
	Title       string
	Ingredients []string
	Text        string
}

// Client fetches external recipe pages. It is only consulted when a
// generation request sets AllowWebSearch.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a recipe page fetcher
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		logger:     logging.WithComponent("search"),
	}
}

// FetchPage downloads a recipe page and extracts its title, ingredient list
// candidates, and readable text.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build page request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	result, err := Extract(string(body))
	if err != nil {
		return nil, err
	}
	result.URL = pageURL
	c.logger.Debug("fetched recipe page", "url", pageURL, "title", result.Title)
	return result, nil
}

// Extract pulls the recipe-relevant content out of an HTML document: the
// page title, list items that look like ingredient lines, and a cleaned
// text rendering of headings and paragraphs.
func Extract(html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	result := &Result{}
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		result.Title = strings.TrimSpace(h1.Text())
	} else {
		result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		line := cleanLine(s.Text())
		if looksLikeIngredient(line) {
			result.Ingredients = append(result.Ingredients, line)
		}
	})

	var out []string
	doc.Find("h1,h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		text := cleanLine(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1":
			out = append(out, "# "+text)
		case "h2":
			out = append(out, "## "+text)
		case "h3":
			out = append(out, "### "+text)
		case "li":
			out = append(out, "- "+text)
		default:
			out = append(out, text)
		}
	})
	result.Text = dedupeParagraphs(strings.Join(out, "\n\n"))
	return result, nil
}

var spaceRe = regexp.MustCompile(`[ \t]+`)

func cleanLine(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// quantityRe matches lines starting with an amount, the usual shape of an
// ingredient line ("2 eggs", "1/2 cup sugar", "250 g flour").
var quantityRe = regexp.MustCompile(`^[0-9¼½¾⅓⅔]+([./][0-9]+)?\s+\S`)

func looksLikeIngredient(line string) bool {
	if line == "" || len(line) > 120 {
		return false
	}
	return quantityRe.MatchString(line)
}

func dedupeParagraphs(text string) string {
	parts := strings.Split(text, "\n\n")
	seen := map[string]struct{}{}
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}
