package tools

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/firebase/genkit/go/ai"
)

// WebSearchName is the Genkit tool name for DuckDuckGo web search.
const WebSearchName = "web_search"

const (
	webSearchTimeout    = 10 * time.Second
	defaultSearchLimit  = 3
	maxSearchLimit      = 5
	duckDuckGoUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// WebSearchInput defines input for the web_search tool.
type WebSearchInput struct {
	Query      string `json:"query" jsonschema_description:"The search query string."`
	MaxResults int    `json:"max_results,omitempty" jsonschema_description:"Maximum number of results to return (1-5). Defaults to 3."`
	Region     string `json:"region,omitempty" jsonschema_description:"Optional region code, e.g. 'wt-wt', 'us-en' or 'cn-zh'."`
}

// SearchResult is one organic result from a web search.
type SearchResult struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}

// Search performs web searches against DuckDuckGo's HTML endpoint.
type Search struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewSearch creates the web search tool handler.
func NewSearch(logger *slog.Logger) *Search {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Search{
		client:  &http.Client{Timeout: webSearchTimeout},
		baseURL: "https://html.duckduckgo.com/html/",
		logger:  logger,
	}
}

// WebSearch runs a query and returns up to max_results organic results.
// An empty query is rejected; max_results is clamped to 1-5.
func (s *Search) WebSearch(ctx *ai.ToolContext, input WebSearchInput) (map[string]any, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, NewInvalidArgumentsError("search query must not be empty")
	}

	limit := input.MaxResults
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	region := strings.TrimSpace(input.Region)
	if region == "" {
		region = "wt-wt"
	}

	s.logger.Debug("WebSearch called", "query", query, "max_results", limit, "region", region)

	results, err := s.fetchResults(ctx, query, region, limit)
	if err != nil {
		s.logger.Warn("web search failed", "query", query, "error", err)
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	return map[string]any{
		"query":   query,
		"results": results,
	}, nil
}

func (s *Search) fetchResults(ctx *ai.ToolContext, query, region string, limit int) ([]SearchResult, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", region)

	req, err := http.NewRequestWithContext(ctx.Context, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", duckDuckGoUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting results: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	results := make([]SearchResult, 0, limit)
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		body := strings.TrimSpace(sel.Find(".result__snippet").First().Text())
		if title == "" || href == "" {
			return true
		}
		results = append(results, SearchResult{
			Title: title,
			Href:  resolveRedirect(href),
			Body:  body,
		})
		return len(results) < limit
	})
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=... redirect links so
// results carry the destination URL.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
