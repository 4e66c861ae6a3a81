// Package wiki implements the external documentation search: an Algolia
// DocSearch REST client, an OpenGraph metadata scraper, and the small
// per-user cache that backs result detail lookups.
package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// maxHits caps a single search regardless of what the caller asks for.
	maxHits = 5

	maxResponseBytes = 10 << 20

	highlightPreTag  = "***__"
	highlightPostTag = "__***"
)

// ResultType classifies where in the document hierarchy a hit matched.
type ResultType string

const (
	// ResultFile is a top-level page match with no surrounding context.
	ResultFile ResultType = "file"

	// ResultHeading is a section heading match; the page title becomes
	// the description.
	ResultHeading ResultType = "heading"

	// ResultContent is a body-text match; the page title becomes the
	// description.
	ResultContent ResultType = "content"
)

// Result is one ranked search hit.
type Result struct {
	Header      string
	Description string
	URL         string
	Highlight   []string
	Type        ResultType
}

// Client is a thin HTTP wrapper around the Algolia DocSearch query API.
type Client struct {
	appID   string
	apiKey  string
	index   string
	baseURL string
	http    *http.Client
}

// NewClient creates an Algolia search client for the given application
// and index. baseURL overrides the production endpoint for tests; empty
// means the standard per-app DSN host.
func NewClient(appID, apiKey, index, baseURL string) *Client {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-dsn.algolia.net", appID)
	}
	return &Client{
		appID:   appID,
		apiKey:  apiKey,
		index:   index,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type queryRequest struct {
	Query                string   `json:"query"`
	HitsPerPage          int      `json:"hitsPerPage"`
	HighlightPreTag      string   `json:"highlightPreTag"`
	HighlightPostTag     string   `json:"highlightPostTag"`
	AttributesToRetrieve []string `json:"attributesToRetrieve"`
	AttributesToSnippet  []string `json:"attributesToSnippet"`
	SnippetEllipsisText  string   `json:"snippetEllipsisText"`
}

type queryResponse struct {
	Hits []hit `json:"hits"`
}

type hit struct {
	Type            string         `json:"type"`
	URL             string         `json:"url"`
	SnippetResult   hitAnnotations `json:"_snippetResult"`
	HighlightResult hitAnnotations `json:"_highlightResult"`
}

type hitAnnotations struct {
	Hierarchy map[string]snippet `json:"hierarchy"`
	Content   *snippet           `json:"content"`
}

type snippet struct {
	Value        string   `json:"value"`
	MatchedWords []string `json:"matchedWords"`
}

// Search runs a DocSearch query and maps the hit hierarchy into flat
// results: lvl1 hits are standalone page headers, lvl2 hits are section
// headings described by their page, and content hits are body snippets
// described by their page. Other hit types are dropped. max is clamped
// to 5.
func (c *Client) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if max < 1 || max > maxHits {
		max = maxHits
	}

	req := queryRequest{
		Query:            query,
		HitsPerPage:      max,
		HighlightPreTag:  highlightPreTag,
		HighlightPostTag: highlightPostTag,
		AttributesToRetrieve: []string{
			"hierarchy.lvl0", "hierarchy.lvl1", "hierarchy.lvl2",
			"content", "type", "url",
		},
		AttributesToSnippet: []string{
			"hierarchy.lvl0:10", "hierarchy.lvl1:10",
			"hierarchy.lvl2:10", "content:10",
		},
		SnippetEllipsisText: "...",
	}

	resp, err := c.do(ctx, fmt.Sprintf("/1/indexes/%s/query", c.index), req)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		switch h.Type {
		case "lvl1":
			out = append(out, Result{
				Header:    h.SnippetResult.Hierarchy["lvl1"].Value,
				URL:       h.URL,
				Highlight: h.HighlightResult.Hierarchy["lvl1"].MatchedWords,
				Type:      ResultFile,
			})
		case "lvl2":
			out = append(out, Result{
				Header:      h.SnippetResult.Hierarchy["lvl2"].Value,
				Description: h.SnippetResult.Hierarchy["lvl1"].Value,
				URL:         h.URL,
				Highlight:   h.HighlightResult.Hierarchy["lvl2"].MatchedWords,
				Type:        ResultHeading,
			})
		case "content":
			r := Result{
				Description: h.SnippetResult.Hierarchy["lvl1"].Value,
				URL:         h.URL,
				Type:        ResultContent,
			}
			if h.SnippetResult.Content != nil {
				r.Header = h.SnippetResult.Content.Value
			}
			if h.HighlightResult.Content != nil {
				r.Highlight = h.HighlightResult.Content.MatchedWords
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// do sends a JSON POST to the Algolia API and decodes the response.
func (c *Client) do(ctx context.Context, path string, payload queryRequest) (*queryResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wiki: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("wiki: create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Algolia-Application-Id", c.appID)
	req.Header.Set("X-Algolia-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wiki: query request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("wiki: read query response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki: query returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	var decoded queryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("wiki: decode query response: %w", err)
	}
	return &decoded, nil
}
