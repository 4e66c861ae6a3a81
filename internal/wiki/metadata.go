package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// Metadata is the OpenGraph description of a documentation page.
type Metadata struct {
	Title       string
	Description string
	Image       string
	ImageAlt    string
	Site        string
	URL         string
}

// Metadata fetches a page and extracts its OpenGraph meta tags. Tags may
// appear under either the `property` or `name` attribute; pages written
// against older tooling use the latter. Missing tags leave their field
// empty.
func (c *Client) Metadata(ctx context.Context, url string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("wiki: create metadata request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wiki: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki: fetch %s: %s", url, resp.Status)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("wiki: parse %s: %w", url, err)
	}

	tags := collectMetaTags(doc)
	return &Metadata{
		Title:       tags["og:title"],
		Description: tags["og:description"],
		Image:       tags["og:image"],
		ImageAlt:    tags["og:image:alt"],
		Site:        tags["og:site_name"],
		URL:         tags["og:url"],
	}, nil
}

// collectMetaTags walks the document and gathers og:* meta content by
// tag name. The first occurrence of each tag wins.
func collectMetaTags(doc *html.Node) map[string]string {
	tags := make(map[string]string)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var key, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property", "name":
					key = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if strings.HasPrefix(key, "og:") {
				if _, seen := tags[key]; !seen {
					tags[key] = content
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return tags
}
