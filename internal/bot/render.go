package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/faqbot/faqbot/internal/faq"
	"github.com/faqbot/faqbot/internal/wiki"
	"github.com/faqbot/faqbot/pkg/message"
)

// entryEmbed renders one FAQ entry for card-capable channels.
func entryEmbed(e *faq.Entry) message.Embed {
	embed := message.Embed{
		Title:       e.Title,
		Description: e.Description,
		Image:       e.Image,
		Footer:      "tags: " + strings.Join(e.Tags, ", "),
	}
	if e.ModificationTime > 0 {
		embed.Timestamp = time.Unix(e.ModificationTime, 0).UTC()
	}
	return embed
}

// renderPage formats one page of the tag listing with the navigation
// footer callers rely on.
func renderPage(p faq.Page, prefix string) string {
	if p.TotalEntries == 0 {
		return "There are no FAQ entries yet."
	}

	var b strings.Builder
	b.WriteString("**FAQ tags**\n")
	for _, row := range p.Rows {
		fmt.Fprintf(&b, "%s - %s\n", row.Tag, row.Title)
	}
	fmt.Fprintf(&b, "page %d of %d (%d total faq entries)\n", p.Number, p.TotalPages, p.TotalEntries)
	fmt.Fprintf(&b, "Use \"%sfaq list [page]\" to list a given page.", prefix)
	return b.String()
}

// renderResults formats a numbered search result list.
func renderResults(results []wiki.Result, prefix string) string {
	var b strings.Builder
	b.WriteString("**Documentation search results**\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s", i+1, r.Header)
		if r.Description != "" {
			fmt.Fprintf(&b, " (%s)", r.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Use \"%sfaq details <n>\" for more about a result.", prefix)
	return b.String()
}

// metadataEmbed renders a details lookup, preferring the page's own
// OpenGraph data and falling back to the search hit.
func metadataEmbed(r wiki.Result, meta *wiki.Metadata) message.Embed {
	embed := message.Embed{
		Title:       meta.Title,
		Description: meta.Description,
		Image:       meta.Image,
	}
	if embed.Title == "" {
		embed.Title = r.Header
	}
	if embed.Description == "" {
		embed.Description = r.Description
	}

	url := meta.URL
	if url == "" {
		url = r.URL
	}
	footer := url
	if meta.Site != "" {
		footer = meta.Site + " - " + url
	}
	embed.Footer = footer
	return embed
}
