// Package searchclient is the capability boundary spec §1 names as
// "the web search/scrape service (treated as a capability to return a
// list of pages with URL and extracted markdown)". It talks the
// search(query, {timeout, limit, scrapeOptions}) -> {data:[{url, markdown}]}
// contract from spec §6.
package searchclient

import "context"

// ScrapeOptions asks the search service to also fetch and extract page
// content in the given formats. The core only ever needs "markdown".
type ScrapeOptions struct {
	Formats []string `json:"formats"`
}

// Request is one search call.
type Request struct {
	Query         string
	Timeout       int // seconds
	Limit         int
	ScrapeOptions ScrapeOptions
}

// Page is a single result: URL plus (if scraped) extracted markdown.
type Page struct {
	URL      string
	Markdown string
}

// Client is the search/scrape capability the core depends on.
type Client interface {
	Search(ctx context.Context, req Request) ([]Page, error)
}
