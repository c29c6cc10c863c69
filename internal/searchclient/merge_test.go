package searchclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupePagesTrailingSlash(t *testing.T) {
	pages := []Page{
		{URL: "https://example.com/a", Markdown: "first"},
		{URL: "https://example.com/a/", Markdown: "duplicate"},
		{URL: "https://example.com/b", Markdown: "second"},
	}
	got := DedupePages(pages)
	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Markdown)
	assert.Equal(t, "second", got[1].Markdown)
}

func TestDedupePagesSkipsEmptyURL(t *testing.T) {
	pages := []Page{{URL: "", Markdown: "x"}, {URL: "https://example.com", Markdown: "y"}}
	got := DedupePages(pages)
	assert.Len(t, got, 1)
}

func TestExtractDomain(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a/b?x=1": "example.com",
		"http://example.com":          "example.com",
		"example.com/path":            "example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractDomain(in), in)
	}
}

func TestHasSubstantialContent(t *testing.T) {
	assert.False(t, HasSubstantialContent(Page{Markdown: "too short"}))
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	assert.True(t, HasSubstantialContent(Page{Markdown: string(long)}))
}

func TestAnySubstantial(t *testing.T) {
	assert.False(t, AnySubstantial([]Page{{Markdown: "short"}}))
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	assert.True(t, AnySubstantial([]Page{{Markdown: "short"}, {Markdown: string(long)}}))
}
