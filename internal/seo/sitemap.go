package seo

import (
	"encoding/xml"
	"strconv"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// Sitemap priorities
const (
	PriorityHome    = 1.0
	PrioritySection = 0.9
	PriorityListing = 0.8
	PriorityPost    = 0.7
)

// SitemapEntry is one sitemap URL. URL is site-relative and LastMod is a
// YYYY-MM-DD date or empty.
type SitemapEntry struct {
	URL      string  `json:"url"`
	Priority float64 `json:"priority"`
	LastMod  string  `json:"lastmod,omitempty"`
}

// StaticPages are listed ahead of content in every sitemap
var StaticPages = []SitemapEntry{
	{URL: "", Priority: PriorityHome},
	{URL: "/components", Priority: PrioritySection},
	{URL: "/docs", Priority: PrioritySection},
	{URL: "/blog", Priority: PriorityListing},
	{URL: "/tutorials", Priority: PriorityListing},
}

// GenerateSitemap lists the static pages followed by one entry per record
// at /<kind>/<slug>
func GenerateSitemap(records []types.ContentRecord) []SitemapEntry {
	entries := make([]SitemapEntry, 0, len(StaticPages)+len(records))
	entries = append(entries, StaticPages...)
	for _, rec := range records {
		entry := SitemapEntry{
			URL:      "/" + string(rec.Kind) + "/" + rec.Slug,
			Priority: PriorityPost,
		}
		if !rec.PublishedAt.IsZero() {
			entry.LastMod = rec.PublishedAt.UTC().Format("2006-01-02")
		}
		entries = append(entries, entry)
	}
	return entries
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
	Priority string `xml:"priority"`
}

// SitemapXML renders entries as a sitemaps.org urlset with absolute URLs
func (s Site) SitemapXML(entries []SitemapEntry) ([]byte, error) {
	set := urlset{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]xmlURL, len(entries)),
	}
	for i, e := range entries {
		set.URLs[i] = xmlURL{
			Loc:      s.Absolute(e.URL),
			LastMod:  e.LastMod,
			Priority: strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
