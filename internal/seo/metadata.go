package seo

import (
	"time"
)

// Open Graph image size advertised for every page
const (
	OGImageWidth  = 1200
	OGImageHeight = 630
)

// Page is the input to GenerateMetadata. Empty fields fall back to the
// site defaults.
type Page struct {
	Title         string
	Description   string
	Image         string
	Path          string // Site-relative, e.g. /blog/hello
	Type          string // default: website
	PublishedTime time.Time
	ModifiedTime  time.Time
	Authors       []string
	Tags          []string
}

// Metadata is the head metadata of a page
type Metadata struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	OpenGraph   OpenGraph   `json:"openGraph"`
	Twitter     TwitterCard `json:"twitter"`
	Robots      Robots      `json:"robots"`
	Canonical   string      `json:"canonical"`
}

// OpenGraph holds og:* properties
type OpenGraph struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	SiteName      string    `json:"siteName"`
	Images        []OGImage `json:"images"`
	Locale        string    `json:"locale"`
	Type          string    `json:"type"`
	PublishedTime string    `json:"publishedTime,omitempty"`
	ModifiedTime  string    `json:"modifiedTime,omitempty"`
	Authors       []string  `json:"authors,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
}

// OGImage is one og:image entry
type OGImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

// TwitterCard holds twitter:* properties
type TwitterCard struct {
	Card        string   `json:"card"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Creator     string   `json:"creator"`
}

// Robots holds crawler directives
type Robots struct {
	Index     bool      `json:"index"`
	Follow    bool      `json:"follow"`
	GoogleBot GoogleBot `json:"googleBot"`
}

// GoogleBot holds googlebot-specific directives; -1 means no limit
type GoogleBot struct {
	Index           bool   `json:"index"`
	Follow          bool   `json:"follow"`
	MaxVideoPreview int    `json:"max-video-preview"`
	MaxImagePreview string `json:"max-image-preview"`
	MaxSnippet      int    `json:"max-snippet"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// GenerateMetadata builds the head metadata of page
func (s Site) GenerateMetadata(page Page) Metadata {
	title := s.Name
	if page.Title != "" {
		title = page.Title + " | " + s.Name
	}
	description := page.Description
	if description == "" {
		description = s.Description
	}
	image := page.Image
	if image == "" {
		image = s.OGImage
	}
	url := s.URL
	if page.Path != "" {
		url = s.Absolute(page.Path)
	}
	pageType := page.Type
	if pageType == "" {
		pageType = "website"
	}

	return Metadata{
		Title:       title,
		Description: description,
		OpenGraph: OpenGraph{
			Title:       title,
			Description: description,
			URL:         url,
			SiteName:    s.Name,
			Images: []OGImage{{
				URL:    image,
				Width:  OGImageWidth,
				Height: OGImageHeight,
				Alt:    title,
			}},
			Locale:        s.Locale,
			Type:          pageType,
			PublishedTime: formatTime(page.PublishedTime),
			ModifiedTime:  formatTime(page.ModifiedTime),
			Authors:       page.Authors,
			Tags:          page.Tags,
		},
		Twitter: TwitterCard{
			Card:        "summary_large_image",
			Title:       title,
			Description: description,
			Images:      []string{image},
			Creator:     s.Twitter,
		},
		Robots: Robots{
			Index:  true,
			Follow: true,
			GoogleBot: GoogleBot{
				Index:           true,
				Follow:          true,
				MaxVideoPreview: -1,
				MaxImagePreview: "large",
				MaxSnippet:      -1,
			},
		},
		Canonical: url,
	}
}
