package seo

import (
	"time"
)

// Breadcrumb is one step of a breadcrumb trail
type Breadcrumb struct {
	Name string
	URL  string
}

// Entity is the input to GenerateStructuredData
type Entity struct {
	Type          string // schema.org type, default WebSite
	Name          string
	Description   string
	URL           string
	Author        string
	DatePublished time.Time
	DateModified  time.Time
	Image         string
	Breadcrumbs   []Breadcrumb
}

// StructuredData is a schema.org JSON-LD document
type StructuredData struct {
	Context       string          `json:"@context"`
	Type          string          `json:"@type"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	URL           string          `json:"url"`
	Author        Organization    `json:"author"`
	DatePublished string          `json:"datePublished,omitempty"`
	DateModified  string          `json:"dateModified,omitempty"`
	Image         string          `json:"image,omitempty"`
	Breadcrumb    *BreadcrumbList `json:"breadcrumb,omitempty"`
}

// Organization is a schema.org Organization
type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BreadcrumbList is a schema.org BreadcrumbList
type BreadcrumbList struct {
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// ListItem is one BreadcrumbList entry; Position starts at 1
type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

// GenerateStructuredData builds JSON-LD for e
func (s Site) GenerateStructuredData(e Entity) StructuredData {
	data := StructuredData{
		Context:       "https://schema.org",
		Type:          orDefault(e.Type, "WebSite"),
		Name:          orDefault(e.Name, s.Name),
		Description:   orDefault(e.Description, s.Description),
		URL:           orDefault(e.URL, s.URL),
		DatePublished: formatTime(e.DatePublished),
		DateModified:  formatTime(e.DateModified),
		Image:         e.Image,
		Author: Organization{
			Type: "Organization",
			Name: orDefault(e.Author, s.Creator),
			URL:  s.CreatorURL,
		},
	}

	if len(e.Breadcrumbs) > 0 {
		list := &BreadcrumbList{
			Type:            "BreadcrumbList",
			ItemListElement: make([]ListItem, len(e.Breadcrumbs)),
		}
		for i, crumb := range e.Breadcrumbs {
			list.ItemListElement[i] = ListItem{
				Type:     "ListItem",
				Position: i + 1,
				Name:     crumb.Name,
				Item:     crumb.URL,
			}
		}
		data.Breadcrumb = list
	}

	return data
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
