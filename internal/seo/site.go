package seo

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Site describes the site the metadata is generated for
type Site struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	OGImage     string `yaml:"og_image"`
	Twitter     string `yaml:"twitter"` // Handle including the @
	Creator     string `yaml:"creator"`
	CreatorURL  string `yaml:"creator_url"`
	Locale      string `yaml:"locale"`
}

// DefaultSite returns the built-in site configuration
func DefaultSite() Site {
	return Site{
		Name:        "ShopifyUI",
		Description: "A comprehensive UI component library and design system for Shopify applications",
		URL:         "https://shopifyui.dev",
		OGImage:     "https://shopifyui.dev/og.jpg",
		Twitter:     "@shopifyui",
		Creator:     "ShopifyUI Team",
		CreatorURL:  "https://shopifyui.dev",
		Locale:      "en_US",
	}
}

// LoadSite reads a YAML site file. Fields it leaves out keep their
// DefaultSite values.
func LoadSite(path string) (Site, error) {
	site := DefaultSite()

	data, err := os.ReadFile(path)
	if err != nil {
		return site, fmt.Errorf("read site config: %w", err)
	}
	if err := yaml.Unmarshal(data, &site); err != nil {
		return site, fmt.Errorf("parse site config %s: %w", path, err)
	}

	site.URL = strings.TrimRight(site.URL, "/")
	if site.URL == "" {
		return site, fmt.Errorf("site config %s: url is required", path)
	}
	return site, nil
}

// Absolute prefixes path with the site URL
func (s Site) Absolute(path string) string {
	if path == "" {
		return s.URL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.URL + path
}
