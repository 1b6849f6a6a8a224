package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Frontmatter holds the YAML header of a markdown post
type Frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Tags        []string `yaml:"tags"`
	Author      string   `yaml:"author"`
	Image       string   `yaml:"image"`
}

// dateLayouts are tried in order when parsing Frontmatter.Date
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

// ParsedDate interprets Date. The zero time means no usable date.
func (f *Frontmatter) ParsedDate() time.Time {
	raw := strings.TrimSpace(f.Date)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// splitFrontmatter separates a leading "---" delimited YAML block from the
// body. A file without a closed block is all body.
func splitFrontmatter(src []byte) (header []byte, body string, ok bool) {
	text := strings.TrimPrefix(string(src), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != frontmatterDelimiter {
		return nil, text, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == frontmatterDelimiter {
			header = []byte(strings.Join(lines[1:i], "\n"))
			body = strings.Join(lines[i+1:], "\n")
			return header, body, true
		}
	}

	return nil, text, false
}

// parseFrontmatter decodes the header of src and returns it with the body
func parseFrontmatter(src []byte) (Frontmatter, string, error) {
	var fm Frontmatter

	header, body, ok := splitFrontmatter(src)
	if !ok || len(bytes.TrimSpace(header)) == 0 {
		return fm, body, nil
	}

	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}

	return fm, body, nil
}
