package cms

import (
	"strings"
)

// Block is one element of a portable text array. Only the fields needed
// to extract plain text are decoded.
type Block struct {
	Type     string `json:"_type"`
	Key      string `json:"_key,omitempty"`
	Style    string `json:"style,omitempty"`
	Children []Span `json:"children,omitempty"`
	Code     string `json:"code,omitempty"`     // code blocks
	Language string `json:"language,omitempty"` // code blocks
}

// Span is an inline run of text
type Span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// PlainText flattens blocks into text: each text block's spans are joined,
// code blocks contribute their source, and blocks are separated by a blank
// line. Other block types (images, embeds) are skipped.
func PlainText(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case "block":
			var sb strings.Builder
			for _, span := range b.Children {
				sb.WriteString(span.Text)
			}
			if text := strings.TrimSpace(sb.String()); text != "" {
				parts = append(parts, text)
			}
		case "code":
			if code := strings.TrimSpace(b.Code); code != "" {
				parts = append(parts, code)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// Heading is a text block styled h1 to h6
type Heading struct {
	Level int
	Text  string
}

// Headings returns the heading blocks in document order
func Headings(blocks []Block) []Heading {
	headings := make([]Heading, 0)
	for _, b := range blocks {
		if b.Type != "block" || len(b.Style) != 2 || b.Style[0] != 'h' {
			continue
		}
		level := int(b.Style[1] - '0')
		if level < 1 || level > 6 {
			continue
		}
		var sb strings.Builder
		for _, span := range b.Children {
			sb.WriteString(span.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			headings = append(headings, Heading{Level: level, Text: text})
		}
	}
	return headings
}
