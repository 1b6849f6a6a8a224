package content

import (
	"regexp"
	"strings"
)

// Heading is one entry of a table of contents
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	nonSlugChars   = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// TableOfContents extracts ATX headings from a markdown body in document
// order. Lines inside fenced code blocks are skipped.
func TableOfContents(body string) []Heading {
	headings := make([]Heading, 0)
	inFence := false
	fence := ""

	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case !inFence:
				inFence, fence = true, marker
			case strings.HasPrefix(trimmed, fence):
				inFence, fence = false, ""
			}
			continue
		}
		if inFence {
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		headings = append(headings, Heading{
			Level: len(m[1]),
			Text:  text,
			ID:    HeadingID(text),
		})
	}

	return headings
}

// HeadingID derives an anchor from heading text: lowercase, punctuation
// dropped, whitespace runs collapsed to hyphens.
func HeadingID(text string) string {
	id := strings.ToLower(text)
	id = nonSlugChars.ReplaceAllString(id, "")
	id = whitespaceRuns.ReplaceAllString(id, "-")
	return strings.TrimSpace(id)
}

func fenceMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "```"):
		return "```"
	case strings.HasPrefix(line, "~~~"):
		return "~~~"
	default:
		return ""
	}
}
