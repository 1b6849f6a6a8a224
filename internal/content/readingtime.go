package content

import (
	"fmt"
	"strings"
	"unicode"
)

// WordsPerMinute is the reading speed used for estimates
const WordsPerMinute = 200

// ReadingTime is an estimate of how long a body takes to read
type ReadingTime struct {
	Words   int
	Minutes int
	Text    string // e.g. "3 min read"
}

// EstimateReadingTime counts whitespace-separated words and rounds the
// minutes up, with one minute as the floor for any non-empty text.
func EstimateReadingTime(text string) ReadingTime {
	words := len(strings.FieldsFunc(text, unicode.IsSpace))

	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if words > 0 && minutes < 1 {
		minutes = 1
	}

	return ReadingTime{
		Words:   words,
		Minutes: minutes,
		Text:    fmt.Sprintf("%d min read", minutes),
	}
}
