// Package textstats computes display and length metrics for portfolio
// content such as blog posts and LinkedIn drafts.
package textstats

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// LinkedInPostLimit is the maximum length of a LinkedIn post in characters
const LinkedInPostLimit = 3000

// WordsPerMinute is the reading speed used for reading time estimates
const WordsPerMinute = 200

var hashtagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_]+)`)

// Stats holds the metrics of a text
type Stats struct {
	Words       int           `json:"words"`
	Characters  int           `json:"characters"` // User-perceived characters (grapheme clusters)
	Lines       int           `json:"lines"`
	Paragraphs  int           `json:"paragraphs"`
	Hashtags    []string      `json:"hashtags"`
	ReadingTime time.Duration `json:"reading_time"`
}

// OverLimit reports whether the text exceeds limit characters
func (s Stats) OverLimit(limit int) bool {
	return s.Characters > limit
}

// Remaining returns how many characters are left under limit; negative when over
func (s Stats) Remaining(limit int) int {
	return limit - s.Characters
}

// Analyze computes Stats for text
func Analyze(text string) Stats {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	s := Stats{
		Words:      len(strings.FieldsFunc(text, unicode.IsSpace)),
		Characters: uniseg.GraphemeClusterCount(text),
		Hashtags:   Hashtags(text),
	}

	if strings.TrimSpace(text) != "" {
		s.Lines = strings.Count(strings.TrimRight(text, "\n"), "\n") + 1
	}

	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			s.Paragraphs++
		}
	}

	s.ReadingTime = ReadingTime(s.Words)
	return s
}

// ReadingTime estimates reading time for words, rounded up to whole minutes
func ReadingTime(words int) time.Duration {
	if words <= 0 {
		return 0
	}
	minutes := math.Ceil(float64(words) / WordsPerMinute)
	return time.Duration(minutes) * time.Minute
}

// Hashtags returns the distinct hashtags in text, in order of appearance,
// without the leading '#'.
func Hashtags(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range hashtagRe.FindAllStringSubmatch(text, -1) {
		tag := m[1]
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

// Width returns the terminal display width of s
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most maxWidth display columns, appending "..."
// when it cuts. Wide characters are never split.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// FirstLine returns the first non-blank line of s, truncated to maxWidth
func FirstLine(s string, maxWidth int) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return Truncate(line, maxWidth)
		}
	}
	return ""
}
