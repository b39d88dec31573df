package content

import (
	"html"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultExcerptLength = 160
	ExcerptEllipsis      = "..."

	cjkCharsPerMinute   = 450.0
	latinWordsPerMinute = 225.0
)

var (
	stripTagsPolicy  = bluemonday.StripTagsPolicy()
	latinWordPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)
)

// PlainText removes markup from an HTML body and decodes entities.
func PlainText(body string) string {
	if body == "" {
		return ""
	}
	return html.UnescapeString(stripTagsPolicy.Sanitize(body))
}

// EstimateReadTime returns the reading time in whole minutes, never less than one.
// Kana and kanji are counted per character, everything else per alphanumeric word.
func EstimateReadTime(body string) int {
	text := PlainText(body)

	cjkChars := 0
	for _, r := range text {
		if isCJK(r) {
			cjkChars++
		}
	}
	latinWords := len(latinWordPattern.FindAllStringIndex(text, -1))

	minutes := float64(cjkChars)/cjkCharsPerMinute + float64(latinWords)/latinWordsPerMinute
	return max(1, int(math.Ceil(minutes)))
}

// BuildExcerpt flattens an HTML body to a single line of at most maxLength
// characters, followed by an ellipsis when it had to be cut.
func BuildExcerpt(body string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	text := strings.Join(strings.Fields(PlainText(body)), " ")
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	truncated := []rune(text)[:maxLength]
	if cut := lastSpace(truncated); cut >= 0 && float64(cut) >= float64(maxLength)*0.8 {
		truncated = truncated[:cut]
	}

	return string(truncated) + ExcerptEllipsis
}

// CountCharacters returns the number of characters of the body once markup is removed.
func CountCharacters(body string) int {
	return utf8.RuneCountInString(PlainText(body))
}

func isCJK(r rune) bool {
	return (r >= 0x3040 && r <= 0x309F) || // hiragana
		(r >= 0x30A0 && r <= 0x30FF) || // katakana
		(r >= 0x4E00 && r <= 0x9FAF) // CJK unified ideographs
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
