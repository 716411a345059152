package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var whitespaceRegex = regexp.MustCompile(`[ \t\f\v]+`)
var blankLinesRegex = regexp.MustCompile(`\n{3,}`)

// StripHTML renders an HTML fragment as plain text. Script and style
// elements are dropped.
func StripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, tr, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return CollapseWhitespace(doc.Text())
}

func CollapseWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}

func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate cuts text to at most max runes.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:max]), true
}

// ToValidUTF8 makes raw bytes safe for Postgres text columns. A UTF-16 or
// UTF-8 byte order mark selects the decoding, invalid sequences are replaced
// and NUL bytes are dropped.
func ToValidUTF8(data []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if decoded, _, err := transform.Bytes(decoder, data); err == nil {
		data = decoded
	}
	return StripNUL(strings.ToValidUTF8(string(data), "\uFFFD"))
}

// StripNUL removes NUL characters, which Postgres rejects in text values.
func StripNUL(text string) string {
	return strings.ReplaceAll(text, "\x00", "")
}
