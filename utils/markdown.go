package utils

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md        = goldmark.New(goldmark.WithExtensions(extension.GFM))
	ugcPolicy = bluemonday.UGCPolicy()
	stripAll  = bluemonday.StrictPolicy()
)

// RenderMarkdown converts user markdown to sanitized HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

// Excerpt returns the first max runes of the text content of html.
func Excerpt(html string, max int) string {
	text := strings.Join(strings.Fields(stripAll.Sanitize(html)), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:max])) + "…"
}
