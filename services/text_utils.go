package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	htmlTagRegex      = regexp.MustCompile(`<[^>]*>`)
	jsonFenceOpen     = regexp.MustCompile("^```json\\s*")
	plainFenceOpen    = regexp.MustCompile("^```\\s*")
	fenceCloseRegex   = regexp.MustCompile("\\s*```$")
	nonPrintableRegex = regexp.MustCompile(`[^\x20-\x7E\p{L}\p{N}\p{P}\p{S}\p{M}\s]`)
)

// NormalizeTextContent collapses whitespace runs into single spaces
func NormalizeTextContent(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// CleanScrapedText strips leftover tags and control characters from page text.
// Devanagari combining marks are kept.
func CleanScrapedText(text string) string {
	if text == "" {
		return ""
	}
	text = htmlTagRegex.ReplaceAllString(text, " ")
	text = nonPrintableRegex.ReplaceAllString(text, "")
	return NormalizeTextContent(text)
}

// TruncateRunes cuts s to at most n characters without splitting a code point
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// StripCodeFences removes one markdown fence around a model reply
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = jsonFenceOpen.ReplaceAllString(text, "")
	text = plainFenceOpen.ReplaceAllString(text, "")
	text = fenceCloseRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
