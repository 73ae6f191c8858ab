package util

import (
	"net/url"
	"strings"
)

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// percentFallback maps the percent-encoded sequences that actually occur in
// roster feeds. Used when full decoding fails on a malformed name.
var percentFallback = strings.NewReplacer(
	"%C3%A1", "á", "%C3%A9", "é", "%C3%AD", "í", "%C3%B3", "ó", "%C3%BA", "ú",
	"%C3%81", "Á", "%C3%89", "É", "%C3%8D", "Í", "%C3%93", "Ó", "%C3%9A", "Ú",
	"%C3%B1", "ñ", "%C3%91", "Ñ", "%C3%BC", "ü", "%C3%9C", "Ü",
	"%21", "!", "%28", "(", "%29", ")", "%2A", "*", "%2C", ",",
	"%2E", ".", "%27", "'", "%7E", "~", "%60", "`", "%20", " ",
)

// DecodeFeedName decodes a percent-encoded display name from the roster feeds.
// Feeds encode spaces as '+'. When strict decoding fails the common sequences
// are replaced manually so a single stray '%' never loses the whole row.
func DecodeFeedName(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err == nil {
		return decoded
	}
	return percentFallback.Replace(strings.ReplaceAll(s, "+", " "))
}
