package domain

import "strings"

// DefaultSearchURL is the search-results base used when none is configured.
const DefaultSearchURL = "https://mobile.twitter.com/search?q="

// Placeholders recognized in a search URL template. When a template has
// none of them the encoded query is appended.
var queryPlaceholders = []string{"{query}", "%s"}

// BuildSearchURL percent-encodes query and interpolates it into template.
//
// Encoding works on the UTF-8 bytes of query and keeps only the
// unreserved set (letters, digits and - _ . ! ~ * ' ( )). Spaces become %20.
// The result is only correct for a single application: feeding an
// already-encoded query back in encodes its '%' signs again.
func BuildSearchURL(template, query string) string {
	encoded := EncodeQuery(query)
	for _, ph := range queryPlaceholders {
		if strings.Contains(template, ph) {
			return strings.Replace(template, ph, encoded, 1)
		}
	}
	return template + encoded
}

// EncodeQuery percent-encodes s for use as a URL query value.
func EncodeQuery(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
