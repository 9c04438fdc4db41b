package common

import "unicode/utf8"

// DefaultRawBodyLimit is the number of characters of a response body kept on
// errors and in logs.
const DefaultRawBodyLimit = 1024

// IsSuccessStatus reports whether code is in the 2xx range.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}

// TruncateRaw trims raw to at most limit runes. A non-positive limit yields "".
func TruncateRaw(raw string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(raw) <= limit {
		return raw
	}
	return string([]rune(raw)[:limit])
}
