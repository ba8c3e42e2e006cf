package filter

import "strings"

// Caption label scanning. Evidence captions are free text such as
// "Response code: 200 [gowitness]" or "Page title: Login". A label is matched
// case-insensitively; the words of a multi-word label may be separated by spaces
// or underscores, and the label is followed by optional spaces and ':' or '='.
// Only the first label occurrence in the caption is used.

// Labels recognized per derived evidence field.
var (
	responseCodeLabels = [][]string{{"response", "code"}}
	serverLabels       = [][]string{{"server"}}
	titleLabels        = [][]string{{"page", "title"}, {"title"}}
)

// labelValue returns the text following the first label occurrence, up to the end
// of its line, trimmed. found reports whether any label occurred.
func labelValue(caption string, labels [][]string) (value string, found bool) {
	start, ok := findLabel(caption, labels)
	if !ok {
		return "", false
	}
	rest := caption[start:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest), true
}

// labelDigits returns the run of digits following the first label occurrence.
// The label occurrence is used even when no digits follow it.
func labelDigits(caption string, labels [][]string) (int64, bool) {
	start, ok := findLabel(caption, labels)
	if !ok {
		return 0, false
	}
	i := skipSpaces(caption, start)
	j := i
	for j < len(caption) && caption[j] >= '0' && caption[j] <= '9' {
		j++
	}
	return parseDigits(caption[i:j])
}

// findLabel scans left to right and returns the offset just past the separator
// of the earliest label occurrence.
func findLabel(caption string, labels [][]string) (int, bool) {
	for pos := 0; pos < len(caption); pos++ {
		for _, words := range labels {
			if end, ok := matchLabelAt(caption, pos, words); ok {
				return end, true
			}
		}
	}
	return 0, false
}

// matchLabelAt matches words at pos followed by optional spaces and ':' or '='.
func matchLabelAt(s string, pos int, words []string) (int, bool) {
	i := pos
	for n, w := range words {
		if n > 0 {
			j := i
			for j < len(s) && (s[j] == ' ' || s[j] == '_' || s[j] == '\t') {
				j++
			}
			if j == i {
				return 0, false
			}
			i = j
		}
		if !hasFoldPrefix(s[i:], w) {
			return 0, false
		}
		i += len(w)
	}
	i = skipSpaces(s, i)
	if i < len(s) && (s[i] == ':' || s[i] == '=') {
		return i + 1, true
	}
	return 0, false
}

// hasFoldPrefix is an ASCII case-insensitive strings.HasPrefix. Labels are ASCII,
// so byte offsets into s stay valid.
func hasFoldPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != prefix[i] {
			return false
		}
	}
	return true
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
