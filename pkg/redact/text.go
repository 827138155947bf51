package redact

import (
	"regexp"
	"strings"
)

// A single quote is legal inside user-info and path segments, so it only
// ends a URL that was opened by one.
var rtmpURLPattern = regexp.MustCompile("(?i)\\brtmp[a-z0-9+.\\-]*://[^\\s\\p{Z}\"<>`]+")

// trailingPunctuation is stripped from a matched URL before sanitizing so
// that "see rtmp://host/app/key." keeps its full stop outside the URL.
const trailingPunctuation = ".,;:!?)"

// Text replaces every RTMP-family URL found in s with its RTMPURL rendering.
// Text without such URLs is returned unchanged.
func Text(s string) string {
	matches := rtmpURLPattern.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		token := s[start:end]
		if start > 0 && s[start-1] == '\'' {
			if i := strings.IndexByte(token, '\''); i >= 0 {
				token = token[:i]
			}
		}
		token = trimURLToken(token)

		sb.WriteString(s[last:start])
		sb.WriteString(RTMPURL(token))
		last = start + len(token)
	}
	sb.WriteString(s[last:])
	return sb.String()
}

func trimURLToken(token string) string {
	token = strings.TrimRight(token, trailingPunctuation)
	// A closing bracket belongs to the URL only when it ends an IPv6 literal.
	if strings.HasSuffix(token, "]") && !strings.Contains(token, "[") {
		token = strings.TrimRight(token[:len(token)-1], trailingPunctuation)
	}
	return token
}

// ContainsRTMPURL reports whether s contains an RTMP-family URL.
func ContainsRTMPURL(s string) bool {
	return rtmpURLPattern.MatchString(s)
}
