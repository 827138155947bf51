// Package redact masks stream keys and other credentials carried by
// RTMP-family URLs so they can be logged or displayed safely.
package redact

import (
	"net/url"
	"strings"
)

// Fallback is returned for RTMP input that cannot be parsed.
const Fallback = "rtmp://...[REDACTED]"

const mask = "****"

// RTMPURL returns a copy of raw that is safe to disclose. User-info, the
// query and the final path segment (the stream key) are masked; host, port
// and intermediate path segments are kept. Input that is not an RTMP-family
// URL is returned unchanged, and input that cannot be parsed yields Fallback.
//
// RTMPURL never fails and is safe for concurrent use.
func RTMPURL(raw string) (sanitized string) {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	defer func() {
		if r := recover(); r != nil {
			sanitized = Fallback
		}
	}()

	u, err := url.Parse(raw)
	if err != nil {
		return Fallback
	}
	if u.Scheme == "" || !strings.HasPrefix(u.Scheme, "rtmp") {
		return raw
	}

	var sb strings.Builder
	// url.Parse lower-cases the scheme; the original casing is the raw prefix.
	sb.WriteString(raw[:len(u.Scheme)])
	sb.WriteString("://")

	if u.User != nil {
		sb.WriteString(mask + "@")
	}

	if host := u.Hostname(); host != "" {
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		sb.WriteString(host)
	}

	if port := u.Port(); port != "" {
		sb.WriteString(":")
		sb.WriteString(port)
	}

	sb.WriteString(redactPath(u.Path))

	if u.RawQuery != "" || u.ForceQuery {
		sb.WriteString("?" + mask)
	}

	return sb.String()
}

// RTMPURLPtr is RTMPURL for optional values: nil stays nil.
func RTMPURLPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	sanitized := RTMPURL(*raw)
	return &sanitized
}

func redactPath(path string) string {
	if path == "" {
		return ""
	}

	segments := pathSegments(path)
	if len(segments) < 2 {
		return path
	}

	var sb strings.Builder
	sb.WriteString("/")
	for _, segment := range segments[:len(segments)-1] {
		sb.WriteString(segment)
		sb.WriteString("/")
	}
	sb.WriteString(mask)
	return sb.String()
}

// pathSegments splits path on "/" and drops empty segments.
func pathSegments(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
