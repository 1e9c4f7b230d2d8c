// Package location models the shareable link: its URL format and the mutable
// resource that holds the current link.
package location

import (
	"net/url"
	"strings"

	"github.com/five82/sharemd/internal/codec"
)

// Query parameter names carried by a share link.
const (
	ParamMode    = "mode"
	ParamContent = "content"
)

// Link is a parsed share link. Content is kept exactly as it appeared in the
// URL so legacy tokens reach the codec unmodified.
type Link struct {
	Base    string
	Mode    string
	Content codec.Token
}

// Parse splits raw into its base and the mode/content parameters. Parameters
// may sit in the query string or the fragment; the query wins when both carry
// the same key. Parse never fails: unknown or unparsable parts are ignored.
func Parse(raw string) Link {
	raw = strings.TrimSpace(raw)

	rest, fragment, _ := strings.Cut(raw, "#")
	base, query, _ := strings.Cut(rest, "?")

	link := Link{Base: base}
	for _, part := range []string{fragment, query} {
		params := splitParams(part)
		if v, ok := params[ParamMode]; ok {
			link.Mode = v
		}
		if v, ok := params[ParamContent]; ok {
			link.Content = codec.Token(v)
		}
	}
	return link
}

// splitParams returns the mode (unescaped) and content (raw) values of a
// query-style string. The first occurrence of a key wins.
func splitParams(s string) map[string]string {
	params := make(map[string]string, 2)
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if _, seen := params[key]; seen {
			continue
		}
		switch key {
		case ParamMode:
			if v, err := url.QueryUnescape(value); err == nil {
				value = v
			}
			params[key] = value
		case ParamContent:
			params[key] = value
		}
	}
	return params
}

// String formats the link with mode before content, matching the layout of
// links shared by earlier releases.
func (l Link) String() string {
	var b strings.Builder
	b.WriteString(l.Base)
	b.WriteString("?")
	b.WriteString(ParamMode)
	b.WriteString("=")
	b.WriteString(url.QueryEscape(l.Mode))
	b.WriteString("&")
	b.WriteString(ParamContent)
	b.WriteString("=")
	b.WriteString(string(l.Content))
	return b.String()
}

// IsZero reports whether the link carries neither mode nor content.
func (l Link) IsZero() bool {
	return l.Mode == "" && l.Content == ""
}
