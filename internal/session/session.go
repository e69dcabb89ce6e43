package session

import (
	"net/url"
	"sort"
	"strings"
)

// TokenCookie is the cookie carrying the upstream-issued bearer token.
const TokenCookie = "token"

// Session is the per-request authentication state. It is extracted once from
// the inbound Cookie header and passed down the pipeline; nothing in it is
// ever stored beyond the request.
type Session struct {
	Token   string
	cookies map[string]string
}

// Parse builds a Session from a raw Cookie header. Pairs are split on ";",
// each pair on the first "=", and values are URL-decoded. Malformed pairs
// are skipped rather than failing the whole header.
func Parse(header string) *Session {
	cookies := make(map[string]string)

	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			continue
		}

		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}

	return &Session{
		Token:   cookies[TokenCookie],
		cookies: cookies,
	}
}

// Authenticated reports whether a non-empty token cookie was present.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// CookieNames returns the names of the cookies that were present, sorted.
// Used for diagnostics on authentication failures; values are never exposed.
func (s *Session) CookieNames() []string {
	if s == nil {
		return nil
	}

	names := make([]string, 0, len(s.cookies))
	for name := range s.cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
