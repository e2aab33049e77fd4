package mefoundation

import (
	"strings"
	"sync"
	"unicode"
)

// Session is the cookie map of one Client. Keys keep their first-seen order so
// the Cookie header is stable across requests.
type Session struct {
	mu      sync.RWMutex
	cookies map[string]string
	order   []string
}

func NewSession() *Session {
	return &Session{cookies: make(map[string]string)}
}

// Merge applies a Set-Cookie header value. Malformed entries are skipped.
func (s *Session) Merge(setCookie string) {
	pairs := parseSetCookie(setCookie)
	if len(pairs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pairs {
		if _, ok := s.cookies[p.key]; !ok {
			s.order = append(s.order, p.key)
		}
		s.cookies[p.key] = p.value
	}
}

// Header renders the Cookie request header, "" when empty.
func (s *Session) Header() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parts := make([]string, 0, len(s.order))
	for _, k := range s.order {
		parts = append(parts, k+"="+s.cookies[k])
	}
	return strings.Join(parts, "; ")
}

func (s *Session) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cookies[key]
	return v, ok
}

func (s *Session) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys lists cookie names; values are credentials and stay out of logs.
func (s *Session) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Snapshot copies the cookie map.
func (s *Session) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		out[k] = v
	}
	return out
}

type cookiePair struct {
	key   string
	value string
}

// parseSetCookie splits a (possibly comma joined) Set-Cookie value into name/value pairs.
// A comma only separates cookies when the text after it starts with a "name=" token,
// so commas inside values such as Expires dates are kept.
func parseSetCookie(header string) []cookiePair {
	var out []cookiePair
	for _, entry := range splitCookieEntries(header) {
		nameValue, _, _ := strings.Cut(entry, ";")
		key, value, ok := strings.Cut(nameValue, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out = append(out, cookiePair{key: key, value: value})
	}
	return out
}

func splitCookieEntries(header string) []string {
	var entries []string
	start := 0
	for i := 0; i < len(header); i++ {
		if header[i] == ',' && startsWithCookieName(header[i+1:]) {
			entries = append(entries, header[start:i])
			start = i + 1
		}
	}
	return append(entries, header[start:])
}

// startsWithCookieName reports whether s looks like `[spaces]name=`.
func startsWithCookieName(s string) bool {
	s = strings.TrimLeft(s, " \t")
	for i, r := range s {
		switch {
		case r == '=':
			return i > 0
		case r == ';' || r == ',' || unicode.IsSpace(r):
			return false
		}
	}
	return false
}
