package webauth

import (
	"net/url"
	"strings"
)

// CallbackValues is the flat mapping decoded from a redirect URI.
type CallbackValues map[string]string

// ParseCallback reads the query component of u, or its fragment when the
// query is empty. Entries that are not exactly key=value are dropped and a
// repeated key keeps its last value.
func ParseCallback(u *url.URL) CallbackValues {
	if u == nil {
		return CallbackValues{}
	}
	source := u.RawQuery
	if source == "" {
		source = u.EscapedFragment()
	}
	return parseValues(source)
}

// ParseCallbackString parses a raw redirect URI.
func ParseCallbackString(raw string) CallbackValues {
	return ParseCallback(RedirectURL(raw))
}

// RedirectURL parses raw. When raw is not a valid URI, for example because of
// a bad percent escape in the fragment, the returned URL carries only the
// component ParseCallback would read, with its escapes left as they were.
func RedirectURL(raw string) *url.URL {
	if u, err := url.Parse(raw); err == nil {
		return u
	}
	rest, fragment, _ := strings.Cut(raw, "#")
	_, query, _ := strings.Cut(rest, "?")
	if query == "" {
		query = fragment
	}
	return &url.URL{RawQuery: query}
}

func parseValues(source string) CallbackValues {
	values := CallbackValues{}
	if source == "" {
		return values
	}
	for _, entry := range strings.Split(source, "&") {
		parts := strings.Split(entry, "=")
		if len(parts) != 2 {
			continue
		}
		values[unescape(parts[0])] = unescape(parts[1])
	}
	return values
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}

// Has reports whether key is present.
func (v CallbackValues) Has(key string) bool {
	_, ok := v[key]
	return ok
}
