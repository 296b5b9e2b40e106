package router

import (
	"net/url"
	"strings"
)

// ParseQuery parses a query string, with or without its leading "?".
// When a key repeats, the last value wins. Malformed pairs are skipped.
func ParseQuery(search string) map[string]string {
	search = strings.TrimPrefix(search, "?")

	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(search)

	query := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			query[key] = vs[len(vs)-1]
		}
	}
	return query
}

// StringifyQuery encodes query without its leading "?". Keys with empty
// values are dropped and the remaining keys are sorted.
func StringifyQuery(query map[string]string) string {
	values := make(url.Values, len(query))
	for key, value := range query {
		if value != "" {
			values.Set(key, value)
		}
	}
	return values.Encode()
}

// MergeQuery returns a copy of current with patch applied. An empty value in
// patch removes the key.
func MergeQuery(current, patch map[string]string) map[string]string {
	merged := make(map[string]string, len(current)+len(patch))
	for key, value := range current {
		if value != "" {
			merged[key] = value
		}
	}
	for key, value := range patch {
		if value == "" {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}
	return merged
}

// BuildURL merges patch into current and joins the result to pathname
// under base. The base is stripped from pathname first so it appears once.
func BuildURL(current, patch map[string]string, pathname, base string) string {
	base = trimBase(base)
	if base != "" {
		pathname = strings.Replace(pathname, base, "", 1)
	}

	u := base + pathname
	if qs := StringifyQuery(MergeQuery(current, patch)); qs != "" {
		u += "?" + qs
	}
	return u
}

// copyQuery returns a shallow copy of q that is never nil.
func copyQuery(q map[string]string) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}
