package router

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned when a URL cannot be parsed for matching.
var ErrInvalidURL = errors.New("router: invalid url")

// paramPattern matches ":name" placeholders in a route template.
var paramPattern = regexp.MustCompile(`:\w+`)

// Route is a compiled route template. Params is populated only on the route
// returned by a successful match.
type Route[H any] struct {
	// Path is the template the route was registered with (e.g. "/product/:id/").
	Path string

	// Regex is the anchored pattern, including the base path.
	Regex *regexp.Regexp

	// ParamNames lists the placeholders in template order.
	ParamNames []string

	Handler H

	// Params maps each placeholder to the matched, unescaped segment.
	Params map[string]string
}

// compileRoute turns a template into an anchored regular expression.
// It panics when the template is not a valid pattern, like
// regexp.MustCompile, because templates are fixed at program start.
func compileRoute[H any](base, path string, handler H) *Route[H] {
	var names []string
	pattern := paramPattern.ReplaceAllStringFunc(path, func(m string) string {
		names = append(names, m[1:])
		return "([^/]+)"
	})

	re, err := regexp.Compile("^" + regexp.QuoteMeta(base) + pattern + "$")
	if err != nil {
		panic(fmt.Sprintf("router: invalid route template %q: %v", path, err))
	}

	return &Route[H]{
		Path:       path,
		Regex:      re,
		ParamNames: names,
		Handler:    handler,
	}
}

// table is the ordered set of compiled routes shared by both routers.
// It is not safe for concurrent use; the routers guard it.
type table[H any] struct {
	base   string
	order  []string
	routes map[string]*Route[H]
}

func newTable[H any](base string) table[H] {
	return table[H]{
		base:   trimBase(base),
		routes: make(map[string]*Route[H]),
	}
}

// trimBase removes a single trailing slash so "/app/" and "/app" behave alike.
func trimBase(base string) string {
	return strings.TrimSuffix(base, "/")
}

func (t *table[H]) add(path string, handler H) {
	if _, ok := t.routes[path]; !ok {
		t.order = append(t.order, path)
	}
	t.routes[path] = compileRoute(t.base, path, handler)
}

func (t *table[H]) len() int {
	return len(t.order)
}

// match resolves rawURL against the routes in registration order. It
// returns nil without error when no route matches.
func (t *table[H]) match(rawURL string) (*Route[H], error) {
	if rawURL == "" {
		rawURL = "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}

	pathname := u.EscapedPath()
	if pathname == "" {
		pathname = "/"
	}

	for _, path := range t.order {
		route := t.routes[path]
		m := route.Regex.FindStringSubmatch(pathname)
		if m == nil {
			continue
		}

		params := make(map[string]string, len(route.ParamNames))
		for i, name := range route.ParamNames {
			params[name] = decodeSegment(m[i+1])
		}

		matched := *route
		matched.Params = params
		return &matched, nil
	}
	return nil, nil
}

// decodeSegment unescapes a captured segment, keeping the raw text when it
// is not a valid escape sequence.
func decodeSegment(segment string) string {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return decoded
}

// pathOf extracts the escaped path of rawURL, defaulting to "/".
func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.EscapedPath() == "" {
		return "/"
	}
	return u.EscapedPath()
}
