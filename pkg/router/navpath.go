package router

import (
	"errors"
	"strings"
)

// Navigation path errors.
var (
	ErrAbsoluteURL          = errors.New("router: navigation path must be relative")
	ErrBackslashInPath      = errors.New("router: path contains backslash")
	ErrNullByteInPath       = errors.New("router: path contains null byte")
	ErrInvalidPercentEscape = errors.New("router: invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("router: path escapes root via ..")
)

// ValidateNavPath checks a navigation target received from a client. It
// must be a rooted path, optionally with a query; full URLs and
// protocol-relative URLs are rejected. Dot segments are resolved and
// repeated slashes collapsed. A trailing slash is preserved because route
// templates may require it.
func ValidateNavPath(input string) (string, error) {
	if strings.HasPrefix(input, "//") || strings.Contains(input, "://") {
		return "", ErrAbsoluteURL
	}
	if !strings.HasPrefix(input, "/") {
		return "", ErrAbsoluteURL
	}

	path, query, hasQuery := strings.Cut(input, "?")

	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", err
		}
	}

	trailing := len(path) > 1 && strings.HasSuffix(path, "/")

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return "", ErrPathEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	clean := "/" + strings.Join(segments, "/")
	if trailing && clean != "/" {
		clean += "/"
	}
	if hasQuery && query != "" {
		clean += "?" + query
	}
	return clean, nil
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
