package server

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// staticHandler serves files of dir below prefix. Directory listings and
// paths that could leave dir are answered with 404.
func staticHandler(dir, prefix string) http.Handler {
	files := os.DirFS(dir)
	prefix = strings.TrimSuffix(prefix, "/") + "/"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		rel, ok := staticRelPath(strings.TrimPrefix(r.URL.Path, prefix))
		if !ok || !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}

		f, err := files.Open(rel)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		content, ok := f.(io.ReadSeeker)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if isFingerprinted(rel) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
		http.ServeContent(w, r, rel, info.ModTime(), content)
	})
}

// staticRelPath validates a request path relative to the static root.
func staticRelPath(rel string) (string, bool) {
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", false
	}
	if strings.IndexByte(rel, 0) >= 0 || strings.Contains(rel, "\\") {
		return "", false
	}
	// Checked before cleaning so that traversal is refused, not rewritten.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	return clean, true
}

// isFingerprinted reports whether the file name carries a content hash,
// as in "app.a1b2c3d4.css".
func isFingerprinted(name string) bool {
	parts := strings.Split(path.Base(name), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
