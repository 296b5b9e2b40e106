package ssr

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/internal/pages"
	"github.com/vango-dev/storefront/pkg/router"
)

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{.Head}}
</head>
<body>
<div id="root">{{.HTML}}</div>
<script>window.__INITIAL_DATA__ = {{.Data}};</script>
{{- if .Script}}
<script src="{{.Script}}" data-live="{{.Live}}" defer></script>
{{- end}}
</body>
</html>
`))

type shellData struct {
	Head   template.HTML
	HTML   template.HTML
	Data   template.JS
	Script string
	Live   string
}

// HandlerConfig configures Handler.
type HandlerConfig struct {
	// Script is the URL of the live client script. No script tag is
	// written when empty.
	Script string

	// Live is the URL of the live session endpoint, handed to the script.
	Live string

	Logger *slog.Logger
}

// Handler serves server-rendered pages for every GET request.
func Handler(r *Renderer, cfg HandlerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = r.logger
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		query := router.ParseQuery(req.URL.RawQuery)
		res, err := r.Render(req.Context(), req.URL.RequestURI(), query)
		if err != nil {
			logger.Error("ssr: render failed", "url", req.URL.String(), "error", err)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			if e, ok := err.(*errors.Error); ok {
				_, _ = w.Write([]byte(e.FormatCompact()))
				return
			}
			_, _ = w.Write([]byte(http.StatusText(http.StatusInternalServerError)))
			return
		}

		var buf bytes.Buffer
		err = shell.Execute(&buf, shellData{
			Head:   template.HTML(res.Head),
			HTML:   template.HTML(res.HTML),
			Data:   template.JS(res.Data),
			Script: cfg.Script,
			Live:   cfg.Live,
		})
		if err != nil {
			logger.Error("ssr: shell failed", "url", req.URL.String(), "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		status := http.StatusOK
		if res.Route == pages.NotFoundPath || res.Route == "" {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
		_, _ = buf.WriteTo(w)
	})
}
