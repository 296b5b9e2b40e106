package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/config"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/pkg/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithRegistry(prometheus.NewRegistry())}, opts...)
	s, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, config.New())
	h := s.Handler()

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/api/products?limit=2", http.StatusOK, `"pagination"`},
		{"/api/categories", http.StatusOK, "{"},
		{"/api/products/85067212996", http.StatusOK, `"productId":"85067212996"`},
		{"/api/products/nope", http.StatusNotFound, "SF020"},
		{"/", http.StatusOK, "window.__INITIAL_DATA__ = {"},
		{"/product/85067212996/", http.StatusOK, `"product":{`},
		{"/missing/page", http.StatusNotFound, "페이지를 찾을 수 없습니다"},
		{ScriptPath, http.StatusOK, "WebSocket"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("expected %q in body", tt.want)
			}
		})
	}

	// Renders above are counted.
	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	for _, want := range []string{
		`storefront_ssr_renders_total{route="/"} 1`,
		`storefront_store_dispatches_total{changed="true",store="product"}`,
		`storefront_router_resolutions_total{matched="true",route="/product/:id/"} 1`,
	} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("expected %q in metrics", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Enabled = false
	s := newTestServer(t, cfg)

	rec := get(t, s.Handler(), "/metrics")
	if strings.Contains(rec.Body.String(), "storefront_") {
		t.Error("expected no metrics when disabled")
	}
}

func TestBasePath(t *testing.T) {
	cfg := config.New()
	cfg.Server.Base = "/shop/"
	s := newTestServer(t, cfg)
	h := s.Handler()

	rec := get(t, h, "/shop/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`href="/shop/product/`, `src="/shop/_storefront/live.js"`, `data-live="/shop/live"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}

	if rec := get(t, h, "/shop/api/categories"); rec.Code != http.StatusOK {
		t.Errorf("api status = %d", rec.Code)
	}
	if rec := get(t, h, "/"); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/shop/" {
		t.Errorf("root = %d %q, want redirect to /shop/", rec.Code, rec.Header().Get("Location"))
	}
	if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.New()
	cfg.Server.Static = dir
	s := newTestServer(t, cfg)

	rec := get(t, s.Handler(), "/static/app.css")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("static = %d %q", rec.Code, rec.Body.String())
	}
}

func TestFixtureCatalog(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "products.yaml")
	data := "- productId: \"42\"\n  title: 수제 젤리\n  lprice: \"4200\"\n  category1: 식품\n  category2: 젤리\n"
	if err := os.WriteFile(fixture, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.New()
	cfg.Catalog.Fixture = fixture
	s := newTestServer(t, cfg)

	if s.memory == nil || s.memory.Len() != 1 {
		t.Fatal("expected fixture loaded into memory catalog")
	}
	rec := get(t, s.Handler(), "/")
	if !strings.Contains(rec.Body.String(), "수제 젤리") || !strings.Contains(rec.Body.String(), "4,200원") {
		t.Error("expected fixture product on home page")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		code   string
	}{
		{"bad addr", func(c *config.Config) { c.Server.Addr = "nope" }, "SF002"},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "floppy" }, "SF003"},
		{"sql without dsn", func(c *config.Config) { c.Storage.Backend = config.BackendSQL }, "SF004"},
		{"missing fixture", func(c *config.Config) { c.Catalog.Fixture = "/does/not/exist.json" }, "SF022"},
		{"unregistered driver", func(c *config.Config) {
			c.Storage.Backend = config.BackendSQL
			c.Storage.SQL.Driver = "nosuchdriver"
			c.Storage.SQL.DSN = "x"
			c.Storage.SQL.Dialect = "postgres"
		}, "SF080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.modify(cfg)
			_, err := New(context.Background(), cfg, WithLogger(quietLogger()), WithRegistry(prometheus.NewRegistry()))
			if !errors.HasCode(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("s3", func(t *testing.T) {
		cfg := config.New()
		cfg.Storage.Backend = config.BackendS3
		cfg.Storage.S3 = config.S3Config{Bucket: "carts", Prefix: "sf/", Region: "us-east-1", Endpoint: "http://127.0.0.1:9000", PathStyle: true}

		b, closeFn, err := openBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("openBackend() error = %v", err)
		}
		defer closeFn()
		if _, ok := b.(*storage.S3Backend); !ok {
			t.Errorf("backend = %T, want *storage.S3Backend", b)
		}

		opts := s3Options(cfg.Storage.S3)
		if !opts.UsePathStyle || opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
			t.Errorf("s3 options = %+v", opts)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.New()
		cfg.Storage.Backend = config.BackendSQL
		cfg.Storage.SQL = config.SQLConfig{
			Driver:  "sqlite3",
			DSN:     filepath.Join(t.TempDir(), "carts.db"),
			Dialect: "sqlite",
			Table:   config.DefaultSQLTable,
		}

		b, closeFn, err := openBackend(ctx, cfg)
		if err != nil {
			if strings.Contains(err.Error(), "CGO_ENABLED=0") {
				t.Skip("go-sqlite3 needs cgo")
			}
			t.Fatalf("openBackend() error = %v", err)
		}
		defer closeFn()

		if err := b.SetItem(ctx, "shopping_cart:v", []byte(`{"items":[]}`)); err != nil {
			t.Fatalf("SetItem() error = %v", err)
		}
		got, ok, err := b.GetItem(ctx, "shopping_cart:v")
		if err != nil || !ok || string(got) != `{"items":[]}` {
			t.Errorf("GetItem() = %s %v %v", got, ok, err)
		}
	})
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := (envCredentials{}).Retrieve(context.Background()); err == nil {
		t.Error("expected error without credentials")
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := (envCredentials{}).Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "secret" {
		t.Errorf("Retrieve() = %+v, %v", creds, err)
	}
}

func TestServeShutsDown(t *testing.T) {
	s := newTestServer(t, config.New(), WithCatalog(catalog.NewMemory(nil)), WithBackend(storage.NewMemoryBackend()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
