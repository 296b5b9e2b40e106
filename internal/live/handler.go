package live

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/router"
	"github.com/vango-dev/storefront/pkg/storage"
	"github.com/vango-dev/storefront/pkg/store"
)

//go:embed client.js
var clientJS []byte

// VisitorCookie names the cookie that keys a visitor's cart.
const VisitorCookie = "storefront_visitor"

// Recorder observes sessions. *metrics.Metrics implements it.
type Recorder interface {
	SessionOpened()
	SessionClosed()
	ObserveMessage(kind string)
	ObserveLiveError(code string)
}

type nopRecorder struct{}

func (nopRecorder) SessionOpened()          {}
func (nopRecorder) SessionClosed()          {}
func (nopRecorder) ObserveMessage(string)   {}
func (nopRecorder) ObserveLiveError(string) {}

// Config configures Handler.
type Config struct {
	Catalog catalog.Client

	// Backend stores carts, keyed by CartKey and the visitor cookie.
	// Default: storage.DefaultMemory()
	Backend storage.Backend
	CartKey string

	// Base is the path pages are served under.
	Base string

	ToastDuration time.Duration
	StoreOptions  []store.Option
	ResolveHook   router.ResolveHook
	Recorder      Recorder
	Logger        *slog.Logger

	// CheckOrigin is passed to the websocket upgrader. The default
	// rejects cross-origin requests.
	CheckOrigin func(r *http.Request) bool

	// ReadLimit caps the size of a browser message (default 64 KiB).
	ReadLimit int64

	// WriteTimeout bounds every write (default 10s).
	WriteTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Backend == nil {
		c.Backend = storage.DefaultMemory()
	}
	if c.CartKey == "" {
		c.CartKey = app.DefaultCartKey
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = app.DefaultToastDuration
	}
	if c.Recorder == nil {
		c.Recorder = nopRecorder{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 64 << 10
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

// Handler upgrades requests to live sessions.
func Handler(cfg Config) http.Handler {
	cfg.defaults()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     cfg.CheckOrigin,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitor, header := visitorID(r, cfg.Base)

		conn, err := upgrader.Upgrade(w, r, header)
		if err != nil {
			// Upgrade has already replied.
			cfg.Logger.Warn("live: upgrade failed", "error", err)
			return
		}
		serve(r.Context(), conn, visitor, cfg)
	})
}

// ScriptHandler serves the browser side of the live protocol.
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(clientJS)
	})
}

// visitorID returns the visitor of r, minting one when the cookie is
// missing or invalid. header carries the cookie to set.
func visitorID(r *http.Request, base string) (string, http.Header) {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), nil
		}
	}

	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     base + "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())
	return id, header
}

// serve runs one session until the browser disconnects. Reads happen here;
// message handling and writes happen on the session loop.
func serve(parent context.Context, conn *websocket.Conn, visitor string, cfg Config) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
		return conn.WriteJSON(v)
	}

	cart := storage.New[stores.CartState](cfg.CartKey+":"+visitor,
		storage.WithBackend(cfg.Backend),
		storage.WithLogger(cfg.Logger),
		storage.WithContext(ctx),
	)

	sess := newSession(ctx, uuid.NewString(), sessionConfig{
		catalog:   cfg.Catalog,
		cart:      cart,
		base:      cfg.Base,
		toast:     cfg.ToastDuration,
		storeOpts: cfg.StoreOptions,
		resolve:   cfg.ResolveHook,
		logger:    cfg.Logger,
	}, send)
	defer sess.Close()

	cfg.Recorder.SessionOpened()
	defer cfg.Recorder.SessionClosed()
	sess.logger.Info("live: session opened", "remote", conn.RemoteAddr().String())

	go func() {
		if err := sess.loop.Run(ctx); err != nil && err != context.Canceled {
			sess.logger.Warn("live: loop stopped", "error", err)
		}
	}()

	conn.SetReadLimit(cfg.ReadLimit)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Warn("live: read failed", "error", err)
			}
			sess.logger.Info("live: session closed", "renders", sess.Renders())
			return
		}

		msg, err := decodeMessage(raw)
		if err != nil {
			cfg.Recorder.ObserveLiveError("SF060")
			sess.loop.Dispatch(func() { sess.sendError(err) })
			continue
		}

		cfg.Recorder.ObserveMessage(msg.Type)
		sess.loop.Dispatch(func() {
			if err := sess.Handle(msg); err != nil {
				cfg.Recorder.ObserveLiveError(errors.FromError(err, "SF100").Code)
			}
		})
	}
}
