// Package server is the bridge daemon: it serves the wallet relay page,
// attaches the page's websocket as the bridge's provider and exposes the
// bridge operations as a local JSON API.
package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3mask/internal/api"
	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/provider"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

//go:embed page/index.html
var pageHTML []byte

const shutdownTimeout = 5 * time.Second

// Server wires one bridge to HTTP.
type Server struct {
	bridge *bridge.Bridge
	sw     *provider.Switch
	log    *zap.Logger

	upgrader websocket.Upgrader

	// attachMu serialises page replacement.
	attachMu sync.Mutex
	page     *provider.WS
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the daemon logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// New creates a server for b. sw must be the provider b was built on; pages
// that connect are attached to it.
func New(b *bridge.Bridge, sw *provider.Switch, opts ...Option) *Server {
	s := &Server{
		bridge: b,
		sw:     sw,
		log:    zap.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireJSON)

		r.Get("/state", s.handleState)
		r.Post("/connect", s.handleConnect)
		r.Post("/disconnect", s.handleDisconnect)
		r.Post("/chain/switch", s.handleSwitchChain)
		r.Post("/chain/add", s.handleAddChain)
		r.Post("/asset/watch", s.handleWatchAsset)
		r.Get("/permissions", s.handleGetPermissions)
		r.Post("/permissions", s.handleRequestPermissions)
		r.Post("/decrypt", s.handleDecrypt)
		r.Get("/encryption-key", s.handleEncryptionKey)
		r.Post("/encrypt", s.handleEncrypt)
		r.Post("/qr/scan", s.handleScanQRCode)
		r.Post("/tx", s.handleTransaction)
	})

	return r
}

// Serve runs the daemon on l until ctx is cancelled, then closes the
// attached page and shuts down.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	stop := s.bridge.Watch(func(st bridge.State) {
		s.log.Info("session",
			zap.Bool("installed", st.Installed),
			zap.Bool("active", st.Active),
			zap.String("chainId", st.ChainID),
			zap.Strings("accounts", st.Accounts),
			zap.Uint64("generation", st.Generation))
	})
	defer stop()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()
	s.log.Info("daemon listening", zap.String("addr", l.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.closePage()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(pageHTML) //nolint:errcheck
}

// handleWS attaches a wallet page. A newer page replaces the current one;
// the old socket is closed first so the session sees its disconnect.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	page := provider.NewWS(conn, s.log.With(zap.String("page", r.RemoteAddr)))

	s.attachMu.Lock()
	if s.page != nil {
		s.log.Info("replacing wallet page", zap.String("page", r.RemoteAddr))
		s.page.Close()
	}
	s.page = page
	s.sw.Attach(page)
	s.attachMu.Unlock()

	go func() {
		<-page.Done()
		s.attachMu.Lock()
		if s.page == page {
			s.page = nil
		}
		s.sw.Detach(page)
		s.attachMu.Unlock()
		s.log.Info("wallet page detached", zap.String("page", r.RemoteAddr))
	}()
}

// closePage drops the current page, if any.
func (s *Server) closePage() {
	s.attachMu.Lock()
	page := s.page
	s.page = nil
	s.attachMu.Unlock()
	if page != nil {
		page.Close()
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("id", chimw.GetReqID(r.Context())))
	})
}

// requireJSON only lets JSON through on state-changing routes. Browsers
// cannot send such requests cross-origin without a preflight, and requests
// that carry an Origin come from a web page rather than the CLI.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			if r.Header.Get("Origin") != "" {
				writeError(w, fmt.Errorf("%w: cross-origin requests are not accepted", api.ErrBadRequest))
				return
			}
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				writeError(w, fmt.Errorf("%w: content type must be application/json", api.ErrBadRequest))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
