// Package api provides the HTTP API server for WealthWave.
//
// It exposes the finance calculators, the chat assistant, the simulated
// market snapshot and its WebSocket stream, learning content, and plan
// reports. Errors are always returned as {"detail": "..."}.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/womenwealthwave/wealthwave/internal/chat"
	"github.com/womenwealthwave/wealthwave/internal/config"
	"github.com/womenwealthwave/wealthwave/internal/infra"
	"github.com/womenwealthwave/wealthwave/internal/learn"
	"github.com/womenwealthwave/wealthwave/internal/llm"
	"github.com/womenwealthwave/wealthwave/internal/market"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "WomenWealthWave.AI"

// Server is the HTTP API server.
type Server struct {
	router      chi.Router
	cfg         *config.Config
	log         logrus.FieldLogger
	version     string
	chat        chat.Submitter
	llm         *llm.Router
	ticker      *market.Ticker
	feed        *learn.Feed
	wsHub       *WSHub
	chatLimiter *infra.KeyedLimiter
}

// Option customises a Server.
type Option func(*Server)

// WithSubmitter answers chat requests with s instead of an LLM-backed
// assistant built from config.
func WithSubmitter(s chat.Submitter) Option { return func(srv *Server) { srv.chat = s } }

// WithTicker serves quotes from t instead of a ticker built from config.
func WithTicker(t *market.Ticker) Option { return func(srv *Server) { srv.ticker = t } }

// WithFeed serves articles from f instead of a feed built from config.
func WithFeed(f *learn.Feed) Option { return func(srv *Server) { srv.feed = f } }

// WithLogger sets the request and component logger.
func WithLogger(log logrus.FieldLogger) Option { return func(srv *Server) { srv.log = log } }

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option { return func(srv *Server) { srv.version = v } }

// NewServer creates a configured API server with all routes and middleware.
// Collaborators not supplied as options are built from cfg.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	srv := &Server{cfg: cfg, version: "dev", wsHub: NewWSHub()}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.log == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		srv.log = l
	}

	if srv.chat == nil {
		router, err := llm.NewRouterFromConfig(cfg.LLM, srv.log)
		if err != nil {
			return nil, fmt.Errorf("LLM setup failed: %w", err)
		}
		srv.llm = router
		srv.chat = chat.NewAssistant(router, &llm.ChatOptions{
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
			MaxTokens:   cfg.LLM.MaxTokens,
		}, srv.log)
	}
	if srv.ticker == nil {
		srv.ticker = market.NewTickerFromInstruments(cfg.Market.Interval(), cfg.Market.Window, cfg.Market.Instruments, srv.log)
	}
	if srv.feed == nil {
		srv.feed = learn.NewFeed(cfg.Learn, srv.log)
	}

	burst := cfg.API.RateLimit.Burst
	if burst <= 0 {
		burst = 10
	}
	srv.chatLimiter = infra.NewKeyedLimiter(burst, cfg.API.RateLimit.Refill())

	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Ticker returns the market ticker the server streams from.
func (s *Server) Ticker() *market.Ticker {
	return s.ticker
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully. The market ticker is not started here; the caller
// owns its lifecycle.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.API.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.API.Addr(), err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.wsHub.Run(hubCtx)
	go s.pumpQuotes(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", ln.Addr().String()).Info("API server listening")
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// pumpQuotes forwards every ticker batch to WebSocket clients.
func (s *Server) pumpQuotes(ctx context.Context) {
	quotes, cancel := s.ticker.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-quotes:
			if !ok {
				return
			}
			s.wsHub.Broadcast(WSMessage{Type: "quotes", Data: batch})
		}
	}
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.cfg.API.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Chat
		r.With(s.limitChat).Post("/chat", s.handleChat)

		// Calculators
		r.Route("/calc", func(r chi.Router) {
			r.Use(middleware.Timeout(10 * time.Second))
			r.Post("/emi", s.handleEMI)
			r.Post("/emi/schedule", s.handleEMISchedule)
			r.Post("/sip", s.handleSIP)
			r.Post("/goal", s.handleGoal)
			r.Post("/tax", s.handleTax)
			r.Post("/savings", s.handleSavings)
		})
		r.Get("/tax/slabs", s.handleTaxSlabs)
		r.Post("/report", s.handleReport)

		// Market
		r.Get("/market", s.handleMarket)
		r.Get("/ws/market", s.handleWebSocket)

		// Learn
		r.Get("/learn/catalog", s.handleCatalog)
		r.Get("/learn/articles", s.handleArticles)

		// Config
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	if dir := s.cfg.Web.DistDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.mountSPA(r, os.DirFS(dir))
		} else {
			s.log.WithField("dist_dir", dir).Warn("web dist dir not found, UI not served")
		}
	}

	return r
}

// mountSPA serves a built single-page app. Hashed assets are cached
// forever; every unknown path falls back to index.html for client routing.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServer(http.FS(distFS))

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, distFS)
			return
		}
		f.Close()

		if strings.HasPrefix(rPath, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else if strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		fileServer.ServeHTTP(w, r)
	})
}

func serveIndexHTML(w http.ResponseWriter, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		writeError(w, http.StatusNotFound, "web UI not available")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Middleware
// ============================================================

// requestLogger logs one line per request through logrus.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
				"remote":     r.RemoteAddr,
			})
			switch {
			case ww.Status() >= 500:
				entry.Error("request failed")
			case ww.Status() >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
		})
	}
}

// limitChat applies the per-client token bucket to chat requests.
func (s *Server) limitChat(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.chatLimiter.Allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the peer address, or the forwarded one when api.trust_proxy
// lets RealIP rewrite RemoteAddr.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ============================================================
// Responses
// ============================================================

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// decodeJSON reads a JSON request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
