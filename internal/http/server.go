package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/cors"

	"enoteca/internal/core"
	applog "enoteca/internal/log"
	"enoteca/internal/middleware/security"
	"enoteca/internal/middleware/trace"
	"enoteca/internal/services"
	appweb "enoteca/web"
)

// Options tunes a Server. The zero value serves the embedded templates
// without CORS on the JSON API.
type Options struct {
	Logger      *applog.Logger
	CORSOrigins []string
	// Ready reports backend health for /readyz.
	Ready func(context.Context) error
	// Templates and Static override the embedded web assets. Templates must
	// contain templates/*.html, Static the files served under /static/.
	Templates fs.FS
	Static    fs.FS
}

type Server struct {
	http.Server
	templates *template.Template
	drafts    *services.DraftService
	logger    *applog.Logger
	mutations *applog.StructuredLogger
	tracer    *trace.Middleware
	ready     func(context.Context) error
	started   time.Time
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, drafts *services.DraftService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	ips := security.NewClientIPResolver()
	s := &Server{
		drafts:    drafts,
		logger:    logger,
		mutations: applog.NewStructuredLogger(logger),
		tracer:    trace.NewMiddleware(ips.ExtractClientIP),
		ready:     opts.Ready,
		started:   time.Now(),
	}

	templates := opts.Templates
	if templates == nil {
		templates = appweb.TemplatesFS
	}
	t, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	static := opts.Static
	if static == nil {
		if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
			static = sub
		} else {
			logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
		}
	}
	if static != nil {
		files := http.StripPrefix("/static/", http.FileServer(http.FS(static)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(files))
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/items", s.handleItems)
	mux.HandleFunc("GET /ui/totals", s.handleTotals)

	mux.Handle("POST /records/{date}/sales/{item}", security.NoStore(http.HandlerFunc(s.handleSale)))
	mux.Handle("POST /records/{date}/losses/{item}", security.NoStore(http.HandlerFunc(s.handleLoss)))
	mux.Handle("POST /records/{date}/favorites/{item}", security.NoStore(http.HandlerFunc(s.handleFavorite)))
	mux.Handle("POST /records/{date}/steps/{step}", security.NoStore(http.HandlerFunc(s.handleSubmitStep)))

	api := func(h http.HandlerFunc) http.Handler { return security.NoStore(onlyGET(h)) }
	if len(opts.CORSOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet},
			AllowedHeaders: []string{"Accept", "Content-Type", trace.HeaderRequestID},
			ExposedHeaders: []string{trace.HeaderRequestID},
			MaxAge:         600,
		})
		plain := api
		api = func(h http.HandlerFunc) http.Handler { return c.Handler(plain(h)) }
	}
	mux.Handle("/api/records/{date}", api(s.handleAPIRecord))
	mux.Handle("/api/items", api(s.handleAPIItems))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Metrics returns the request counters collected by the tracing middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// onlyGET guards routes registered without a method so CORS preflights can
// reach the cors handler.
func onlyGET(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// render executes a template into a buffer so a failure still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	if s.templates == nil {
		InternalServerError("Template non disponibili").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.mutations.LogError(r.Context(), "Template render failed", err, applog.OpRender,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery))
		InternalServerError("Errore di visualizzazione").Write(w)
		return
	}
	if b == nil {
		b = NewHTMXResponse()
	}
	b.Header("Content-Type", "text/html; charset=utf-8").Body(buf.Bytes()).Write(w)
}

// writeError maps service errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		BadRequestError("Data non valida").Write(w)
	case services.IsNotFound(err):
		NotFoundError("Vino non trovato").Write(w)
	default:
		s.mutations.LogError(r.Context(), "Request failed", err, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery))
		InternalServerError("Errore interno, riprova").Write(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"requests": m.TotalRequests,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	fail := func(reason string, err error) {
		s.logger.WarnContext(ctx, "Readiness check failed", "reason", reason, applog.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "reason": reason})
	}

	if s.templates == nil {
		fail("templates", errors.New("templates not parsed"))
		return
	}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			fail("backend", err)
			return
		}
	}
	if _, err := s.drafts.Items(ctx); err != nil {
		fail("items", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
