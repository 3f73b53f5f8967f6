package gateway

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(g.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: g.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", g.handleIndex())

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", g.handleChat())
		r.Route("/conversation", func(r chi.Router) {
			r.Post("/clear", g.handleClear())
			r.Get("/history", g.handleHistory())
			r.Get("/export", g.handleExport())
			r.Post("/import", g.handleImport())
		})
		r.Get("/system-prompt", g.handleGetSystemPrompt())
		r.Post("/system-prompt", g.handleSetSystemPrompt())
		r.Get("/health", g.handleHealth())
	})

	if g.metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.metrics.Handler())
	}

	return r
}

// recoverer turns handler panics into the generic 500 JSON body.
func (g *Gateway) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			g.logger.Error("unhandled server fault",
				"op", r.Method+" "+r.URL.Path,
				"error", fmt.Sprint(rec),
				"request_id", middleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
