// Package httpapi wires the Manager's operations onto a thin net/http
// surface: the endpoint table, a bearer-token auth
// middleware, and the error-taxonomy-to-status mapping.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/codelens-dev/codelens-gateway/internal/gateway"
	"github.com/codelens-dev/codelens-gateway/internal/manager"
)

// Version is the gateway's reported build version.
const Version = "0.1.0"

// Server owns the Manager and the configured mux.
type Server struct {
	mgr *manager.Manager
	cfg gateway.Config
	mux *http.ServeMux
}

// New builds a Server with every route registered.
func New(mgr *manager.Manager, cfg gateway.Config) *Server {
	s := &Server{mgr: mgr, cfg: cfg, mux: http.NewServeMux()}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler, applying correlation-id and (if
// enabled) auth middleware around the mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.withMiddleware(s.mux).ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /system/health", s.handleHealth)
	s.mux.HandleFunc("GET /symbol/definitions-in-file", s.handleDefinitionsInFile)
	s.mux.HandleFunc("POST /symbol/find-definition", s.handleFindDefinition)
	s.mux.HandleFunc("POST /symbol/find-references", s.handleFindReferences)
	s.mux.HandleFunc("POST /symbol/find-referenced-symbols", s.handleFindReferencedSymbols)
	s.mux.HandleFunc("POST /symbol/find-identifier", s.handleFindIdentifier)
	s.mux.HandleFunc("GET /workspace/list-files", s.handleListFiles)
	s.mux.HandleFunc("POST /workspace/read-source-code", s.handleReadSourceCode)
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	h := mountDirMiddleware(next)
	if s.cfg.AuthEnabled {
		h = authMiddleware(s.cfg.JWTSecret, h)
	}
	return correlationIDMiddleware(h)
}

// mountDirMiddleware attaches a per-request mount-directory override from
// the X-Mount-Dir header, if present. Paths in the response are relativized
// against it instead of the process-wide default.
func mountDirMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dir := r.Header.Get("X-Mount-Dir"); dir != "" {
			r = r.WithContext(gateway.WithMountDir(r.Context(), dir))
		}
		next.ServeHTTP(w, r)
	})
}

func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("httpapi: [%s] %s %s (%s)", id, r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	languages := make(map[string]bool)
	for lang, running := range s.mgr.RunningLanguages() {
		languages[string(lang)] = running
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   Version,
		"languages": languages,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

// writeError maps a returned error to its HTTP status. Errors that
// aren't a *gateway.Error are treated as internal errors.
func writeError(w http.ResponseWriter, err error) {
	gerr, ok := gateway.As(err)
	if !ok {
		gerr = gateway.Wrap(gateway.InternalError, "unexpected error", err)
	}
	writeJSON(w, gateway.HTTPStatus(gerr.Code), map[string]string{
		"error": gerr.Error(),
		"code":  string(gerr.Code),
	})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf(format, args...)})
}
