// Package web serves the live scoreboard over HTTP.
package web

import (
	"bytes"
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/reaction-duel/internal/status"
)

// Server serves the scoreboard page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads the scoreboard from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	return s
}

func (s *Server) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(accessLog)

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/index.json", s.handleJSON)
	return r
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := renderHTML(&buf, s.tracker.Snapshot()); err != nil {
		log.WithError(err).Error("web: render scoreboard")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	render.HTML(w, r, buf.String())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, status.Build(s.tracker.Snapshot()))
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		entry := log.WithFields(log.Fields{"method": r.Method, "path": r.URL.Path, "status": code})
		if code/100 != 2 {
			entry.Warn("web: request failed")
			return
		}
		entry.Debug("web: request")
	})
}
