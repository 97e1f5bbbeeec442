package visualization

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
)

// Server serves the rendered figure over HTTP so it can be inspected
// interactively in a browser. The process blocks until interrupted, which
// stands in for closing a plot window.
type Server struct {
	vis  *Visualizer
	addr string
}

// NewServer creates a figure server for the given visualizer.
func NewServer(vis *Visualizer, addr string) *Server {
	return &Server{vis: vis, addr: addr}
}

// Handler returns the HTTP handler serving the figure at /.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleFigure)
	return mux
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := s.vis.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("failed to render figure: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// ListenAndServe serves the figure until the process is interrupted.
func (s *Server) ListenAndServe() error {
	log.Printf("serving camera pose figure at http://%s/", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}
