package handlers

import (
	"net/http"
	"path/filepath"
)

// Static serves the browser frontend from dir.
type Static struct {
	dir string
	fs  http.Handler
}

func NewStatic(dir string) *Static {
	return &Static{dir: dir, fs: http.FileServer(http.Dir(dir))}
}

// Files serves index.html at / and any other file under dir.
func (s *Static) Files(w http.ResponseWriter, r *http.Request) {
	s.fs.ServeHTTP(w, r)
}

// Dashboard serves dashboard.html; the route is mounted behind RequireAuth.
func (s *Static) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.dir, "dashboard.html"))
}
