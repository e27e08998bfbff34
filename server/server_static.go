package main

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// serveStatic serves the web player bundle. Unknown paths get index.html so
// the client side router can handle them, except under /api and /media.
func (s *server) serveStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api") || strings.HasPrefix(r.URL.Path, "/media") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	file := filepath.Join(s.staticDir, filepath.FromSlash(name))
	if st, err := os.Stat(file); err == nil && !st.IsDir() {
		http.ServeFile(w, r, file)
		return
	}

	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, index)
}
