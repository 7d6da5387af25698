package web

import (
	"net/http"
	"os"
	"path/filepath"
)

// StaticHandler serves the upload console: index.html at the root plus
// its assets (scripts, styles, icons) from the configured static
// directory. The console is plain static content; all state lives behind
// the JSON API.
type StaticHandler struct {
	staticDir string
}

// New creates a new static file handler
func New(staticDir string) *StaticHandler {
	return &StaticHandler{staticDir: staticDir}
}

// HandleRoot serves the console index and any other static asset
func (h *StaticHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		path := filepath.Join(h.staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}
