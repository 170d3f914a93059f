package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticHandler serves the marketing site. Extensionless paths resolve
// to their .html file (/survey serves survey.html) so links stay clean,
// and unknown paths fall back to index.html.
type StaticHandler struct {
	staticDir string
	indexFile string
}

func NewStaticHandler(staticDir string) *StaticHandler {
	return &StaticHandler{
		staticDir: staticDir,
		indexFile: "index.html",
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if path == "" {
		path = strings.TrimPrefix(r.URL.Path, "/")
	}
	if path == "" || path == "/" {
		path = h.indexFile
	}

	if strings.HasPrefix(path, "api/") {
		http.NotFound(w, r)
		return
	}

	filePath := filepath.Join(h.staticDir, filepath.Clean("/"+path))

	info, err := os.Stat(filePath)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, filePath)
		return
	}

	if filepath.Ext(path) == "" {
		htmlPath := filePath + ".html"
		if info, err := os.Stat(htmlPath); err == nil && !info.IsDir() {
			http.ServeFile(w, r, htmlPath)
			return
		}
	}

	indexPath := filepath.Join(h.staticDir, h.indexFile)
	if _, err := os.Stat(indexPath); err != nil {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, indexPath)
}

func StaticFileServer(staticDir string) http.Handler {
	return NewStaticHandler(staticDir)
}
