package handler

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/catalog/internal/httpx"
)

// SPAHandler serves the embedded single page app. Unknown paths get index.html
// so client side routes survive a reload; unknown /api/ paths get a JSON 404.
type SPAHandler struct {
	dist  fs.FS
	index []byte
	files http.Handler
}

func NewSPAHandler(dist fs.FS) *SPAHandler {
	index, err := fs.ReadFile(dist, "index.html")
	if err != nil {
		slog.Warn("spa index.html missing", "error", err)
	}

	return &SPAHandler{
		dist:  dist,
		index: index,
		files: http.FileServer(http.FS(dist)),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		httpx.WriteError(w, http.StatusNotFound, "Not found.")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if name != "" && name != "index.html" {
		info, err := fs.Stat(h.dist, name)
		if err == nil && !info.IsDir() {
			if strings.HasPrefix(name, "assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			h.files.ServeHTTP(w, r)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(h.index)
}

// StorageHandler serves files from a local storage root. Directory listings are not exposed.
func StorageHandler(root string) http.Handler {
	files := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			httpx.WriteError(w, http.StatusNotFound, "Not found.")
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
