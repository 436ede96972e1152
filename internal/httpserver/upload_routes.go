package httpserver

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"devconnect/internal/storage"
	"devconnect/internal/upload"
)

// UploadRoutes returns a sub-router mounted at /static/uploads serving the
// public upload kinds. Chat files are only served through the chat route,
// which checks participation.
func UploadRoutes(files *storage.Local) chi.Router {
	r := chi.NewRouter()

	for _, k := range []upload.Kind{upload.KindAvatar, upload.KindImage} {
		k := k
		r.Get("/"+k.Dir()+"/{filename}", func(w http.ResponseWriter, r *http.Request) {
			filename := chi.URLParam(r, "filename")
			// Prevent path traversal by refusing anything but a base name.
			if filename == "" || filepath.Base(filename) != filename {
				http.Error(w, "invalid filename", http.StatusBadRequest)
				return
			}
			path, err := files.Path(k, filename)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Content-Type", upload.MediaType(upload.Extension(filename)))
			http.ServeFile(w, r, path)
		})
	}

	return r
}
