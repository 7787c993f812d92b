package files

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the file API endpoints.
//
// When mounted at /api/files:
//   - GET    /api/files
//   - POST   /api/files
//   - GET    /api/files/{id}/download
//   - GET    /api/files/{id}/preview
//   - PUT    /api/files/{id}
//   - DELETE /api/files/{id}
//
// The caller is expected to wrap this router with session middleware;
// every endpoint requires an authenticated user.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListHandler)
	r.Post("/", h.UploadHandler)

	r.Route("/{id}", func(fr chi.Router) {
		fr.Get("/download", h.DownloadHandler)
		fr.Get("/preview", h.PreviewHandler)
		fr.Put("/", h.UpdateHandler)
		fr.Delete("/", h.DeleteHandler)
	})

	return r
}
