package handlers

import (
	"net/http"
	"strings"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/http/respond"
)

// Version is reported by the API root.
const Version = "1.0.0"

// SiteHandler answers everything no other route matched: the frontend when a
// static directory is configured, the API banner otherwise, and JSON 404s.
type SiteHandler struct {
	static http.Handler
}

// NewSiteHandler serves staticDir when it is non-empty.
func NewSiteHandler(staticDir string) *SiteHandler {
	h := &SiteHandler{}
	if staticDir != "" {
		h.static = noStore(http.FileServer(http.Dir(staticDir)))
	}
	return h
}

func (h *SiteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handle)
}

func (h *SiteHandler) handle(w http.ResponseWriter, r *http.Request) {
	isAPI := r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
	readOnly := r.Method == http.MethodGet || r.Method == http.MethodHead
	switch {
	case !isAPI && readOnly && h.static != nil:
		h.static.ServeHTTP(w, r)
	case r.URL.Path == "/" && readOnly:
		respond.JSON(w, http.StatusOK, map[string]string{
			"message": "Employee Management System API",
			"version": Version,
		})
	default:
		respond.Error(w, apperr.NotFound("Endpoint not found"))
	}
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
