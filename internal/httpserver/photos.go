package httpserver

import (
	"net/http"
	"strings"

	"github.com/dkotl/macrolog/internal/userctx"
)

// handlePhoto serves stored meal photos for blob backends that cannot
// presign URLs (local and memory modes). Keys are namespaced per user and
// requests outside the caller's namespace get 404, not 403, so the route
// does not reveal whether a foreign photo exists.
func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	userID := "default"
	if id, ok := userctx.GetUserID(r.Context()); ok && strings.TrimSpace(id) != "" {
		userID = id
	}
	if !strings.HasPrefix(key, userID+"/") {
		http.NotFound(w, r)
		return
	}

	data, err := s.photoStore.GetObject(r.Context(), "photos/"+key)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
