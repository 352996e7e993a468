package adapthttp

import (
	"net/http"

	"uigen/internal/domain"
)

func (s *Server) handleGetAnonWork(w http.ResponseWriter, r *http.Request) {
	snap, err := s.anon.GetAnonWork(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"work": snap})
}

func (s *Server) handlePutAnonWork(w http.ResponseWriter, r *http.Request) {
	var body domain.AnonWorkSnapshot
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := s.anon.SaveAnonWork(r.Context(), body)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": saved})
}
