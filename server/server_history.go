package main

import (
	"net/http"
)

func (s *server) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.library.GetHistory(r.Context(), s.sessions.Principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *server) postHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := s.library.RecordHistory(r.Context(), s.sessions.Principal(r), req.Action, req.Details)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w)
}
