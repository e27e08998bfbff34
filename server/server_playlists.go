package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediabrowser/internal/apperr"
)

func (s *server) getPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.library.ListPlaylists(r.Context(), s.sessions.Principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, playlists)
}

func (s *server) postPlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pl, err := s.library.CreatePlaylist(r.Context(), s.sessions.Principal(r), req.Name, req.Tracks, req.IsPrivate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pl)
}

func (s *server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = s.library.DeletePlaylist(r.Context(), s.sessions.Principal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w)
}

func extractID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return "", apperr.Validation("Playlist id is missing")
	}
	return id, nil
}
