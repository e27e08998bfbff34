package main

import (
	"log/slog"
	"net/http"

	"mediabrowser/internal/apperr"
)

func (s *server) postRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("registered user", "username", user.Username)
	writeSuccess(w)
}

func (s *server) postLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.sessions.Issue(w, r, p); err != nil {
		writeError(w, r, apperr.Internal("Login failed", err))
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: p})
}

func (s *server) getMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meResponse{User: s.sessions.Principal(r)})
}

func (s *server) postLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w, r)
	writeSuccess(w)
}
