package main

import (
	"mediabrowser/internal/catalog"
	"mediabrowser/internal/identity"
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool               `json:"success"`
	User    identity.Principal `json:"user"`
}

type meResponse struct {
	User *identity.Principal `json:"user"`
}

type historyRequest struct {
	Action  string `json:"action"`
	Details any    `json:"details"`
}

type playlistRequest struct {
	Name      string          `json:"name"`
	Tracks    []catalog.Entry `json:"tracks"`
	IsPrivate bool            `json:"isPrivate"`
}

type mkdirRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type deleteRequest struct {
	Path string `json:"path"`
}

type uploadResponse struct {
	Success bool          `json:"success"`
	File    catalog.Entry `json:"file"`
}
