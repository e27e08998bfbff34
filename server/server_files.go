package main

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"mediabrowser/internal/apperr"
)

// uploadMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const uploadMemory = 32 << 20

func (s *server) getFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *server) getSearch(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *server) postMkdir(w http.ResponseWriter, r *http.Request) {
	var req mkdirRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.catalog.Mkdir(req.Path, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("created folder", "path", entry.Path)
	writeSuccess(w)
}

func (s *server) postUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadLimit)

	err := r.ParseMultipartForm(uploadMemory)
	if err != nil {
		if tooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
			return
		}
		writeError(w, r, apperr.Validation("Invalid upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh := uploadedFile(r.MultipartForm)
	if fh == nil {
		writeError(w, r, apperr.Validation("No file uploaded"))
		return
	}
	src, err := fh.Open()
	if err != nil {
		writeError(w, r, apperr.Internal("Upload failed", err))
		return
	}
	defer src.Close()

	entry, err := s.catalog.Save(r.FormValue("path"), fh.Filename, src)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("uploaded file", "path", entry.Path, "size", fh.Size)
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, File: entry})
}

func (s *server) postDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := s.catalog.Remove(req.Path)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("deleted", "path", req.Path)
	writeSuccess(w)
}

func (s *server) getMedia(w http.ResponseWriter, r *http.Request) {
	f, st, err := s.catalog.Open(strings.TrimPrefix(r.URL.Path, "/media/"))
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

func uploadedFile(mf *multipart.Form) *multipart.FileHeader {
	if mf == nil {
		return nil
	}
	if v := mf.File["file"]; len(v) > 0 {
		return v[0]
	}
	return nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
