package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/gridboard/pkg/errors"
)

type replaceRequest struct {
	Preferences     map[string]any `json:"preferences"`
	ExpectedVersion *int64         `json:"expected_version,omitempty"`
}

type patchRequest struct {
	Updates         map[string]any `json:"updates"`
	ExpectedVersion *int64         `json:"expected_version,omitempty"`
}

type batchDeleteRequest struct {
	Keys []string `json:"keys"`
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	doc, err := s.prefs.Get(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, doc)
}

func (s *Server) replacePreferences(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Preferences == nil {
		handleError(w, r, errs.New(errs.ErrCodeInvalidInput, "preferences object is required"))
		return
	}
	ctx := r.Context()
	doc, err := s.prefs.Replace(ctx, userFromContext(ctx), sessionFromContext(ctx), req.Preferences, req.ExpectedVersion)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, doc)
}

func (s *Server) patchPreferences(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if len(req.Updates) == 0 {
		handleError(w, r, errs.New(errs.ErrCodeInvalidInput, "updates object is required"))
		return
	}
	ctx := r.Context()
	doc, err := s.prefs.Patch(ctx, userFromContext(ctx), sessionFromContext(ctx), req.Updates, req.ExpectedVersion)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, doc)
}

func (s *Server) deletePreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := s.prefs.Delete(ctx, userFromContext(ctx), sessionFromContext(ctx), chi.URLParam(r, "key"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, doc)
}

func (s *Server) batchDeletePreferences(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	ctx := r.Context()
	doc, err := s.prefs.Delete(ctx, userFromContext(ctx), sessionFromContext(ctx), req.Keys...)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, doc)
}
