package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		loggerFromContext(r.Context()).Error("failed to encode response", "status", status, "err", err)
	}
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, r, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code errs.Code, message string) {
	writeJSON(w, r, status, envelope{Error: message, Code: string(code)})
}

// conflictData tells the client which version to refetch.
type conflictData struct {
	CurrentVersion int64 `json:"current_version"`
}

// handleError maps err to a status code and writes it. Backend failures are
// logged and reported without detail.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := loggerFromContext(r.Context())

	var ce *errs.ConflictError
	if errors.As(err, &ce) {
		log.Debug("version conflict", "expected", ce.Expected, "actual", ce.Actual)
		writeJSON(w, r, http.StatusConflict, envelope{
			Data:  conflictData{CurrentVersion: ce.Actual},
			Error: ce.Error(),
			Code:  string(errs.ErrCodeVersionConflict),
		})
		return
	}

	code := errs.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "code", code, "err", err)
		if code == "" {
			code = errs.ErrCodeInternal
		}
		msg := "an internal error occurred"
		if code == errs.ErrCodeClosed {
			msg = errs.UserMessage(err)
		}
		writeError(w, r, status, code, msg)
		return
	}
	log.Warn("request rejected", "code", code, "err", errs.UserMessage(err))
	writeError(w, r, status, code, errs.UserMessage(err))
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidLayout, errs.ErrCodeInvalidWidget,
		errs.ErrCodeInvalidSlot, errs.ErrCodeInvalidConfig, errs.ErrCodeInvalidKey,
		errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeWidgetNotFound, errs.ErrCodePresetNotFound:
		return http.StatusNotFound
	case errs.ErrCodeVersionConflict:
		return http.StatusConflict
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errs.ErrCodeClosed:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
