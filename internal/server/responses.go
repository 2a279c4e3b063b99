package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/extract"
)

const (
	codeInvalidArgument  = "INVALID_ARGUMENT"
	codeAnalysisFailed   = "ANALYSIS_FAILED"
	codeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	codePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	codeInternal         = "INTERNAL"
)

var (
	errInvalidArgument = errors.New("invalid argument")
	errPayloadTooLarge = errors.New("payload too large")
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, details any) {
	status := http.StatusInternalServerError
	code := codeInternal

	switch {
	case errors.Is(err, errInvalidArgument):
		status, code = http.StatusBadRequest, codeInvalidArgument
	case errors.Is(err, errPayloadTooLarge):
		status, code = http.StatusRequestEntityTooLarge, codePayloadTooLarge
	case errors.Is(err, extract.ErrUnsupportedType):
		status, code = http.StatusUnsupportedMediaType, codeUnsupportedMedia
	case errors.Is(err, analysis.ErrAllMethodsFailed):
		status, code = http.StatusUnprocessableEntity, codeAnalysisFailed
	}

	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: err.Error(), Details: details}})
}
