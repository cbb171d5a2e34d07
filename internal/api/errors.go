package api

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph/check"
)

type errorResponse struct {
	Code     errs.Code `json:"code"`
	Message  string    `json:"message"`
	Strain   string    `json:"strain,omitempty"`
	Position *int      `json:"position,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errs.Is(err, errs.ErrCodeNotFound), errs.Is(err, errs.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrCodeReconstructionMismatch), errors.Is(err, check.ErrNotMinimal):
		return http.StatusUnprocessableEntity
	case errs.Is(err, errs.ErrCodeInvalidStrainSet),
		errs.Is(err, errs.ErrCodeMalformedGraph),
		errs.Is(err, errs.ErrCodeInvalidInput),
		errs.Is(err, errs.ErrCodeInvalidFormat):
		return http.StatusBadRequest
	case errs.Is(err, errs.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	resp := errorResponse{Code: code, Message: errs.UserMessage(err)}
	if status >= http.StatusInternalServerError && code == errs.ErrCodeInternal {
		resp.Message = "internal error"
	}
	var m *check.MismatchError
	if errors.As(err, &m) {
		resp.Strain = m.Strain
		resp.Position = &m.Position
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
