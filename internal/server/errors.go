package server

import (
	"encoding/json"
	"errors"
	"net/http"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

var codeStatusMap = map[derrors.Code]int{
	derrors.ErrCodeInvalidInput:       http.StatusBadRequest,
	derrors.ErrCodeInvalidFormat:      http.StatusBadRequest,
	derrors.ErrCodeInvalidManifest:    http.StatusUnprocessableEntity,
	derrors.ErrCodeInvalidRequirement: http.StatusUnprocessableEntity,
	derrors.ErrCodeInvalidPath:        http.StatusBadRequest,
	derrors.ErrCodeNotFound:           http.StatusNotFound,
	derrors.ErrCodeDescriptorNotFound: http.StatusNotFound,
	derrors.ErrCodePackageNotFound:    http.StatusNotFound,
}

type errorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func statusFromError(err error) (int, string) {
	code := derrors.GetCode(err)
	if status, ok := codeStatusMap[code]; ok {
		return status, string(code)
	}
	return http.StatusInternalServerError, string(derrors.ErrCodeInternal)
}

// writeErr maps err to a status and writes it. Joined validation errors are
// listed one per detail line.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFromError(err)
	body := errorBody{Error: code, Message: derrors.UserMessage(err)}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			body.Details = append(body.Details, e.Error())
		}
		body.Message = "descriptor is invalid"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "uri", r.RequestURI, "error", err)
		body.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
