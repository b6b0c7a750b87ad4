package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/XandyNerd/BuscarLead/core"
	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := core.MapError(err)
	if mapped == nil {
		mapped = core.MapError(errors.New("httpapi: unknown error"))
	}
	status := mapped.Code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"code", mapped.TextCode,
			"error", err.Error(),
		)
	}
	writeJSON(w, status, errorBody{Error: mapped.Message, Code: mapped.TextCode})
}

// decodeBody decodes an optional JSON body. An empty body leaves target
// untouched.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	body, err := s.readBody(w, r)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return badRequest("invalid json body", err)
	}
	return nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, goerrors.New("httpapi: request body too large", goerrors.CategoryBadInput).
				WithCode(http.StatusRequestEntityTooLarge).
				WithTextCode(core.ServiceErrorBadInput)
		}
		return nil, badRequest("unreadable request body", err)
	}
	return body, nil
}

func badRequest(message string, source error) error {
	if source == nil {
		return goerrors.New("httpapi: "+message, goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ServiceErrorBadInput)
	}
	return goerrors.Wrap(source, goerrors.CategoryBadInput, "httpapi: "+message).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput)
}
