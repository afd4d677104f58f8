package httppresentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
	"github.com/go-playground/validator/v10"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"

	genericMessage = "something went very wrong!"
	maxBodyBytes   = 1 << 20
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type dataResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Status: statusSuccess, Data: data})
}

func (s *Server) writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Status: statusFail, Message: msg})
}

// writeError maps err to a status code by its kind. Provider and internal
// failures get a generic message unless the server runs in development.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)

	body := errorResponse{Status: statusFail}
	if status >= http.StatusInternalServerError {
		body.Status = statusError
	}

	msg, classified := apperr.MessageOf(err)
	switch {
	case status < http.StatusInternalServerError:
		body.Message = msg
	case s.opts.Development && classified:
		body.Message = msg
	default:
		body.Message = genericMessage
	}
	if s.opts.Development {
		body.Error = err.Error()
	}

	logger := logctx.FromOr(r.Context(), s.log)
	if status >= http.StatusInternalServerError {
		logger.Error("http_request_failed",
			observability.F("status", status),
			observability.F("classified", classified),
			observability.F("error", err),
		)
	}
	writeJSON(w, status, body)
}

func statusForKind(kind error) int {
	switch kind {
	case apperr.ErrValidation:
		return http.StatusBadRequest
	case apperr.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperr.ErrNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body into dst and validates it. Both malformed
// bodies and failed validation are validation errors.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body: %s", err.Error())
	}
	if err := s.validate.Struct(dst); err != nil {
		return apperr.Validation("%s", validationMessage(err))
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return "invalid input data"
	}
	parts := make([]string, 0, len(ves))
	for _, fe := range ves {
		parts = append(parts, fieldMessage(fe))
	}
	return "invalid input data. " + strings.Join(parts, ". ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "eqfield":
		return "passwords are not the same"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}
