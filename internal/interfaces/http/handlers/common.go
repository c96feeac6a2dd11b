package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/internal/interfaces/http/middleware"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorObserver is told about every error response, e.g. to count it.
type ErrorObserver func(code errors.ErrorCode)

// errorWriter maps AppError codes to HTTP statuses.  Server-side failures
// are logged and their message is replaced by the code's default text.
type errorWriter struct {
	logger   logging.Logger
	observer ErrorObserver
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{
		Code:      code.String(),
		Message:   err.Error(),
		RequestID: middleware.ContextGetRequestID(r.Context()),
	}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if status >= http.StatusInternalServerError {
		e.logger.Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("code", code.String()),
			logging.String("request_id", resp.RequestID),
			logging.Err(err))
		resp.Message = errors.DefaultMessageForCode(code)
		resp.Detail = ""
	}
	if e.observer != nil {
		e.observer(code)
	}
	writeJSON(w, status, resp)
}

//Personal.AI order the ending
