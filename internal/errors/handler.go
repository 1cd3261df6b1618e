package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type problemKind struct {
	status      int
	problemType string
	title       string
}

// appErrorKinds maps each domain failure to its HTTP answer
var appErrorKinds = map[ErrorType]problemKind{
	ErrTypeDataAccess: {http.StatusServiceUnavailable, TypeDataUnavailable, "Dataset Unavailable"},
	ErrTypeParsing:    {http.StatusUnprocessableEntity, TypeDataCorrupted, "Dataset Corrupted"},
	ErrTypeValidation: {http.StatusBadRequest, TypeValidation, "Validation Failed"},
	ErrTypeExport:     {http.StatusInternalServerError, TypeExportFailed, "Export Failed"},
}

// apiErrorTypes maps request error codes to problem types
var apiErrorTypes = map[string]string{
	CodeInvalidRequest:       TypeValidation,
	CodeValidationFailed:     TypeValidation,
	CodePayloadTooLarge:      TypeValidation,
	CodeUnsupportedMediaType: TypeValidation,
}

// ErrorHandler turns errors into problem documents and logs them once
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack adds the
// goroutine stack to every problem and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError writes err as a problem document
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack {
		problem.WithExtension("stack", stackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem classifies err. Context cancellation becomes 504, request
// errors keep their status and domain errors map through appErrorKinds.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ForRequest(r, http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		problemType, ok := apiErrorTypes[apiErr.ErrorCode]
		if !ok {
			problemType = TypeInternal
		}
		problem := ForRequest(r, apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode), apiErr.Message).
			WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if kind, ok := appErrorKinds[appErr.Type]; ok {
			problem := ForRequest(r, kind.status, kind.problemType, kind.title, appErr.Message)
			for k, v := range appErr.Context {
				problem.WithExtension(k, v)
			}
			return problem
		}
	}

	return ForRequest(r, http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request")
}

// NotFound answers routes chi does not know
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, ForRequest(r, http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found"))
}

// MethodNotAllowed answers known routes called with the wrong method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, ForRequest(r, http.StatusMethodNotAllowed, TypeMethod, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method)))
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	return string(buf[:runtime.Stack(buf, false)])
}
