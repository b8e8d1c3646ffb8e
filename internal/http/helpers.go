package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/mrlokans/simplelibrary/internal/entities"
	"github.com/mrlokans/simplelibrary/internal/logger"
)

var httpLog = logger.Component("http")

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // field errors for validation failures
}

// CreatedResponse is returned by endpoints that create a resource.
type CreatedResponse struct {
	ID uint `json:"id"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodeCapacity   = "no_copies_available"
	CodeInternal   = "internal_error"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeValidation})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	_ = c.Error(err)
	requestLog(c).Error().Err(err).Str("context", context).Msg("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal})
}

// respondDomainError maps the entities error kinds to status codes.
func respondDomainError(c *gin.Context, err error, context string) {
	status, code := statusForError(err)
	if status == http.StatusInternalServerError {
		respondInternalError(c, err, context)
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: code}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		resp.Details = fieldErrs
	}
	c.JSON(status, resp)
}

// statusForError returns the HTTP status and error code for an error.
func statusForError(err error) (int, string) {
	switch {
	case entities.IsValidation(err):
		return http.StatusBadRequest, CodeValidation
	case entities.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case entities.IsConflict(err):
		return http.StatusConflict, CodeConflict
	case entities.IsCapacity(err):
		return http.StatusUnprocessableEntity, CodeCapacity
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondValidation sends a 400 with the ozzo field errors as details.
func respondValidation(c *gin.Context, err error) {
	respondDomainError(c, entities.NewValidationError(err), "validate request")
}

// respondCreated sends a 201 Created response with the new id and its Location.
func respondCreated(c *gin.Context, location string, id uint) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseQueryInt reads an optional integer query parameter.
func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// requestLog returns the request-scoped logger set by the request logger
// middleware, or the package logger outside of it.
func requestLog(c *gin.Context) *zerolog.Logger {
	if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &httpLog
}
