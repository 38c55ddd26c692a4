package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stepbookstep/server/internal/ctxkeys"
	"github.com/stepbookstep/server/internal/service"
)

// requestTimeout bounds the work of one API request.
const requestTimeout = 5 * time.Second

// response is the envelope of every API response.
type response struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// apiError is the wire form of a domain error.
type apiError struct {
	status  int
	code    int
	message string
}

// errorTable maps domain errors to HTTP status and application code.
var errorTable = []struct {
	err error
	apiError
}{
	{service.ErrBookNotFound, apiError{http.StatusNotFound, 2000, "book not found"}},
	{service.ErrGoalNotFound, apiError{http.StatusNotFound, 404007, "goal not found"}},
	{service.ErrReadQuantityRequired, apiError{http.StatusBadRequest, 5000, "read quantity is required"}},
	{service.ErrDurationRequired, apiError{http.StatusBadRequest, 5001, "duration is required for time goals"}},
	{service.ErrRatingRequired, apiError{http.StatusBadRequest, 5002, "rating is required"}},
	{service.ErrInvalidRating, apiError{http.StatusBadRequest, 5003, "rating must be between 1 and 5"}},
	{service.ErrTargetAmountInvalid, apiError{http.StatusBadRequest, 5004, "target amount must be greater than zero"}},
	{service.ErrPageCannotGoBack, apiError{http.StatusBadRequest, 5005, "read quantity cannot go back"}},
	{service.ErrPageExceedsTotal, apiError{http.StatusBadRequest, 5006, "read quantity exceeds total pages"}},
	{service.ErrInvalidPeriod, apiError{http.StatusBadRequest, 400002, "invalid period"}},
	{service.ErrInvalidMetric, apiError{http.StatusBadRequest, 400002, "invalid metric"}},
	{service.ErrInvalidStatus, apiError{http.StatusBadRequest, 400002, "invalid book status"}},
	{service.ErrInvalidYear, apiError{http.StatusBadRequest, 400002, "invalid year"}},
	{service.ErrInvalidInput, apiError{http.StatusBadRequest, 400002, "invalid input"}},
	{service.ErrStorageNotConfigured, apiError{http.StatusServiceUnavailable, 503001, "export archive is not available"}},
}

var errInternal = apiError{http.StatusInternalServerError, 500, "internal server error"}

func lookupError(err error) (apiError, bool) {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.apiError, true
		}
	}
	return errInternal, false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{Success: true, Code: status, Message: message, Data: data})
}

// respondError maps err to its API form. Unknown errors are logged and
// reported as 500 without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, known := lookupError(err)
	if !known {
		userID, _ := ctxkeys.UserID(r.Context())
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", userID,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
	}
	writeJSON(w, apiErr.status, response{Code: apiErr.code, Message: apiErr.message})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return nil
}

func bookIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("bookId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: book id", service.ErrInvalidInput)
	}
	return id, nil
}

// currentUser returns the authenticated user id. Routes are wrapped in
// RequireAuth, so a missing id is a wiring error.
func currentUser(r *http.Request) int64 {
	userID, _ := ctxkeys.UserID(r.Context())
	return userID
}
