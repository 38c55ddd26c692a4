package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/service"
)

type ReadingLogHandler struct {
	readingLogService *service.ReadingLogService
}

func NewReadingLogHandler(readingLogService *service.ReadingLogService) *ReadingLogHandler {
	return &ReadingLogHandler{
		readingLogService: readingLogService,
	}
}

type readingLogRequest struct {
	BookStatus      model.ReadingLogStatus `json:"bookStatus"`
	RecordDate      string                 `json:"recordDate"` // YYYY-MM-DD, defaults to today
	ReadQuantity    *int                   `json:"readQuantity"`
	DurationSeconds *int                   `json:"durationSeconds"`
	Rating          *int                   `json:"rating"`
}

func (req readingLogRequest) input() (service.CreateLogInput, error) {
	in := service.CreateLogInput{
		Status:          req.BookStatus,
		ReadQuantity:    req.ReadQuantity,
		DurationSeconds: req.DurationSeconds,
		Rating:          req.Rating,
	}
	if req.RecordDate != "" {
		date, err := time.Parse(time.DateOnly, req.RecordDate)
		if err != nil {
			return in, fmt.Errorf("%w: record date must be YYYY-MM-DD", service.ErrInvalidInput)
		}
		in.RecordDate = &date
	}
	return in, nil
}

func (h *ReadingLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bookID, err := bookIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req readingLogRequest
	err = decodeJSON(r, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	in, err := req.input()
	if err != nil {
		respondError(w, r, err)
		return
	}

	logID, err := h.readingLogService.Create(ctx, currentUser(r), bookID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, "reading log created", map[string]string{"logId": logID})
}

func (h *ReadingLogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bookID, err := bookIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	detail, err := h.readingLogService.ReadingDetail(ctx, currentUser(r), bookID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "ok", detail)
}
