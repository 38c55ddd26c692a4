package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type goalRequest struct {
	Period       model.GoalPeriod `json:"period"`
	Metric       model.GoalMetric `json:"metric"`
	TargetAmount *int             `json:"targetAmount"`
	Delete       bool             `json:"delete"`
}

// Upsert sets the book's goal, or deactivates it when the body asks for delete.
func (h *GoalHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := currentUser(r)
	bookID, err := bookIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req goalRequest
	err = decodeJSON(r, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Delete {
		err = h.goalService.Delete(ctx, userID, bookID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respond(w, http.StatusOK, "goal deleted", nil)
		return
	}

	if req.TargetAmount == nil {
		respondError(w, r, service.ErrTargetAmountInvalid)
		return
	}

	goal, err := h.goalService.Upsert(ctx, userID, bookID, service.GoalInput{
		Period:       req.Period,
		Metric:       req.Metric,
		TargetAmount: *req.TargetAmount,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "goal saved", goal)
}

// Get returns the book's most recent goal, or null data when none was ever set.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bookID, err := bookIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	goal, err := h.goalService.GoalWithProgress(ctx, currentUser(r), bookID)
	if errors.Is(err, service.ErrGoalNotFound) {
		respond(w, http.StatusOK, "no goal", nil)
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "ok", goal)
}

func (h *GoalHandler) Routines(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	routines, err := h.goalService.Routines(ctx, currentUser(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "ok", routines)
}
