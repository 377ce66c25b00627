package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CheckinHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type checkinHandlerImpl struct {
	checkinService checkin.CheckinService
}

func NewCheckinHandler(checkinService checkin.CheckinService) CheckinHandler {
	return &checkinHandlerImpl{checkinService: checkinService}
}

// Create implements CheckinHandler.
func (h *checkinHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req checkin.CreateCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create checkin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.checkinService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Check-in recorded successfully"
	if result.Message != "" {
		message = result.Message
	}
	response.Created(w, message, result)
}

// ListMy implements CheckinHandler.
func (h *checkinHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := checkin.ListCheckinFilter{
		From: getOptionalQueryParam(r, "from"),
		To:   getOptionalQueryParam(r, "to"),
	}

	result, err := h.checkinService.ListMy(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPending implements CheckinHandler.
func (h *checkinHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.checkinService.ListPending(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve implements CheckinHandler. The body is optional.
func (h *checkinHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req checkin.ApproveCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Approve checkin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.checkinService.Approve(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-in approved successfully", result)
}

// Reject implements CheckinHandler.
func (h *checkinHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Check-in ID is required", nil)
		return
	}

	result, err := h.checkinService.Reject(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-in rejected successfully", result)
}
