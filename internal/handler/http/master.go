package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/ess-backend-go/internal/service/master"
	"github.com/go-chi/chi/v5"
)

type MasterHandler interface {
	// Location shift configuration
	UpsertShiftConfig(w http.ResponseWriter, r *http.Request)
	GetShiftConfig(w http.ResponseWriter, r *http.Request)
	ListShiftConfigs(w http.ResponseWriter, r *http.Request)

	// Allowed overtime
	CreateOvertime(w http.ResponseWriter, r *http.Request)
	ListOvertimes(w http.ResponseWriter, r *http.Request)
	DeleteOvertime(w http.ResponseWriter, r *http.Request)
}

type masterHandlerImpl struct {
	masterService master.MasterService
}

func NewMasterHandler(masterService master.MasterService) MasterHandler {
	return &masterHandlerImpl{masterService: masterService}
}

// UpsertShiftConfig implements MasterHandler.
func (h *masterHandlerImpl) UpsertShiftConfig(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req location.UpsertShiftConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpsertShiftConfig decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.CompanyID = actor.CompanyID
	req.Location = chi.URLParam(r, "name")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.masterService.UpsertShiftConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift configuration saved successfully", result)
}

// GetShiftConfig implements MasterHandler.
func (h *masterHandlerImpl) GetShiftConfig(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, "Location name is required", nil)
		return
	}

	result, err := h.masterService.GetShiftConfig(r.Context(), actor.CompanyID, name)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListShiftConfigs implements MasterHandler.
func (h *masterHandlerImpl) ListShiftConfigs(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.masterService.ListShiftConfigs(r.Context(), actor.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateOvertime implements MasterHandler.
func (h *masterHandlerImpl) CreateOvertime(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req overtime.CreateAllowedOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateOvertime decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.CompanyID = actor.CompanyID
	req.CreatedBy = actor.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.masterService.CreateOvertime(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Allowed overtime created successfully", result)
}

// ListOvertimes implements MasterHandler.
func (h *masterHandlerImpl) ListOvertimes(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := overtime.ListFilter{
		CompanyID:  actor.CompanyID,
		EmployeeID: getOptionalQueryParam(r, "employee_id"),
	}

	var errs validator.ValidationErrors
	if from, err := parseOptionalDate(r, "from"); err != nil {
		errs = append(errs, *err)
	} else {
		filter.From = from
	}
	if to, err := parseOptionalDate(r, "to"); err != nil {
		errs = append(errs, *err)
	} else {
		filter.To = to
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.masterService.ListOvertimes(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DeleteOvertime implements MasterHandler.
func (h *masterHandlerImpl) DeleteOvertime(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Overtime ID is required", nil)
		return
	}

	if err := h.masterService.DeleteOvertime(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Allowed overtime deleted successfully", nil)
}

func parseOptionalDate(r *http.Request, key string) (*time.Time, *validator.ValidationError) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	parsed, ok := validator.IsValidDate(val)
	if !ok {
		return nil, &validator.ValidationError{Field: key, Message: key + " must be in YYYY-MM-DD format"}
	}
	return &parsed, nil
}
