package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
	now          func() time.Time
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService, now: time.Now}
}

// Apply implements LeaveHandler.
func (h *leaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req leave.ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Apply leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.Apply(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave application submitted successfully", result)
}

// ListMy implements LeaveHandler.
func (h *leaveHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var filter leave.MyLeaveFilter
	if status := r.URL.Query().Get("status"); status != "" {
		s := leave.ApplicationStatus(status)
		filter.Status = &s
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid year", map[string]string{"year": "year must be a number"})
			return
		}
		filter.Year = &year
	}

	result, err := h.leaveService.ListMy(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve implements LeaveHandler.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.leaveService.Approve, "Leave application approved successfully")
}

// Reject implements LeaveHandler.
func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.leaveService.Reject, "Leave application rejected successfully")
}

// Cancel implements LeaveHandler.
func (h *leaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.leaveService.Cancel, "Leave application cancelled successfully")
}

type leaveDecision func(ctx context.Context, actor user.Actor, id string) (leave.LeaveApplicationResponse, error)

func (h *leaveHandlerImpl) decide(w http.ResponseWriter, r *http.Request, fn leaveDecision, message string) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave application ID is required", nil)
		return
	}

	result, err := fn(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// GetBalance implements LeaveHandler. Managers may pass employee_id to
// look up someone else's balance.
func (h *leaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var errs validator.ValidationErrors

	leaveTypeID := r.URL.Query().Get("leave_type_id")
	if validator.IsEmpty(leaveTypeID) {
		errs = append(errs, validator.ValidationError{Field: "leave_type_id", Message: "leave_type_id is required"})
	}

	asOf := h.now()
	if asOfStr := r.URL.Query().Get("as_of"); asOfStr != "" {
		parsed, valid := validator.IsValidDate(asOfStr)
		if !valid {
			errs = append(errs, validator.ValidationError{Field: "as_of", Message: "as_of must be in YYYY-MM-DD format"})
		}
		asOf = parsed
	}

	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	employeeID := actor.EmployeeID
	if requested := r.URL.Query().Get("employee_id"); requested != "" && requested != actor.EmployeeID {
		if !actor.IsManager() {
			response.HandleError(w, user.ErrInsufficientPermissions)
			return
		}
		employeeID = requested
	}
	if employeeID == "" {
		response.HandleError(w, user.ErrEmployeeIDRequired)
		return
	}

	balance, err := h.leaveService.GetBalance(r.Context(), employeeID, leaveTypeID, asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.BalanceResponse{
		EmployeeID:  employeeID,
		LeaveTypeID: leaveTypeID,
		AsOf:        asOf.Format("2006-01-02"),
		Balance:     balance.StringFixed(1),
	})
}
