package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	GetMy(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Process(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// GetMy implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := attendance.MyAttendanceFilter{
		From:  getOptionalQueryParam(r, "from"),
		To:    getOptionalQueryParam(r, "to"),
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 20),
	}

	result, err := h.attendanceService.GetMyAttendance(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := attendance.AttendanceFilter{
		EmployeeID: getOptionalQueryParam(r, "employee_id"),
		Status:     getOptionalQueryParam(r, "status"),
		From:       getOptionalQueryParam(r, "from"),
		To:         getOptionalQueryParam(r, "to"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Process implements AttendanceHandler.
func (h *attendanceHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req attendance.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Process attendance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Process(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance processed successfully", result)
}
