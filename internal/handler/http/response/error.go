package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// User / auth errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrCompanyIDRequired), errors.Is(err, user.ErrEmployeeIDRequired):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrNoManager):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound), errors.Is(err, attendance.ErrRunNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceExists),
		errors.Is(err, attendance.ErrRunAlreadyComplete),
		errors.Is(err, attendance.ErrNotCancellable):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrFutureDate):
		BadRequest(w, err.Error(), nil)

	// Check-in domain errors
	case errors.Is(err, checkin.ErrCheckinNotFound):
		NotFound(w, "Check-in not found")
	case errors.Is(err, checkin.ErrDuplicateCheckin), errors.Is(err, checkin.ErrAlreadyDecided):
		Conflict(w, err.Error())
	case errors.Is(err, checkin.ErrNotApprover):
		Forbidden(w, err.Error())
	case errors.Is(err, checkin.ErrOnLeaveToday),
		errors.Is(err, checkin.ErrApprovalNotNeeded),
		errors.Is(err, checkin.ErrInvalidLogType),
		errors.Is(err, checkin.ErrCheckinInTheFuture):
		BadRequest(w, err.Error(), nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveApplicationNotFound), errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, leave.ErrAlreadyProcessed), errors.Is(err, leave.ErrOverlappingApplication):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrNotApprover):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrNoAllocation),
		errors.Is(err, leave.ErrHalfDayNotAllowed):
		BadRequest(w, err.Error(), nil)

	// Expense domain errors
	case errors.Is(err, expense.ErrExpenseNotFound),
		errors.Is(err, expense.ErrExpenseTypeNotFound),
		errors.Is(err, expense.ErrInvoiceNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "Invoice file not found")
	case errors.Is(err, expense.ErrAlreadyApproved), errors.Is(err, expense.ErrAlreadyProcessed):
		Conflict(w, err.Error())
	case errors.Is(err, expense.ErrNotApprover), errors.Is(err, expense.ErrNotPermittedToViewExpense):
		Forbidden(w, err.Error())
	case errors.Is(err, expense.ErrNotApproved),
		errors.Is(err, expense.ErrAmountApprovedRequired),
		errors.Is(err, expense.ErrExpenseAccountNotSet),
		errors.Is(err, expense.ErrPayableAccountNotSet),
		errors.Is(err, expense.ErrInvoiceTypeNotAllowed),
		errors.Is(err, expense.ErrExpenseDateInTheFuture):
		BadRequest(w, err.Error(), nil)

	// Master data errors
	case errors.Is(err, location.ErrShiftConfigNotFound), errors.Is(err, overtime.ErrOvertimeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, location.ErrInvalidShiftWindow):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, overtime.ErrOvertimeExists):
		Conflict(w, err.Error())

	// Notification errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, notification.ErrInvalidNotificationType), errors.Is(err, notification.ErrNoRecipients):
		BadRequest(w, err.Error(), nil)

	// ERP sync errors
	case errors.Is(err, erpsync.ErrInvalidAPIKey):
		Unauthorized(w, err.Error())
	case errors.Is(err, erpsync.ErrPeerDisabled):
		Forbidden(w, err.Error())
	case errors.Is(err, erpsync.ErrPeerNotFound),
		errors.Is(err, erpsync.ErrQueueItemNotFound),
		errors.Is(err, erpsync.ErrLeaderNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, erpsync.ErrPeerNameExists),
		errors.Is(err, erpsync.ErrNotClaimable),
		errors.Is(err, erpsync.ErrRetryNotAllowed),
		errors.Is(err, erpsync.ErrPullAlreadyInProgress):
		Conflict(w, err.Error())
	case errors.Is(err, erpsync.ErrUnknownDocType), errors.Is(err, erpsync.ErrInvalidPayload):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, erpsync.ErrRemoteRejected):
		writeJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   &ErrorDetail{Code: "BAD_GATEWAY", Message: err.Error()},
		})

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
