package master

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

type MasterService interface {
	// Location shift configuration
	UpsertShiftConfig(ctx context.Context, req location.UpsertShiftConfigRequest) (location.ShiftConfigResponse, error)
	GetShiftConfig(ctx context.Context, companyID, name string) (location.ShiftConfigResponse, error)
	ListShiftConfigs(ctx context.Context, companyID string) ([]location.ShiftConfigResponse, error)

	// Allowed overtime
	CreateOvertime(ctx context.Context, actor user.Actor, req overtime.CreateAllowedOvertimeRequest) (overtime.AllowedOvertimeResponse, error)
	ListOvertimes(ctx context.Context, filter overtime.ListFilter) ([]overtime.AllowedOvertimeResponse, error)
	DeleteOvertime(ctx context.Context, actor user.Actor, id string) error
}

type masterServiceImpl struct {
	shifts     location.ShiftConfigRepository
	overtimes  overtime.AllowedOvertimeRepository
	employees  employee.EmployeeRepository
	leaveTypes leave.LeaveTypeRepository
}

func NewMasterService(
	shifts location.ShiftConfigRepository,
	overtimes overtime.AllowedOvertimeRepository,
	employees employee.EmployeeRepository,
	leaveTypes leave.LeaveTypeRepository,
) MasterService {
	return &masterServiceImpl{
		shifts:     shifts,
		overtimes:  overtimes,
		employees:  employees,
		leaveTypes: leaveTypes,
	}
}

// ==================== LOCATION SHIFT CONFIGURATION ====================

func (s *masterServiceImpl) UpsertShiftConfig(ctx context.Context, req location.UpsertShiftConfigRequest) (location.ShiftConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return location.ShiftConfigResponse{}, err
	}

	if req.LeaveTypeForDeduction != nil {
		if _, err := s.leaveTypes.GetByID(ctx, *req.LeaveTypeForDeduction, req.CompanyID); err != nil {
			if errors.Is(err, leave.ErrLeaveTypeNotFound) {
				return location.ShiftConfigResponse{}, validator.ValidationErrors{{
					Field:   "leave_type_for_deduction",
					Message: "leave type does not exist",
				}}
			}
			return location.ShiftConfigResponse{}, err
		}
	}

	saved, err := s.shifts.Upsert(ctx, req.ToEntity())
	if err != nil {
		return location.ShiftConfigResponse{}, fmt.Errorf("failed to save shift configuration: %w", err)
	}
	slog.Info("Master: shift configuration saved", "company_id", saved.CompanyID, "location", saved.Location)

	return location.NewShiftConfigResponse(saved), nil
}

func (s *masterServiceImpl) GetShiftConfig(ctx context.Context, companyID, name string) (location.ShiftConfigResponse, error) {
	cfg, err := s.shifts.Get(ctx, companyID, name)
	if err != nil {
		return location.ShiftConfigResponse{}, err
	}
	return location.NewShiftConfigResponse(cfg), nil
}

func (s *masterServiceImpl) ListShiftConfigs(ctx context.Context, companyID string) ([]location.ShiftConfigResponse, error) {
	configs, err := s.shifts.List(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]location.ShiftConfigResponse, 0, len(configs))
	for _, c := range configs {
		responses = append(responses, location.NewShiftConfigResponse(c))
	}
	return responses, nil
}

// ==================== ALLOWED OVERTIME ====================

func (s *masterServiceImpl) CreateOvertime(ctx context.Context, actor user.Actor, req overtime.CreateAllowedOvertimeRequest) (overtime.AllowedOvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.AllowedOvertimeResponse{}, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return overtime.AllowedOvertimeResponse{}, err
	}
	if emp.CompanyID != actor.CompanyID {
		return overtime.AllowedOvertimeResponse{}, employee.ErrEmployeeNotFound
	}

	created, err := s.overtimes.Create(ctx, overtime.AllowedOvertime{
		CompanyID:         actor.CompanyID,
		EmployeeID:        emp.ID,
		Date:              req.ParsedDate(),
		OvertimeAllowed:   req.OvertimeAllowed,
		EarlyEntryAllowed: req.EarlyEntryAllowed,
		LateExitAllowed:   req.LateExitAllowed,
		CreatedBy:         actor.UserID,
	})
	if err != nil {
		if errors.Is(err, overtime.ErrOvertimeExists) {
			return overtime.AllowedOvertimeResponse{}, fmt.Errorf("%w for %s on %s", overtime.ErrOvertimeExists, emp.FullName, req.Date)
		}
		return overtime.AllowedOvertimeResponse{}, fmt.Errorf("failed to create allowed overtime: %w", err)
	}

	return overtime.NewAllowedOvertimeResponse(created), nil
}

func (s *masterServiceImpl) ListOvertimes(ctx context.Context, filter overtime.ListFilter) ([]overtime.AllowedOvertimeResponse, error) {
	if validator.IsEmpty(filter.CompanyID) {
		return nil, validator.ValidationErrors{{Field: "company_id", Message: "company_id is required"}}
	}

	entries, err := s.overtimes.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]overtime.AllowedOvertimeResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, overtime.NewAllowedOvertimeResponse(e))
	}
	return responses, nil
}

func (s *masterServiceImpl) DeleteOvertime(ctx context.Context, actor user.Actor, id string) error {
	return s.overtimes.Delete(ctx, id, actor.CompanyID)
}
