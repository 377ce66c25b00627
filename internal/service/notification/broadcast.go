package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
)

type broadcaster struct {
	employees     employee.EmployeeRepository
	notifications notification.Service
}

func NewBroadcaster(employees employee.EmployeeRepository, notifications notification.Service) notification.Broadcaster {
	return &broadcaster{employees: employees, notifications: notifications}
}

// Broadcast resolves the target group to user accounts and queues one
// notification per user. Employees without an account are skipped.
func (b *broadcaster) Broadcast(ctx context.Context, actor user.Actor, req notification.BroadcastRequest) (notification.BroadcastResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.BroadcastResponse{}, err
	}
	if !actor.IsAdmin() {
		return notification.BroadcastResponse{}, user.ErrAdminPrivilegeRequired
	}

	targets, err := b.resolve(ctx, actor.CompanyID, req)
	if err != nil {
		return notification.BroadcastResponse{}, err
	}

	var resp notification.BroadcastResponse
	seen := make(map[string]bool, len(targets))
	var recipients []string
	for _, emp := range targets {
		if emp.UserID == nil {
			resp.Skipped++
			continue
		}
		if seen[*emp.UserID] {
			continue
		}
		seen[*emp.UserID] = true
		recipients = append(recipients, *emp.UserID)
	}
	if len(recipients) == 0 {
		return notification.BroadcastResponse{}, notification.ErrNoRecipients
	}

	var errs []error
	for _, recipient := range recipients {
		err := b.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
			CompanyID:   actor.CompanyID,
			RecipientID: recipient,
			SenderID:    &actor.UserID,
			Type:        notification.TypeBroadcast,
			Title:       req.Title,
			Message:     req.Message,
			Data:        map[string]interface{}{"send_for": string(req.SendFor)},
		})
		if err != nil {
			if ctx.Err() != nil {
				return resp, ctx.Err()
			}
			slog.Error("Broadcast: failed to queue notification", "recipient_id", recipient, "error", err)
			errs = append(errs, err)
			continue
		}
		resp.Queued++
	}

	if resp.Queued == 0 {
		return resp, fmt.Errorf("failed to queue broadcast: %w", errors.Join(errs...))
	}

	slog.Info("Broadcast: queued", "send_for", req.SendFor, "queued", resp.Queued, "skipped", resp.Skipped, "failed", len(errs))
	return resp, nil
}

func (b *broadcaster) resolve(ctx context.Context, companyID string, req notification.BroadcastRequest) ([]employee.Employee, error) {
	switch req.SendFor {
	case notification.BroadcastAllUsers:
		return b.employees.ListActiveByCompany(ctx, companyID)

	case notification.BroadcastLocation:
		atLocation, err := b.employees.ListActiveByLocation(ctx, req.Location)
		if err != nil {
			return nil, err
		}
		var out []employee.Employee
		for _, e := range atLocation {
			if e.CompanyID == companyID {
				out = append(out, e)
			}
		}
		return out, nil

	default:
		out := make([]employee.Employee, 0, len(req.EmployeeIDs))
		for _, id := range req.EmployeeIDs {
			e, err := b.employees.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if e.CompanyID != companyID {
				return nil, employee.ErrEmployeeNotFound
			}
			out = append(out, e)
		}
		return out, nil
	}
}
