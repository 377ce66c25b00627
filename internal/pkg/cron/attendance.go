package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
)

// AttendanceSchedule selects the local hour each job acts in.
type AttendanceSchedule struct {
	Location         *time.Location
	DailyRunHour     int
	MonthlyRunHour   int
	AutoCheckoutHour int
}

// AttendanceJobs ticks hourly and acts once per day (or month) at the configured hour.
type AttendanceJobs struct {
	processor  attendance.Processor
	deductions attendance.DeductionService
	checkins   checkin.CheckinService
	schedule   AttendanceSchedule
	now        func() time.Time

	mu      sync.Mutex
	lastRun map[string]string
}

func NewAttendanceJobs(
	processor attendance.Processor,
	deductions attendance.DeductionService,
	checkins checkin.CheckinService,
	schedule AttendanceSchedule,
) *AttendanceJobs {
	if schedule.Location == nil {
		schedule.Location = time.UTC
	}
	return &AttendanceJobs{
		processor:  processor,
		deductions: deductions,
		checkins:   checkins,
		schedule:   schedule,
		now:        time.Now,
		lastRun:    make(map[string]string),
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("daily_attendance", time.Hour, j.DailyAttendance)
	scheduler.AddJob("monthly_late_deduction", time.Hour, j.MonthlyLateDeduction)
	scheduler.AddJob("auto_checkout", time.Hour, j.AutoCheckout)
}

// due reports whether job should act now and marks the period as run.
func (j *AttendanceJobs) due(job string, hour int, period string) bool {
	now := j.now().In(j.schedule.Location)
	if now.Hour() != hour {
		return false
	}
	key := now.Format(period)

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastRun[job] == key {
		return false
	}
	j.lastRun[job] = key
	return true
}

func (j *AttendanceJobs) DailyAttendance(ctx context.Context) error {
	if !j.due("daily_attendance", j.schedule.DailyRunHour, "2006-01-02") {
		return nil
	}
	slog.Info("Cron: Starting daily attendance job")
	return j.processor.RunDaily(ctx)
}

func (j *AttendanceJobs) MonthlyLateDeduction(ctx context.Context) error {
	if j.now().In(j.schedule.Location).Day() != 1 {
		return nil
	}
	if !j.due("monthly_late_deduction", j.schedule.MonthlyRunHour, "2006-01") {
		return nil
	}
	slog.Info("Cron: Starting monthly late deduction job")
	return j.deductions.RunMonthly(ctx)
}

func (j *AttendanceJobs) AutoCheckout(ctx context.Context) error {
	if !j.due("auto_checkout", j.schedule.AutoCheckoutHour, "2006-01-02") {
		return nil
	}
	count, err := j.checkins.AutoCheckout(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cron: auto checkout completed", "checked_out", count)
	return nil
}
