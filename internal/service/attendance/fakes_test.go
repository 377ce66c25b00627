package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEmployees struct {
	byID map[string]employee.Employee
}

func newFakeEmployees(emps ...employee.Employee) *fakeEmployees {
	f := &fakeEmployees{byID: make(map[string]employee.Employee)}
	for _, e := range emps {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployees) GetByCode(_ context.Context, code string, companyID string) (employee.Employee, error) {
	for _, e := range f.byID {
		if e.EmployeeCode == code && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployees) GetByUserID(_ context.Context, userID string) (employee.Employee, error) {
	for _, e := range f.byID {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployees) ListActiveByCompany(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.byID {
		if e.CompanyID == companyID && e.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (f *fakeEmployees) ListActiveByLocation(_ context.Context, loc string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.byID {
		if e.Location == loc && e.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) ListCompanyIDs(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, e := range f.byID {
		if !seen[e.CompanyID] {
			seen[e.CompanyID] = true
			out = append(out, e.CompanyID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeCheckins struct {
	checkin.CheckinRepository
	events  map[string][]checkin.Checkin
	failFor map[string]bool
}

func newFakeCheckins() *fakeCheckins {
	return &fakeCheckins{events: make(map[string][]checkin.Checkin), failFor: make(map[string]bool)}
}

func (f *fakeCheckins) add(employeeID string, c checkin.Checkin) {
	c.EmployeeID = employeeID
	f.events[employeeID] = append(f.events[employeeID], c)
}

func (f *fakeCheckins) ListForDay(_ context.Context, employeeID string, date time.Time) ([]checkin.Checkin, error) {
	if f.failFor[employeeID] {
		return nil, errors.New("connection reset")
	}
	var out []checkin.Checkin
	for _, c := range f.events[employeeID] {
		if timeutil.SameDay(c.Time, date) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

type fakeAttendances struct {
	mu      sync.Mutex
	records []attendance.Attendance
	seq     int
}

func (f *fakeAttendances) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.EmployeeID == a.EmployeeID && timeutil.SameDay(r.Date, a.Date) && r.DocStatus != attendance.DocStatusCancelled {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
	}
	f.seq++
	a.ID = fmt.Sprintf("att-%d", f.seq)
	f.records = append(f.records, a)
	return a, nil
}

func (f *fakeAttendances) GetActive(_ context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.EmployeeID == employeeID && timeutil.SameDay(r.Date, date) && r.DocStatus != attendance.DocStatusCancelled {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendances) Cancel(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id && f.records[i].DocStatus != attendance.DocStatusCancelled {
			f.records[i].DocStatus = attendance.DocStatusCancelled
			f.records[i].CancelledAt = &at
			return nil
		}
	}
	return attendance.ErrNotCancellable
}

func (f *fakeAttendances) CountLateMarks(_ context.Context, employeeID string, from, to time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.EmployeeID != employeeID || !r.IsLateMark() {
			continue
		}
		if r.Date.Before(timeutil.DateOf(from)) || r.Date.After(timeutil.DateOf(to)) {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeAttendances) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, r := range f.records {
		if r.CompanyID != filter.CompanyID || r.DocStatus == attendance.DocStatusCancelled {
			continue
		}
		if filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendances) active(employeeID string) []attendance.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, r := range f.records {
		if r.EmployeeID == employeeID && r.DocStatus != attendance.DocStatusCancelled {
			out = append(out, r)
		}
	}
	return out
}

type fakeShifts struct {
	configs map[string]location.ShiftConfig
}

func newFakeShifts(cfgs ...location.ShiftConfig) *fakeShifts {
	f := &fakeShifts{configs: make(map[string]location.ShiftConfig)}
	for _, c := range cfgs {
		f.configs[c.CompanyID+"|"+c.Location] = c
	}
	return f
}

func (f *fakeShifts) Get(_ context.Context, companyID string, loc string) (location.ShiftConfig, error) {
	c, ok := f.configs[companyID+"|"+loc]
	if !ok {
		return location.ShiftConfig{}, location.ErrShiftConfigNotFound
	}
	return c, nil
}

func (f *fakeShifts) Upsert(_ context.Context, cfg location.ShiftConfig) (location.ShiftConfig, error) {
	f.configs[cfg.CompanyID+"|"+cfg.Location] = cfg
	return cfg, nil
}

func (f *fakeShifts) List(_ context.Context, companyID string) ([]location.ShiftConfig, error) {
	var out []location.ShiftConfig
	for _, c := range f.configs {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeOvertimes struct {
	overtime.AllowedOvertimeRepository
	entries []overtime.AllowedOvertime
}

func (f *fakeOvertimes) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*overtime.AllowedOvertime, error) {
	for _, e := range f.entries {
		if e.EmployeeID == employeeID && timeutil.SameDay(e.Date, date) {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

type fakeHolidays struct {
	days      map[string]bool
	companies map[string]bool
}

func (f *fakeHolidays) IsHolidayForEmployee(_ context.Context, emp employee.Employee, date time.Time) (bool, error) {
	return f.days[date.Format("2006-01-02")], nil
}

func (f *fakeHolidays) IsCompanyHoliday(_ context.Context, companyID string, date time.Time) (bool, error) {
	return f.companies[companyID+"|"+date.Format("2006-01-02")], nil
}

type fakeRuns struct {
	runs []attendance.ProcessingRun
}

func (f *fakeRuns) Create(_ context.Context, run attendance.ProcessingRun) (attendance.ProcessingRun, error) {
	run.ID = fmt.Sprintf("run-%d", len(f.runs)+1)
	f.runs = append(f.runs, run)
	return run, nil
}

func (f *fakeRuns) Finish(_ context.Context, run attendance.ProcessingRun) error {
	for i := range f.runs {
		if f.runs[i].ID == run.ID {
			f.runs[i] = run
			return nil
		}
	}
	return attendance.ErrRunNotFound
}

func (f *fakeRuns) GetCompleted(_ context.Context, companyID string, date time.Time, employeeID *string) (*attendance.ProcessingRun, error) {
	for _, r := range f.runs {
		if r.CompanyID != companyID || r.Status != attendance.RunStatusCompleted || !timeutil.SameDay(r.Date, date) {
			continue
		}
		if (employeeID == nil) != (r.EmployeeID == nil) {
			continue
		}
		if employeeID != nil && *employeeID != *r.EmployeeID {
			continue
		}
		r := r
		return &r, nil
	}
	return nil, nil
}

type fakeLeaves struct {
	leave.LeaveService
	requests []leave.AutoDeductionRequest
	existing map[string]bool
}

func (f *fakeLeaves) CreateAutoDeduction(_ context.Context, req leave.AutoDeductionRequest) (*leave.LeaveApplication, error) {
	key := req.EmployeeID + "|" + req.Date.Format("2006-01-02") + "|" + req.LeaveTypeID
	if f.existing[key] {
		return nil, nil
	}
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[key] = true
	f.requests = append(f.requests, req)
	return &leave.LeaveApplication{ID: "leave-" + req.EmployeeID, EmployeeID: req.EmployeeID, TotalDays: req.Days}, nil
}
