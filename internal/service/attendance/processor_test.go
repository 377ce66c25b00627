package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompany = "company-1"

type processorFixture struct {
	employees   *fakeEmployees
	checkins    *fakeCheckins
	attendances *fakeAttendances
	shifts      *fakeShifts
	overtimes   *fakeOvertimes
	holidays    *fakeHolidays
	processor   *ProcessorImpl
}

func newProcessorFixture(emps ...employee.Employee) *processorFixture {
	return newProcessorFixtureIn(time.UTC, emps...)
}

func newProcessorFixtureIn(loc *time.Location, emps ...employee.Employee) *processorFixture {
	f := &processorFixture{
		employees:   newFakeEmployees(emps...),
		checkins:    newFakeCheckins(),
		attendances: &fakeAttendances{},
		shifts:      newFakeShifts(headOfficeConfig()),
		overtimes:   &fakeOvertimes{},
		holidays:    &fakeHolidays{days: map[string]bool{}, companies: map[string]bool{}},
	}
	f.processor = NewProcessor(passthroughTx{}, f.employees, f.checkins, f.attendances, f.shifts, f.overtimes, f.holidays, Options{
		DriverLocations: []string{"Noida"},
		Concurrency:     4,
		Location:        loc,
	})
	return f
}

func headOfficeConfig() location.ShiftConfig {
	return location.ShiftConfig{
		CompanyID:               testCompany,
		Location:                "Head Office",
		ShiftStart:              tod(9, 0),
		ShiftEnd:                tod(18, 0),
		LateArrivalThreshold:    tod(9, 15),
		TreatLateAsHalfDayAfter: 5,
	}
}

func staff(id string, staffType employee.StaffType, loc string) employee.Employee {
	return employee.Employee{
		ID:               id,
		CompanyID:        testCompany,
		EmployeeCode:     id,
		FullName:         "Test " + id,
		StaffType:        staffType,
		Location:         loc,
		EmploymentStatus: employee.EmploymentStatusActive,
	}
}

func adminContext(date time.Time) attendance.ProcessContext {
	return attendance.ProcessContext{
		Actor: user.Actor{UserID: "user-admin", CompanyID: testCompany, Role: user.RoleAdmin},
		Date:  date,
	}
}

func TestProcessor_NoEventsIsAbsent(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeAbsent, decision.Outcome)
	assert.Equal(t, attendance.StatusAbsent, decision.Status)
	assert.Equal(t, "No check-in and check-out records", decision.Remarks)

	records := f.attendances.active("emp-1")
	require.Len(t, records, 1)
	assert.Equal(t, attendance.StatusAbsent, records[0].Status)
	assert.Equal(t, attendance.DocStatusSubmitted, records[0].DocStatus)
	assert.Equal(t, "user-admin", records[0].ProcessedBy)
}

func TestProcessor_PendingApprovalIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(
		staff("emp-1", employee.StaffTypeEmployee, "Head Office"),
		staff("emp-2", employee.StaffTypeWorker, employee.LocationSite),
	)
	for _, id := range []string{"emp-1", "emp-2"} {
		pending := event(checkin.LogTypeIn, at(9, 0))
		pending.ApprovalRequired = true
		f.checkins.add(id, pending)
		f.checkins.add(id, event(checkin.LogTypeOut, at(18, 0)))
	}

	for _, id := range []string{"emp-1", "emp-2"} {
		decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), id)

		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeSkipped, decision.Outcome)
		assert.Empty(t, f.attendances.active(id))
	}
}

func TestProcessor_RejectedEventsAreIgnored(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	rejected := event(checkin.LogTypeIn, at(9, 0))
	rejected.ApprovalRequired = true
	rejected.Rejected = true
	f.checkins.add("emp-1", rejected)

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, decision.Status)
}

func TestProcessor_LateArrival(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 20)))
	f.checkins.add("emp-1", event(checkin.LogTypeOut, at(18, 0)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeProcessed, decision.Outcome)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.True(t, decision.LateEntry)
	assert.Contains(t, decision.Remarks, "Late arrival after 09:15:00")
	assert.Equal(t, "8.6667", decision.WorkingHours.String())
}

func TestProcessor_ThresholdsUseConfiguredZone(t *testing.T) {
	ctx := context.Background()
	ist := time.FixedZone("IST", 5*60*60+30*60)
	f := newProcessorFixtureIn(ist, staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	// 09:20 and 18:00 IST, decoded in UTC the way the database returns them
	f.checkins.add("emp-1", event(checkin.LogTypeIn, time.Date(2026, 3, 10, 3, 50, 0, 0, time.UTC)))
	f.checkins.add("emp-1", event(checkin.LogTypeOut, time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(time.Date(2026, 3, 10, 0, 0, 0, 0, ist)), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.True(t, decision.LateEntry)
	assert.False(t, decision.EarlyExit)
	assert.Contains(t, decision.Remarks, "Late arrival after 09:15:00")
	assert.Equal(t, "8.6667", decision.WorkingHours.String())
}

func TestProcessor_DriverDefaultCheckOutUsesConfiguredZone(t *testing.T) {
	ctx := context.Background()
	ist := time.FixedZone("IST", 5*60*60+30*60)
	f := newProcessorFixtureIn(ist, staff("emp-1", employee.StaffTypeDriver, "Noida"))
	// 08:00 IST
	f.checkins.add("emp-1", event(checkin.LogTypeIn, time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(time.Date(2026, 3, 10, 0, 0, 0, 0, ist)), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.Equal(t, "9.5", decision.WorkingHours.String())
}

func TestProcessor_EscalatesAfterFiveLateMarks(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	for day := 2; day <= 6; day++ {
		_, err := f.attendances.Create(ctx, attendance.Attendance{
			CompanyID:  testCompany,
			EmployeeID: "emp-1",
			Date:       time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
			Status:     attendance.StatusPresent,
			LateEntry:  true,
			DocStatus:  attendance.DocStatusSubmitted,
		})
		require.NoError(t, err)
	}
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 20)))
	f.checkins.add("emp-1", event(checkin.LogTypeOut, at(18, 0)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusHalfDay, decision.Status)
	assert.False(t, decision.LateEntry)
	assert.Contains(t, decision.Remarks, "exceeded 5 late marks")
}

func TestProcessor_LateMarksFromPreviousMonthDoNotCount(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	for day := 20; day <= 26; day++ {
		_, err := f.attendances.Create(ctx, attendance.Attendance{
			CompanyID:  testCompany,
			EmployeeID: "emp-1",
			Date:       time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC),
			LateEntry:  true,
			DocStatus:  attendance.DocStatusSubmitted,
		})
		require.NoError(t, err)
	}
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 20)))
	f.checkins.add("emp-1", event(checkin.LogTypeOut, at(18, 0)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.True(t, decision.LateEntry)
}

func TestProcessor_ReprocessingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 20)))
	f.checkins.add("emp-1", event(checkin.LogTypeOut, at(17, 0)))

	first, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")
	require.NoError(t, err)
	second, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.LateEntry, second.LateEntry)
	assert.Equal(t, first.EarlyExit, second.EarlyExit)
	assert.True(t, first.WorkingHours.Equal(second.WorkingHours))

	assert.Len(t, f.attendances.active("emp-1"), 1)
	assert.Len(t, f.attendances.records, 2)
	assert.Equal(t, attendance.DocStatusCancelled, f.attendances.records[0].DocStatus)
}

func TestProcessor_SkipKeepsNoRecordAfterCancel(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 0)))

	_, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")
	require.NoError(t, err)
	require.Len(t, f.attendances.active("emp-1"), 1)

	pending := event(checkin.LogTypeOut, at(18, 0))
	pending.ApprovalRequired = true
	f.checkins.add("emp-1", pending)

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeSkipped, decision.Outcome)
	assert.Empty(t, f.attendances.active("emp-1"))
}

func TestProcessor_LeaveLinkedRecordIsKept(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	leaveID := "leave-1"
	_, err := f.attendances.Create(ctx, attendance.Attendance{
		CompanyID:          testCompany,
		EmployeeID:         "emp-1",
		Date:               testDay,
		Status:             attendance.StatusOnLeave,
		LeaveApplicationID: &leaveID,
		DocStatus:          attendance.DocStatusSubmitted,
	})
	require.NoError(t, err)

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeSkipped, decision.Outcome)
	records := f.attendances.active("emp-1")
	require.Len(t, records, 1)
	assert.Equal(t, attendance.StatusOnLeave, records[0].Status)
}

func TestProcessor_WorkerAtSiteWithOnlyCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeWorker, employee.LocationSite))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(14, 30)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.True(t, decision.WorkingHours.IsZero())
}

func TestProcessor_WorkerOnHoliday(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeWorker, "Warehouse"))
	f.holidays.days[testDay.Format("2006-01-02")] = true
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 0)))
	f.checkins.add("emp-1", event(checkin.LogTypeOut, at(17, 0)))

	skipped, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeSkipped, skipped.Outcome)

	f.overtimes.entries = append(f.overtimes.entries, overtime.AllowedOvertime{EmployeeID: "emp-1", Date: testDay, OvertimeAllowed: true})

	worked, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, worked.Status)
	assert.Equal(t, "8", worked.WorkingHours.String())
	assert.Equal(t, "Worker attendance - 8 hours", worked.Remarks)
}

func TestProcessor_WorkerCheckInOnlyIsAbsent(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeWorker, "Warehouse"))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 0)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, decision.Status)
	assert.Equal(t, "Worker - Check-in only, no check-out recorded", decision.Remarks)
}

func TestProcessor_DriverDefaultsCheckOut(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeDriver, "Noida"))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(8, 0)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.Equal(t, "9.5", decision.WorkingHours.String())
}

func TestProcessor_DriverElsewhereUsesShiftRules(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeDriver, "Head Office"))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(8, 0)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, decision.Status)
	assert.Equal(t, "Missing check-in or check-out (Non-Worker)", decision.Remarks)
}

func TestProcessor_NoCheckInRequired(t *testing.T) {
	ctx := context.Background()
	emp := staff("emp-1", employee.StaffTypeEmployee, "Head Office")
	emp.NoCheckIn = true
	f := newProcessorFixture(emp)

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.Equal(t, "Auto marked present (No check-in required)", decision.Remarks)
}

func TestProcessor_EmployeeWithoutLocationFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, ""))
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 40)))

	decision, err := f.processor.ProcessEmployeeDay(ctx, adminContext(testDay), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, decision.Status)
	assert.True(t, decision.EarlyExit)
	assert.Equal(t, "Missing check-out", decision.Remarks)
}

func TestProcessor_OtherCompanyEmployeeIsHidden(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	pc := adminContext(testDay)
	pc.Actor.CompanyID = "company-2"

	_, err := f.processor.ProcessEmployeeDay(ctx, pc, "emp-1")

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.Empty(t, f.attendances.records)
}

func TestProcessor_ProcessCompanyIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(
		staff("emp-1", employee.StaffTypeEmployee, "Head Office"),
		staff("emp-2", employee.StaffTypeEmployee, "Head Office"),
		staff("emp-3", employee.StaffTypeWorker, employee.LocationSite),
	)
	f.checkins.add("emp-1", event(checkin.LogTypeIn, at(9, 0)))
	f.checkins.add("emp-1", event(checkin.LogTypeOut, at(18, 0)))
	f.checkins.failFor["emp-2"] = true

	result, err := f.processor.ProcessCompany(ctx, adminContext(testDay))

	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", result.Date)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Absent)
	assert.Equal(t, 1, result.Errors)
	assert.Len(t, result.Log, 3)
}

func TestProcessor_RunDailySkipsCompanyHoliday(t *testing.T) {
	ctx := context.Background()
	other := staff("emp-9", employee.StaffTypeEmployee, "Head Office")
	other.CompanyID = "company-2"
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"), other)
	f.processor.now = func() time.Time { return time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC) }
	f.holidays.companies["company-2|2026-03-10"] = true

	err := f.processor.RunDaily(ctx)

	require.NoError(t, err)
	records := f.attendances.active("emp-1")
	require.Len(t, records, 1)
	assert.Equal(t, testDay, records[0].Date)
	assert.Equal(t, "system", records[0].ProcessedBy)
	assert.Empty(t, f.attendances.active("emp-9"))
}
