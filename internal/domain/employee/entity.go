package employee

import "time"

// StaffType selects the attendance policy an employee is evaluated under.
type StaffType string

const (
	StaffTypeEmployee StaffType = "Employee"
	StaffTypeWorker   StaffType = "Worker"
	StaffTypeDriver   StaffType = "Driver"
)

// LocationSite is the work location evaluated by presence only.
const LocationSite = "Site"

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

type Employee struct {
	ID               string
	CompanyID        string
	UserID           *string
	EmployeeCode     string
	FullName         string
	StaffType        StaffType
	Location         string
	HolidayListID    *string
	ReportsTo        *string
	NoCheckIn        bool
	IsTeamLeader     bool
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (e Employee) IsWorker() bool {
	return e.StaffType == StaffTypeWorker
}

func (e Employee) IsDriver() bool {
	return e.StaffType == StaffTypeDriver
}

// AtSite reports whether the employee works at the Site location.
func (e Employee) AtSite() bool {
	return e.Location == LocationSite
}
