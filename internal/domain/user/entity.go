package user

type Role string

const (
	RoleAdmin    Role = "admin"    // HR administrator - full access
	RoleManager  Role = "manager"  // Can approve check-ins, leave and overtime
	RoleEmployee Role = "employee" // Regular employee
)

// Actor is the authenticated caller, passed explicitly into services.
type Actor struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       Role
}

// IsAdmin checks if the actor is an HR administrator
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsManager checks if the actor is a manager or admin
func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}

// SystemActor is used by scheduled jobs.
func SystemActor(companyID string) Actor {
	return Actor{UserID: "system", CompanyID: companyID, Role: RoleAdmin}
}
