package user

type Permission string

const (
	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceProcess Permission = "attendance.process"

	// Check-ins
	PermissionCheckinCreate  Permission = "checkin.create"
	PermissionCheckinApprove Permission = "checkin.approve"

	// Leave
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveApprove Permission = "leave.approve"

	// Expenses
	PermissionExpenseCreate  Permission = "expense.create"
	PermissionExpenseApprove Permission = "expense.approve"
	PermissionExpensePost    Permission = "expense.post"

	// Notifications
	PermissionNotificationBroadcast Permission = "notification.broadcast"

	// Master data
	PermissionOvertimeManage Permission = "overtime.manage"
	PermissionLocationManage Permission = "location.manage"

	// ERP sync
	PermissionSyncManage Permission = "sync.manage"
)

var employeePermissions = []Permission{
	PermissionAttendanceViewOwn,
	PermissionCheckinCreate,
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
	PermissionExpenseCreate,
}

var managerPermissions = append(append([]Permission{}, employeePermissions...),
	PermissionAttendanceViewAll,
	PermissionCheckinApprove,
	PermissionLeaveApprove,
	PermissionExpenseApprove,
	PermissionOvertimeManage,
)

var adminPermissions = append(append([]Permission{}, managerPermissions...),
	PermissionAttendanceProcess,
	PermissionLocationManage,
	PermissionSyncManage,
	PermissionExpensePost,
	PermissionNotificationBroadcast,
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin:    adminPermissions,
	RoleManager:  managerPermissions,
	RoleEmployee: employeePermissions,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
