package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleEmployee, PermissionCheckinCreate, true},
		{RoleEmployee, PermissionCheckinApprove, false},
		{RoleManager, PermissionCheckinApprove, true},
		{RoleManager, PermissionSyncManage, false},
		{RoleAdmin, PermissionSyncManage, true},
		{RoleAdmin, PermissionLeaveCreate, true},
		{RoleEmployee, PermissionExpenseCreate, true},
		{RoleManager, PermissionExpenseApprove, true},
		{RoleManager, PermissionExpensePost, false},
		{RoleAdmin, PermissionExpensePost, true},
		{RoleManager, PermissionNotificationBroadcast, false},
		{RoleAdmin, PermissionNotificationBroadcast, true},
		{Role("unknown"), PermissionLeaveCreate, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.permission), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestActor_Roles(t *testing.T) {
	assert.True(t, Actor{Role: RoleAdmin}.IsManager())
	assert.True(t, Actor{Role: RoleManager}.IsManager())
	assert.False(t, Actor{Role: RoleManager}.IsAdmin())
	assert.False(t, Actor{Role: RoleEmployee}.IsManager())
	assert.True(t, SystemActor("c1").IsAdmin())
}
