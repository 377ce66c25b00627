package postgresql_test

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_BatchAndPreferences(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewNotificationRepository(db)
	ctx := t.Context()
	userID := "0199a1b2-0000-7000-8000-0000000000aa"

	enabled, err := repo.IsNotificationEnabled(ctx, userID, notification.TypeLeaveApproved)
	require.NoError(t, err)
	assert.True(t, enabled, "types without a stored preference are enabled")

	batch := []*notification.Notification{
		{RecipientID: userID, Type: notification.TypeLeaveApproved, Title: "Leave approved", Message: "ok", CreatedAt: time.Now()},
		{RecipientID: userID, Type: notification.TypeSyncFailed, Title: "Sync failed", Message: "peer down", CreatedAt: time.Now()},
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	list, total, err := repo.GetByUserID(ctx, userID, 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)

	require.NoError(t, repo.MarkAsRead(ctx, []string{batch[0].ID}, userID))
	unread, err := repo.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, repo.UpsertPreference(ctx, &notification.NotificationPreference{
		UserID: userID, NotificationType: notification.TypeSyncFailed, PushEnabled: false,
	}))
	enabled, err = repo.IsNotificationEnabled(ctx, userID, notification.TypeSyncFailed)
	require.NoError(t, err)
	assert.False(t, enabled)
}
