package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-market.com/task-market/internal/constants"
	model "task-market.com/task-market/internal/models"
	"task-market.com/task-market/internal/testutil"
)

func newOpenTask(t *testing.T, s *Store, requester string) *model.Task {
	t.Helper()
	task := &model.Task{
		ID:          uuid.NewString(),
		Title:       "Move boxes",
		Description: "Two boxes to dorm B",
		Price:       15,
		Status:      constants.TaskOpen,
		RequesterID: requester,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.Tasks.Create(context.Background(), task))
	return task
}

func apply(t *testing.T, s *Store, task *model.Task, applicant string) *model.Application {
	t.Helper()
	ctx := context.Background()
	current, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)

	app := &model.Application{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		ApplicantID: applicant,
		Status:      constants.ApplicationPending,
	}
	require.NoError(t, s.CreateApplication(ctx, app, current.Version))
	return app
}

func TestStore_AcceptApplicationIsAllOrNothing(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	task := newOpenTask(t, s, "requester")
	a1 := apply(t, s, task, "u1")
	a2 := apply(t, s, task, "u2")
	a3 := apply(t, s, task, "u3")

	current, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.ApplicationsCount)

	out, err := s.AcceptApplication(ctx, a2.ID, current.Version)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskInProgress, out.Task.Status)
	assert.Equal(t, "u2", *out.Task.AssigneeID)
	assert.Len(t, out.Rejected, 2)

	stored, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskInProgress, stored.Status)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, "u2", *stored.AssigneeID)

	for id, want := range map[string]constants.ApplicationStatus{
		a1.ID: constants.ApplicationRejected,
		a2.ID: constants.ApplicationAccepted,
		a3.ID: constants.ApplicationRejected,
	} {
		app, err := s.Applications.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, app.Status)
	}
}

func TestStore_AcceptApplicationStaleVersionLeavesNothingBehind(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	task := newOpenTask(t, s, "requester")
	a1 := apply(t, s, task, "u1")
	apply(t, s, task, "u2")

	_, err := s.AcceptApplication(ctx, a1.ID, 1)
	assert.ErrorIs(t, err, ErrOptimisticLock)

	stored, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskOpen, stored.Status)
	assert.Nil(t, stored.AssigneeID)

	pending, err := s.Applications.ListByTaskAndStatus(ctx, task.ID, constants.ApplicationPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestStore_AcceptApplicationRollsBackWhenTargetNotPending(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	task := newOpenTask(t, s, "requester")
	a1 := apply(t, s, task, "u1")
	apply(t, s, task, "u2")
	require.NoError(t, s.Applications.UpdateStatus(ctx, a1, constants.ApplicationPending, constants.ApplicationWithdrawn))

	current, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)

	_, err = s.AcceptApplication(ctx, a1.ID, current.Version)
	assert.ErrorIs(t, err, ErrOptimisticLock)

	stored, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskOpen, stored.Status, "task transition must roll back with the application update")
	assert.Equal(t, current.Version, stored.Version)
}

func TestStore_CreateApplicationRequiresOpenTask(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	task := newOpenTask(t, s, "requester")
	task.Status = constants.TaskCancelled
	require.NoError(t, s.Tasks.Transition(ctx, task, constants.TaskOpen))

	app := &model.Application{ID: uuid.NewString(), TaskID: task.ID, ApplicantID: "u1", Status: constants.ApplicationPending}
	err := s.CreateApplication(ctx, app, task.Version)
	assert.ErrorIs(t, err, ErrOptimisticLock)

	_, err = s.Applications.FindByID(ctx, app.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CreateApplicationDuplicate(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	task := newOpenTask(t, s, "requester")
	apply(t, s, task, "u1")

	current, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	dup := &model.Application{ID: uuid.NewString(), TaskID: task.ID, ApplicantID: "u1", Status: constants.ApplicationPending}
	assert.ErrorIs(t, s.CreateApplication(ctx, dup, current.Version), ErrDuplicate)

	after, err := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.ApplicationsCount)
}

func TestTaskRepository_TransitionRejectsStaleRead(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	task := newOpenTask(t, s, "requester")
	first, _ := s.Tasks.FindByID(ctx, task.ID)
	second, _ := s.Tasks.FindByID(ctx, task.ID)

	first.Status = constants.TaskCancelled
	require.NoError(t, s.Tasks.Transition(ctx, first, constants.TaskOpen))

	second.Status = constants.TaskCancelled
	assert.ErrorIs(t, s.Tasks.Transition(ctx, second, constants.TaskOpen), ErrOptimisticLock)
}

func TestStore_DeleteTaskRemovesChildren(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	task := newOpenTask(t, s, "requester")
	apply(t, s, task, "u1")
	require.NoError(t, s.Messages.Create(ctx, &model.Message{
		ID: uuid.NewString(), TaskID: task.ID, SenderID: "requester", ReadBy: []string{"requester"},
	}))

	current, _ := s.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, s.DeleteTask(ctx, current))

	_, err := s.Tasks.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	apps, _ := s.Applications.ListByTask(ctx, task.ID)
	assert.Empty(t, apps)
	msgs, _ := s.Messages.ListByTask(ctx, task.ID, 50, 0)
	assert.Empty(t, msgs)
}

func TestMessageRepository_MarkReadIsIdempotent(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	msg := &model.Message{ID: uuid.NewString(), TaskID: "t", SenderID: "a", ReadBy: []string{"a"}}
	require.NoError(t, s.Messages.Create(ctx, msg))

	got, err := s.Messages.MarkRead(ctx, msg.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.ReadBy)

	got, err = s.Messages.MarkRead(ctx, msg.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.ReadBy)

	stored, err := s.Messages.FindByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, stored.ReadBy)
}

func TestNotificationRepository_ReadAndDelivery(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	n1 := &model.Notification{ID: uuid.NewString(), RecipientID: "u", TaskID: "t", Type: constants.NotificationNewMessage, Title: "x", Message: "x"}
	n2 := &model.Notification{ID: uuid.NewString(), RecipientID: "u", TaskID: "t", Type: constants.NotificationNewMessage, Title: "y", Message: "y"}
	require.NoError(t, s.Notifications.CreateBatch(ctx, []*model.Notification{n1, n2}))

	unread, err := s.Notifications.UnreadCount(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, s.Notifications.MarkRead(ctx, n1.ID, "u", now))
	require.NoError(t, s.Notifications.MarkRead(ctx, n1.ID, "u", now.Add(time.Hour)))
	got, err := s.Notifications.FindForRecipient(ctx, n1.ID, "u")
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	assert.WithinDuration(t, now, *got.ReadAt, time.Second)

	_, err = s.Notifications.FindForRecipient(ctx, n1.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)

	undelivered, err := s.Notifications.ListUndelivered(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, undelivered, 2)

	require.NoError(t, s.Notifications.MarkDelivered(ctx, []string{n1.ID}, now))
	undelivered, err = s.Notifications.ListUndelivered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, undelivered, 1)
	assert.Equal(t, n2.ID, undelivered[0].ID)

	// Delivery bookkeeping lives outside the notification row.
	require.NoError(t, s.Notifications.MarkDelivered(ctx, []string{n1.ID}, now.Add(time.Hour)))
	again, err := s.Notifications.FindForRecipient(ctx, n1.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, got.ReadAt.Unix(), again.ReadAt.Unix())
	assert.Equal(t, got.IsRead, again.IsRead)

	require.NoError(t, s.Notifications.Delete(ctx, n1.ID, "u"))
	var receipts int64
	require.NoError(t, s.db.Model(&model.NotificationDelivery{}).Count(&receipts).Error)
	assert.Zero(t, receipts)
}

func TestProfileRepository_Counters(t *testing.T) {
	s := NewStore(testutil.NewDB(t))
	ctx := context.Background()

	require.NoError(t, s.Profiles.IncrementCompleted(ctx, "u"))
	require.NoError(t, s.Profiles.IncrementCompleted(ctx, "u"))
	require.NoError(t, s.Profiles.IncrementCreated(ctx, "u"))

	p, err := s.Profiles.FindByID(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, p.CompletedTasks)
	assert.Equal(t, 1, p.CreatedTasks)
}
