package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-market.com/task-market/internal/constants"
	apperrors "task-market.com/task-market/internal/errors"
)

func TestMessages_OnlyParticipants(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	task := h.inProgressTask(t)

	_, err := h.svc.Messages.Post(ctx, stranger, task.ID, MessageInput{Content: "hi"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	_, err = h.svc.Messages.List(ctx, stranger, task.ID, 0, 0)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	msg, err := h.svc.Messages.Post(ctx, requester, task.ID, MessageInput{Content: " when can you come? "})
	require.NoError(t, err)
	assert.Equal(t, "when can you come?", *msg.Content)
	assert.Equal(t, []string{requester.ID}, msg.ReadBy)

	_, err = h.svc.Messages.Post(ctx, admin, task.ID, MessageInput{Content: "moderator here"})
	require.NoError(t, err)

	notes := h.notificationsOf(t, task.ID, constants.NotificationNewMessage)
	recipients := []string{}
	for _, n := range notes {
		recipients = append(recipients, n.RecipientID)
	}
	assert.ElementsMatch(t, []string{worker1.ID, requester.ID, worker1.ID}, recipients)
}

func TestMessages_ListMarksRead(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	task := h.inProgressTask(t)

	msg, err := h.svc.Messages.Post(ctx, requester, task.ID, MessageInput{Content: "hello"})
	require.NoError(t, err)

	msgs, err := h.svc.Messages.List(ctx, worker1, task.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.ElementsMatch(t, []string{requester.ID, worker1.ID}, msgs[0].ReadBy)

	again, err := h.svc.Messages.MarkRead(ctx, worker1, task.ID, msg.ID)
	require.NoError(t, err)
	assert.Len(t, again.ReadBy, 2)

	_, err = h.svc.Messages.List(ctx, worker1, task.ID, 500, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidLimit)
}

func TestMessages_Validation(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	task := h.inProgressTask(t)

	_, err := h.svc.Messages.Post(ctx, requester, task.ID, MessageInput{Content: "   "})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	msg, err := h.svc.Messages.Post(ctx, requester, task.ID, MessageInput{
		Attachment: &Attachment{URL: "https://files.example/plan.pdf", Name: "plan.pdf", Type: "application/pdf"},
	})
	require.NoError(t, err)
	assert.Nil(t, msg.Content)
	require.NotNil(t, msg.FileName)
	assert.Equal(t, "plan.pdf", *msg.FileName)
}

func TestMessages_CompletedTask(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, Options{})
	task := h.completedTask(t)
	_, err := h.svc.Messages.Post(ctx, worker1, task.ID, MessageInput{Content: "thanks"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	_, err = h.svc.Messages.Post(ctx, admin, task.ID, MessageInput{Content: "closing note"})
	assert.NoError(t, err)

	lenient := newHarness(t, Options{AllowMessagesAfterCompletion: true})
	task = lenient.completedTask(t)
	_, err = lenient.svc.Messages.Post(ctx, worker1, task.ID, MessageInput{Content: "thanks"})
	assert.NoError(t, err)
}

func TestReviews_OncePerParticipant(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	task := h.completedTask(t)

	_, err := h.svc.Reviews.Submit(ctx, stranger, task.ID, ReviewInput{Rating: 5})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = h.svc.Reviews.Submit(ctx, requester, task.ID, ReviewInput{Rating: 6})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	review, err := h.svc.Reviews.Submit(ctx, requester, task.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, worker1.ID, review.RevieweeID)
	assert.False(t, review.IsReviewingRequester)

	_, err = h.svc.Reviews.Submit(ctx, requester, task.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, errAlreadyReviewed)

	back, err := h.svc.Reviews.Submit(ctx, worker1, task.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, requester.ID, back.RevieweeID)
	assert.True(t, back.IsReviewingRequester)

	reviews, err := h.svc.Reviews.List(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Len(t, h.notificationsOf(t, task.ID, constants.NotificationNewReview), 2)
}

func TestReviews_RequireCompletedTask(t *testing.T) {
	h := newHarness(t, Options{})
	task := h.inProgressTask(t)

	_, err := h.svc.Reviews.Submit(context.Background(), requester, task.ID, ReviewInput{Rating: 3})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestReviews_RatingIsMeanOfAllReviews(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	for _, rating := range []int{5, 2, 4} {
		task := h.completedTask(t)
		_, err := h.svc.Reviews.Submit(ctx, requester, task.ID, ReviewInput{Rating: rating})
		require.NoError(t, err)
	}

	profile, err := h.svc.Profiles.Get(ctx, worker1.ID)
	require.NoError(t, err)
	assert.InDelta(t, 11.0/3.0, profile.Rating, 1e-9)
	assert.Equal(t, 3, profile.RatingCount)
	assert.Equal(t, 3, profile.CompletedTasks)

	again, err := h.svc.Ratings.Recompute(ctx, worker1.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.Rating, again)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 3.0, Mean([]int{3}))
	assert.Equal(t, 2.5, Mean([]int{1, 4}))
}
