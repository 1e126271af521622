package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"task-market.com/task-market/internal/constants"
	apperrors "task-market.com/task-market/internal/errors"
	model "task-market.com/task-market/internal/models"
)

func TestAuthorize_RuleTable(t *testing.T) {
	assignee := "assignee"
	task := &model.Task{
		ID:          "task",
		RequesterID: "requester",
		AssigneeID:  &assignee,
		Status:      constants.TaskInProgress,
	}
	app := &model.Application{ID: "app", TaskID: "task", ApplicantID: "applicant"}
	snap := Snapshot{Task: task, Application: app}

	requester := Actor{ID: "requester"}
	worker := Actor{ID: "assignee"}
	applicant := Actor{ID: "applicant"}
	admin := Actor{ID: "admin", IsAdmin: true}
	stranger := Actor{ID: "stranger"}

	cases := []struct {
		op      Operation
		allowed []Actor
		denied  []Actor
	}{
		{OpEditTask, []Actor{requester, admin}, []Actor{worker, applicant, stranger}},
		{OpCancelTask, []Actor{requester, admin}, []Actor{worker, applicant, stranger}},
		{OpDeleteTask, []Actor{requester, admin}, []Actor{worker, stranger}},
		{OpCompleteTask, []Actor{requester, worker, admin}, []Actor{applicant, stranger}},
		{OpApply, []Actor{stranger, applicant, admin}, []Actor{requester}},
		{OpAcceptApplication, []Actor{requester, admin}, []Actor{applicant, worker, stranger}},
		{OpRejectApplication, []Actor{requester, admin}, []Actor{applicant, stranger}},
		{OpWithdrawApplication, []Actor{applicant}, []Actor{requester, admin, stranger}},
		{OpViewApplication, []Actor{requester, applicant, admin}, []Actor{stranger}},
		{OpDeleteApplication, []Actor{requester, applicant, admin}, []Actor{stranger, worker}},
		{OpPostMessage, []Actor{requester, worker, admin}, []Actor{applicant, stranger}},
		{OpReadMessages, []Actor{requester, worker, admin}, []Actor{applicant, stranger}},
		{OpSubmitReview, []Actor{requester, worker}, []Actor{admin, applicant, stranger}},
		{OpManageCategories, []Actor{admin}, []Actor{requester, worker, applicant, stranger}},
	}

	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			for _, a := range tc.allowed {
				assert.NoError(t, Authorize(a, tc.op, snap), "actor %s", a.ID)
			}
			for _, a := range tc.denied {
				err := Authorize(a, tc.op, snap)
				assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "actor %s: %v", a.ID, err)
			}
		})
	}
}

func TestAuthorize_AdminWhoOwnsTaskCannotApply(t *testing.T) {
	task := &model.Task{ID: "task", RequesterID: "admin", Status: constants.TaskOpen}
	err := Authorize(Actor{ID: "admin", IsAdmin: true}, OpApply, Snapshot{Task: task})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestAuthorize_AnonymousIsUnauthenticated(t *testing.T) {
	task := &model.Task{ID: "task", RequesterID: "requester"}
	err := Authorize(Actor{}, OpApply, Snapshot{Task: task})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestAuthorize_UnknownOperationDenied(t *testing.T) {
	task := &model.Task{ID: "task", RequesterID: "requester"}
	assert.False(t, Can(Actor{ID: "requester", IsAdmin: true}, Operation("launch"), Snapshot{Task: task}))
}

func TestRoles(t *testing.T) {
	task := &model.Task{ID: "task", RequesterID: "requester"}
	assert.Equal(t, RoleRequester, Roles(Actor{ID: "requester"}, Snapshot{Task: task}))
	assert.Equal(t, RoleOther|RoleAdmin, Roles(Actor{ID: "x", IsAdmin: true}, Snapshot{Task: task}))
}

func TestAuthorize_CategoriesNeedNoTask(t *testing.T) {
	assert.NoError(t, Authorize(Actor{ID: "admin", IsAdmin: true}, OpManageCategories, Snapshot{}))

	err := Authorize(Actor{ID: "requester"}, OpManageCategories, Snapshot{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.ErrorIs(t, Authorize(Actor{}, OpManageCategories, Snapshot{}), apperrors.ErrUnauthenticated)
}
