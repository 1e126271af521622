// Package authz decides whether an actor may perform an operation on a task or
// application. Decisions are pure functions of the actor, the operation and a
// snapshot of the entities involved; nothing here touches storage.
package authz

import (
	apperrors "task-market.com/task-market/internal/errors"
	model "task-market.com/task-market/internal/models"
)

type Actor struct {
	ID      string
	IsAdmin bool
}

type Operation string

const (
	OpEditTask            Operation = "edit_task"
	OpCancelTask          Operation = "cancel_task"
	OpDeleteTask          Operation = "delete_task"
	OpCompleteTask        Operation = "complete_task"
	OpApply               Operation = "apply"
	OpListApplications    Operation = "list_applications"
	OpViewApplication     Operation = "view_application"
	OpAcceptApplication   Operation = "accept_application"
	OpRejectApplication   Operation = "reject_application"
	OpWithdrawApplication Operation = "withdraw_application"
	OpDeleteApplication   Operation = "delete_application"
	OpPostMessage         Operation = "post_message"
	OpReadMessages        Operation = "read_messages"
	OpSubmitReview        Operation = "submit_review"
	OpManageCategories    Operation = "manage_categories"
)

// Role is a set of relationship facts between an actor and a snapshot.
type Role uint8

const (
	RoleRequester Role = 1 << iota
	RoleAssignee
	RoleApplicant
	RoleAdmin
	// RoleOther is any authenticated actor who is not the requester.
	RoleOther
)

var rules = map[Operation]Role{
	OpEditTask:            RoleRequester | RoleAdmin,
	OpCancelTask:          RoleRequester | RoleAdmin,
	OpDeleteTask:          RoleRequester | RoleAdmin,
	OpCompleteTask:        RoleRequester | RoleAssignee | RoleAdmin,
	OpApply:               RoleOther,
	OpListApplications:    RoleRequester | RoleAdmin,
	OpViewApplication:     RoleRequester | RoleApplicant | RoleAdmin,
	OpAcceptApplication:   RoleRequester | RoleAdmin,
	OpRejectApplication:   RoleRequester | RoleAdmin,
	OpWithdrawApplication: RoleApplicant,
	OpDeleteApplication:   RoleRequester | RoleApplicant | RoleAdmin,
	OpPostMessage:         RoleRequester | RoleAssignee | RoleAdmin,
	OpReadMessages:        RoleRequester | RoleAssignee | RoleAdmin,
	OpSubmitReview:        RoleRequester | RoleAssignee,
	OpManageCategories:    RoleAdmin,
}

var denials = map[Operation]string{
	OpApply:               "you cannot apply to your own task",
	OpWithdrawApplication: "only the applicant can withdraw an application",
	OpPostMessage:         "not authorized to send messages for this task",
	OpReadMessages:        "not authorized to read messages for this task",
	OpSubmitReview:        "only the task requester or assignee can leave a review",
	OpManageCategories:    "only admins can manage categories",
}

// Snapshot is the entity state a decision is evaluated against.
type Snapshot struct {
	Task        *model.Task
	Application *model.Application
}

// Roles derives the relationship facts of actor towards snap.
func Roles(actor Actor, snap Snapshot) Role {
	var r Role
	if actor.ID == "" {
		return r
	}
	if actor.IsAdmin {
		r |= RoleAdmin
	}
	if snap.Task != nil {
		if snap.Task.RequesterID == actor.ID {
			r |= RoleRequester
		} else {
			r |= RoleOther
		}
		if snap.Task.IsAssignee(actor.ID) {
			r |= RoleAssignee
		}
	}
	if snap.Application != nil && snap.Application.ApplicantID == actor.ID {
		r |= RoleApplicant
	}
	return r
}

func Can(actor Actor, op Operation, snap Snapshot) bool {
	allowed, ok := rules[op]
	if !ok {
		return false
	}
	return Roles(actor, snap)&allowed != 0
}

// Authorize returns nil when the operation is allowed and a Forbidden
// exception otherwise. An anonymous actor is unauthenticated, not forbidden.
func Authorize(actor Actor, op Operation, snap Snapshot) error {
	if actor.ID == "" {
		return apperrors.ErrUnauthenticated
	}
	if Can(actor, op, snap) {
		return nil
	}
	if msg, ok := denials[op]; ok {
		return apperrors.Forbidden(msg)
	}
	return apperrors.Forbidden("not authorized")
}
