package errors

var (
	ErrTaskNotFound         = NotFound("task")
	ErrApplicationNotFound  = NotFound("application")
	ErrMessageNotFound      = NotFound("message")
	ErrNotificationNotFound = NotFound("notification")
	ErrProfileNotFound      = NotFound("profile")
	ErrCategoryNotFound     = NotFound("category")
)
