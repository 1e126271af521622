package errors

var (
	ErrTaskIDRequired        = Validation("task id is required")
	ErrApplicationIDRequired = Validation("application id is required")
	ErrInvalidJSON           = Validation("invalid JSON payload")
	ErrCategoryIDRequired    = Validation("category id is required")
	ErrUnauthenticated       = New(KindUnauthenticated, "not authenticated")
	ErrInvalidToken          = New(KindUnauthenticated, "invalid token")
	ErrMissingToken          = New(KindUnauthenticated, "missing or malformed bearer token")
	ErrRateLimited           = New(KindRateLimited, "rate limit exceeded")
)
