package errors

var (
	ErrInvalidLimit  = Validation("limit must be between 1 and 100")
	ErrInvalidOffset = Validation("offset must not be negative")
)
