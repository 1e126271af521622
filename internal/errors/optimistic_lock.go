package errors

var ErrConflictRetry = New(KindConflictRetry, "concurrent update detected, re-read and retry")
