package recommend

import "errors"

var (
	// ErrInvalidValue is returned for ratings outside [0,5] or non-numeric input.
	ErrInvalidValue = errors.New("invalid rating value")
	// ErrNotAuthenticated is returned when no user id accompanies the call.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound is returned when the requested movie or rating is absent.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps failures of the primary read or write.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSideEffect wraps failures of work that follows a successful rating write.
	ErrSideEffect = errors.New("side effect failed")
	// ErrUnknownUser is returned by the generator when the user directory does
	// not know the user; generation is skipped.
	ErrUnknownUser = errors.New("unknown user")
)
