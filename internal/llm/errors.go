package llm

import "errors"

// #region errors
// Error kinds shared by every backend. Callers branch with errors.Is; the
// wrapped message keeps the backend detail.
var (
	// ErrTimeout reports a completion that exceeded its deadline.
	ErrTimeout = errors.New("llm request timed out")

	// ErrNetwork reports an unreachable backend.
	ErrNetwork = errors.New("llm backend unreachable")

	// ErrRateLimited reports a backend that refused the call due to rate limiting.
	ErrRateLimited = errors.New("llm rate limit exceeded")

	// ErrMalformed reports a backend reply that could not be decoded.
	ErrMalformed = errors.New("llm malformed response")
)

// #endregion errors
