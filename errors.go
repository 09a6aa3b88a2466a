package focusflow

import "errors"

var (
	// ErrRemoteUnavailable covers network and server failures on any
	// session or reward call. Always surfaced with a retry affordance.
	ErrRemoteUnavailable = errors.New("remote service unavailable")

	// ErrInvalidTransition means a command was issued from a state that
	// does not permit it. Callers should disable the action instead of
	// letting this reach a user.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrStaleSession means a reconciliation response arrived for a
	// session whose local copy has already been superseded. The response
	// is discarded and the newer local state kept.
	ErrStaleSession = errors.New("stale session reconciliation")

	// ErrCommandPending means a command arrived while a prior command's
	// remote call was still in flight.
	ErrCommandPending = errors.New("command pending reconciliation")

	// ErrNotConfirmed means a destructive command was issued without its
	// confirmation step.
	ErrNotConfirmed = errors.New("confirmation required")
)
