package lifecycle

import "errors"

// Error taxonomy surfaced to the HTTP layer. Every operation either succeeds
// or fails with one of these without mutating anything.
var (
	// ErrValidation: a required field is missing or malformed.
	ErrValidation = errors.New("missing or invalid required field")

	// ErrPermission: the actor is not allowed to perform this action.
	ErrPermission = errors.New("actor not permitted")

	// ErrNotFound: the referenced project or application does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the action is not valid for the current lifecycle state.
	ErrInvalidState = errors.New("invalid lifecycle state for action")

	// ErrDuplicateApplication: a live (Pending or Accepted) application from
	// this freelancer for this project already exists.
	ErrDuplicateApplication = errors.New("duplicate application")

	// ErrProposalPending: a status proposal is already awaiting approval.
	ErrProposalPending = errors.New("status proposal already pending")

	// ErrVersionConflict: the optimistic version check failed; the caller saw
	// a stale snapshot and should re-read.
	ErrVersionConflict = errors.New("version conflict")
)

// outcome maps an operation result to the metrics label for it.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPermission):
		return "permission"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrDuplicateApplication):
		return "duplicate_application"
	case errors.Is(err, ErrProposalPending):
		return "proposal_pending"
	case errors.Is(err, ErrVersionConflict):
		return "version_conflict"
	default:
		return "error"
	}
}
