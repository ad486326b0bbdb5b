package services

import "errors"

// Sentinel errors shared by all services. Handlers translate these into HTTP
// responses in exactly one place; repositories wrap them with context via
// fmt.Errorf("...: %w", err) so errors.Is keeps working across layers.
var (
	// ErrInvalidInput marks malformed or out-of-range request data. Not
	// retried; surfaced to the caller verbatim.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded means a seat reservation lost the race for the
	// remaining seats. Safe to retry after re-fetching availability.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrForbidden marks an identity/party mismatch, e.g. a giver writing
	// the rider's payment flag.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced ride, record or user is absent.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition means dependent external state is missing, e.g.
	// offering a ride without a registered vehicle.
	ErrPrecondition = errors.New("precondition failed")

	// ErrConflict marks a state-machine transition that is not legal from
	// the current status; the caller should refresh and retry.
	ErrConflict = errors.New("conflict")

	// ErrInternal wraps failures the caller cannot act on, including a
	// compensating rollback that could not complete.
	ErrInternal = errors.New("internal error")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

