package forgejo

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested path does not exist on the
// configured branch.
var ErrNotFound = errors.New("forgejo: file not found")

// ErrConflict is returned when a conditional write is rejected: the supplied
// revision token no longer matches the stored file, or a create-only write
// hit an existing path. Matches via errors.Is on ConflictError.
var ErrConflict = errors.New("forgejo: write conflict")

// ConflictError carries the path and the server's reason for rejecting a
// conditional write.
type ConflictError struct {
	Path   string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("forgejo: write conflict on %s: %s", e.Path, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// StatusError is returned for any other non-success response. Nothing is
// retried at this layer; callers decide whether to try again.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("forgejo: unexpected status %d: %s", e.StatusCode, e.Body)
}
