package rollback

import (
	"errors"
	"fmt"
)

var (
	// ErrPredictionThreshold means the session is too far ahead of the
	// confirmed inputs and holds its frame. Callers retry next tick.
	ErrPredictionThreshold = errors.New("rollback: prediction threshold reached")

	ErrMissingSnapshot    = errors.New("rollback: missing snapshot")
	ErrSnapshotHorizon    = errors.New("rollback: rollback beyond snapshot horizon")
	ErrNonFiniteState     = errors.New("rollback: non-finite world state")
	ErrMismatchedChecksum = errors.New("rollback: checksum mismatch during resimulation")
	ErrPeerDisconnected   = errors.New("rollback: peer disconnected")
	ErrInvalidHandle      = errors.New("rollback: invalid player handle")
	ErrInvalidConfig      = errors.New("rollback: invalid config")
)

// FatalError ends a match. Once returned, every later call on the session
// returns the same error.
type FatalError struct {
	Frame Frame
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal at frame %d: %v", e.Frame, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err ended the match.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
