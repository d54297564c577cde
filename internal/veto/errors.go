package veto

import "errors"

var (
	ErrRecordNotFound      = errors.New("no veto has been opened for this match")
	ErrInvalidAction       = errors.New("invalid veto action")
	ErrUnknownMap          = errors.New("map is not available")
	ErrVetoComplete        = errors.New("veto is already complete")
	ErrParticipantsChanged = errors.New("match participants changed since the veto was opened, reset it first")

	// Authorization failures
	ErrNotYourTurn    = errors.New("it is not your turn")
	ErrNotParticipant = errors.New("only the match participants or an admin may do this")
)

// IsAuthorization reports whether err is a rejected actor rather than bad input
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrNotYourTurn) || errors.Is(err, ErrNotParticipant)
}
