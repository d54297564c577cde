package bracket

import "errors"

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrInvalidScore           = errors.New("invalid score")
	ErrParticipantsUnresolved = errors.New("match participants are not resolved yet")
	ErrByeMatch               = errors.New("match is decided by a bye")
	ErrInvalidStructure       = errors.New("invalid bracket structure")
	ErrNotEnoughPlayers       = errors.New("not enough players")
	ErrUnsupportedFormat      = errors.New("unsupported bracket format")
	ErrReseedAfterPlay        = errors.New("results have been recorded, reseeding must be forced")
	ErrNoGroups               = errors.New("bracket has no group stage")
	ErrGroupsIncomplete       = errors.New("group stage is not complete")
	ErrPlayoffsBuilt          = errors.New("playoffs have already been built")
)
