package proposal

import "errors"

var (
	// ErrInternal tags invariant violations that construction should have
	// made impossible. Callers must abort without writing.
	ErrInternal = errors.New("internal invariant violated")

	ErrNoVotes        = errors.New("no vote weights found")
	ErrNoRunnerUp     = errors.New("no second highest vote weight")
	ErrInvalidChoices = errors.New("invalid proposal choices")

	ErrZeroTotalPower         = errors.New("total voting power is zero")
	ErrEmptyTitle             = errors.New("proposal title is empty")
	ErrDurationUnitsConflict  = errors.New("duration units conflict")
	ErrInvalidMinVotingPeriod = errors.New("min voting period must not exceed max voting period")
	ErrInvalidVeto            = errors.New("invalid veto config")
	ErrInvalidTransition      = errors.New("invalid status transition")
)

type internalError struct {
	err error
}

func (e *internalError) Error() string {
	return ErrInternal.Error() + ": " + e.err.Error()
}

func (e *internalError) Is(target error) bool {
	return target == ErrInternal
}

func (e *internalError) Unwrap() error {
	return e.err
}

func internal(err error) error {
	return &internalError{err: err}
}
