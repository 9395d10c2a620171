package governance

import (
	"errors"
	"fmt"

	"github.com/meshplus/govhub/internal/governance/proposal"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrBallotNotFound    = errors.New("ballot not found")
	ErrNotRegistered     = errors.New("voter has no voting power")
	ErrAlreadyVoted      = errors.New("already voted and revoting is disabled")
	ErrAlreadyCast       = errors.New("already cast a vote with that option")
	ErrInvalidChoice     = errors.New("choice does not exist")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInactive          = errors.New("voting power source is not active")
	ErrBlockRegressed    = errors.New("block is older than the last processed block")
	ErrNoVetoConfig      = errors.New("proposal has no veto config")
	ErrNotVetoable       = errors.New("proposal cannot be vetoed before it passes")
	ErrTimelockActive    = errors.New("proposal is in its veto timelock")
	ErrTallyExceedsPower = errors.New("vote tally exceeds total power")
	ErrInvalidConfig     = errors.New("invalid governance config")
)

// StatusError reports an operation attempted in the wrong status.
type StatusError struct {
	Op       string
	Expected proposal.Status
	Actual   proposal.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot %s proposal: expected status %s, got %s", e.Op, e.Expected, e.Actual)
}
