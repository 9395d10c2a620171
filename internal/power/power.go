package power

import (
	"errors"

	"github.com/meshplus/govhub/internal/governance/voting"
)

//go:generate mockgen -destination mock_power/mock_power.go -package mock_power -source power.go

var (
	ErrEmptyAddress       = errors.New("empty member address")
	ErrInsufficientStake  = errors.New("insufficient stake")
	ErrHeightRegressed    = errors.New("snapshot height is lower than the latest one")
	ErrUnknownSource      = errors.New("unknown voting power source")
	ErrInvalidStakeAmount = errors.New("stake amount must be positive")
)

// Source answers voting power queries at a height. A change written at
// height h is only visible to queries at heights above h, so power acquired
// in the block a proposal opens cannot vote on it.
type Source interface {
	// VotingPower returns zero for non-members.
	VotingPower(addr string, height uint64) (voting.Amount, error)

	TotalPower(height uint64) (voting.Amount, error)
}

// ActivityChecker reports whether a source has enough participation to
// accept new proposals.
type ActivityChecker interface {
	IsActive(height uint64) (bool, error)
}
