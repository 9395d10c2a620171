package proposal

import (
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/samber/lo"
)

// VoteResult is either a tie or a single winning choice.
type VoteResult struct {
	Tie    bool
	Winner voting.CheckedOption
}

// CurrentStatus derives the status at block without mutating p.
func (p *Proposal) CurrentStatus(block voting.Block) (Status, error) {
	status, _, err := p.resolve(block)
	return status, err
}

func (p *Proposal) resolve(block voting.Block) (Status, *voting.Expiration, error) {
	switch p.Status {
	case StatusOpen:
		passed, err := p.IsPassed(block)
		if err != nil {
			return "", nil, err
		}
		if passed {
			if p.Veto == nil {
				return StatusPassed, nil, nil
			}
			timelock, err := p.Expiration.Add(p.Veto.TimelockDuration)
			if err != nil {
				return "", nil, err
			}
			if timelock.IsExpired(block) {
				return StatusPassed, nil, nil
			}
			return StatusVetoTimelock, &timelock, nil
		}

		if p.Expiration.IsExpired(block) {
			return StatusRejected, nil, nil
		}
		rejected, err := p.IsRejected(block)
		if err != nil {
			return "", nil, err
		}
		if rejected {
			return StatusRejected, nil, nil
		}
		return StatusOpen, nil, nil
	case StatusVetoTimelock:
		if p.TimelockExpiration == nil || p.TimelockExpiration.IsExpired(block) {
			return StatusPassed, nil, nil
		}
		return StatusVetoTimelock, p.TimelockExpiration, nil
	default:
		return p.Status, p.TimelockExpiration, nil
	}
}

// UpdateStatus writes the status derived at block into p and returns the
// status it had before.
func (p *Proposal) UpdateStatus(block voting.Block) (Status, error) {
	old := p.Status
	next, timelock, err := p.resolve(block)
	if err != nil {
		return old, err
	}
	if next == old {
		return old, nil
	}

	var event Event
	switch next {
	case StatusPassed:
		event = EventPass
	case StatusRejected:
		event = EventReject
	case StatusVetoTimelock:
		event = EventTimelock
	default:
		return old, internal(ErrInvalidTransition)
	}
	if err := p.Fire(event); err != nil {
		return old, err
	}
	if next == StatusVetoTimelock {
		p.TimelockExpiration = timelock
	} else {
		p.TimelockExpiration = nil
	}
	return old, nil
}

func (p *Proposal) votesTotal() (voting.Amount, error) {
	total, err := p.Votes.Total()
	if err != nil {
		return voting.Amount{}, internal(err)
	}
	return total, nil
}

// IsPassed reports whether a non-None choice has won at block, either at
// expiration or early because no outstanding power can overturn it.
func (p *Proposal) IsPassed(block voting.Block) (bool, error) {
	expired := p.Expiration.IsExpired(block)
	if p.AllowRevoting && !expired {
		return false, nil
	}
	if p.MinVotingPeriod != nil && !p.MinVotingPeriod.IsExpired(block) {
		return false, nil
	}

	total, err := p.votesTotal()
	if err != nil {
		return false, err
	}
	if !voting.DoesVoteCountPass(total, p.TotalPower, p.VotingStrategy.GetQuorum()) {
		return false, nil
	}

	result, err := p.CalculateVoteResult()
	if err != nil {
		return false, err
	}
	if result.Tie || result.Winner.OptionType == voting.OptionNone {
		return false, nil
	}
	if expired {
		return true, nil
	}
	return p.isChoiceUnbeatable(result.Winner)
}

// IsRejected reports whether the proposal can no longer pass at block.
func (p *Proposal) IsRejected(block voting.Block) (bool, error) {
	expired := p.Expiration.IsExpired(block)
	if p.AllowRevoting && !expired {
		return false, nil
	}

	result, err := p.CalculateVoteResult()
	if err != nil {
		return false, err
	}
	total, err := p.votesTotal()
	if err != nil {
		return false, err
	}

	if result.Tie {
		return expired || p.TotalPower.Equal(total), nil
	}

	quorum := voting.DoesVoteCountPass(total, p.TotalPower, p.VotingStrategy.GetQuorum())
	isNone := result.Winner.OptionType == voting.OptionNone
	switch {
	case quorum && expired:
		return isNone, nil
	case !quorum && expired:
		return true, nil
	default:
		if !isNone {
			return false, nil
		}
		return p.isChoiceUnbeatable(result.Winner)
	}
}

// CalculateVoteResult finds the choice with the highest weight. Two or
// more choices sharing the maximum, including an all zero tally, is a tie.
func (p *Proposal) CalculateVoteResult() (VoteResult, error) {
	weights := p.Votes.VoteWeights
	if len(weights) == 0 {
		return VoteResult{}, internal(ErrNoVotes)
	}
	if len(weights) != len(p.Choices) {
		return VoteResult{}, internal(ErrInvalidChoices)
	}

	top := lo.MaxBy(weights, func(a, b voting.Amount) bool {
		return a.GT(b)
	})
	if lo.CountBy(weights, top.Equal) > 1 {
		return VoteResult{Tie: true}, nil
	}
	_, best, _ := lo.FindIndexOf(weights, top.Equal)
	return VoteResult{Winner: p.Choices[best]}, nil
}

// isChoiceUnbeatable reports whether winner keeps its outcome even if every
// outstanding vote goes to the runner up. A Standard winner must stay
// strictly ahead since a tie cannot pass; a None winner only needs to hold
// a tie since a tie cannot pass either.
func (p *Proposal) isChoiceUnbeatable(winner voting.CheckedOption) (bool, error) {
	if int(winner.Index) >= len(p.Votes.VoteWeights) {
		return false, internal(ErrInvalidChoices)
	}
	winnerPower := p.Votes.VoteWeights[winner.Index]

	below := lo.Filter(p.Votes.VoteWeights, func(w voting.Amount, _ int) bool {
		return w.LT(winnerPower)
	})
	if len(below) == 0 {
		return false, internal(ErrNoRunnerUp)
	}
	runnerUp := lo.MaxBy(below, func(a, b voting.Amount) bool {
		return a.GT(b)
	})

	total, err := p.votesTotal()
	if err != nil {
		return false, err
	}
	remaining, err := p.TotalPower.Sub(total)
	if err != nil {
		return false, internal(err)
	}
	reachable, err := runnerUp.Add(remaining)
	if err != nil {
		return false, internal(err)
	}

	if winner.OptionType == voting.OptionNone {
		return winnerPower.Cmp(reachable) >= 0, nil
	}
	return winnerPower.GT(reachable), nil
}
