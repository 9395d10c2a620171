package voting

import (
	"errors"
	"fmt"
)

var ErrInvalidChoice = errors.New("invalid choice")

// VoteTally holds the accumulated weight per option, in option order.
type VoteTally struct {
	VoteWeights []Amount `json:"vote_weights"`
}

func ZeroTally(numChoices int) VoteTally {
	return VoteTally{VoteWeights: make([]Amount, numChoices)}
}

// Total returns the sum of all option weights.
func (t VoteTally) Total() (Amount, error) {
	return SumAmounts(t.VoteWeights)
}

func (t VoteTally) Clone() VoteTally {
	weights := make([]Amount, len(t.VoteWeights))
	copy(weights, t.VoteWeights)
	return VoteTally{VoteWeights: weights}
}

// AddVote adds weight to the option at index. On error the tally is unchanged.
func (t *VoteTally) AddVote(index uint32, weight Amount) error {
	if int(index) >= len(t.VoteWeights) {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, index)
	}
	sum, err := t.VoteWeights[index].Add(weight)
	if err != nil {
		return err
	}
	t.VoteWeights[index] = sum
	return nil
}

// RemoveVote subtracts weight from the option at index. On error the tally
// is unchanged.
func (t *VoteTally) RemoveVote(index uint32, weight Amount) error {
	if int(index) >= len(t.VoteWeights) {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, index)
	}
	diff, err := t.VoteWeights[index].Sub(weight)
	if err != nil {
		return err
	}
	t.VoteWeights[index] = diff
	return nil
}
