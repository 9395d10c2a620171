package voting

import (
	"encoding/json"
	"errors"
	"fmt"
)

type QuorumKind string

const (
	QuorumMajority QuorumKind = "majority"
	QuorumPercent  QuorumKind = "percent"
)

type StrategyKind string

const (
	StrategySingleChoice StrategyKind = "single_choice"
)

var (
	ErrInvalidQuorum   = errors.New("invalid quorum")
	ErrUnknownStrategy = errors.New("unknown voting strategy")
)

// Quorum is the share of total power that must take part before a proposal
// can resolve on its votes.
type Quorum struct {
	Kind    QuorumKind `json:"kind"`
	Percent Decimal    `json:"percent,omitempty"`
}

func Majority() Quorum {
	return Quorum{Kind: QuorumMajority}
}

func Percent(p Decimal) Quorum {
	return Quorum{Kind: QuorumPercent, Percent: p}
}

// ParseQuorum accepts "majority" or a decimal fraction such as "0.1".
func ParseQuorum(s string) (Quorum, error) {
	if s == string(QuorumMajority) {
		return Majority(), nil
	}
	p, err := ParseDecimal(s)
	if err != nil {
		return Quorum{}, fmt.Errorf("%w: %v", ErrInvalidQuorum, err)
	}
	q := Percent(p)
	if err := q.Validate(); err != nil {
		return Quorum{}, err
	}
	return q, nil
}

// Validate requires a percentage in (0, 1].
func (q Quorum) Validate() error {
	switch q.Kind {
	case QuorumMajority:
		return nil
	case QuorumPercent:
		if q.Percent.IsZero() || q.Percent.Cmp(DecimalOne()) > 0 {
			return fmt.Errorf("%w: percent %s out of range (0, 1]", ErrInvalidQuorum, q.Percent)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidQuorum, q.Kind)
	}
}

func (q Quorum) String() string {
	if q.Kind == QuorumPercent {
		return q.Percent.String()
	}
	return string(q.Kind)
}

func (q Quorum) MarshalJSON() ([]byte, error) {
	type plain Quorum
	if q.Kind != QuorumPercent {
		return json.Marshal(struct {
			Kind QuorumKind `json:"kind"`
		}{q.Kind})
	}
	return json.Marshal(plain(q))
}

// DoesVoteCountPass reports whether votes meets quorum out of total. A zero
// total never passes.
func DoesVoteCountPass(votes, total Amount, quorum Quorum) bool {
	if total.IsZero() {
		return false
	}
	switch quorum.Kind {
	case QuorumMajority:
		doubled, err := votes.Add(votes)
		if err != nil {
			// 2*votes exceeds any representable total.
			return true
		}
		return doubled.GT(total)
	case QuorumPercent:
		required, err := quorum.Percent.MulCeil(total)
		if err != nil {
			return false
		}
		return votes.Cmp(required) >= 0
	default:
		return false
	}
}

// VotingStrategy describes how a proposal's votes are counted.
type VotingStrategy struct {
	Kind   StrategyKind `json:"kind"`
	Quorum Quorum       `json:"quorum"`
}

func SingleChoice(quorum Quorum) VotingStrategy {
	return VotingStrategy{Kind: StrategySingleChoice, Quorum: quorum}
}

func (s VotingStrategy) GetQuorum() Quorum {
	return s.Quorum
}

func (s VotingStrategy) Validate() error {
	if s.Kind != StrategySingleChoice {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, s.Kind)
	}
	return s.Quorum.Validate()
}
