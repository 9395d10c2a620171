package proposal

import (
	"fmt"
	"strings"

	"github.com/looplab/fsm"
	"github.com/meshplus/govhub/internal/governance/voting"
)

// Proposal is a multiple choice proposal. Everything except Status, Votes
// and TimelockExpiration is fixed when it is created.
type Proposal struct {
	ID              uint64                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Proposer        string                 `json:"proposer"`
	StartHeight     uint64                 `json:"start_height"`
	MinVotingPeriod *voting.Expiration     `json:"min_voting_period,omitempty"`
	Expiration      voting.Expiration      `json:"expiration"`
	Choices         []voting.CheckedOption `json:"choices"`
	Status          Status                 `json:"status"`
	VotingStrategy  voting.VotingStrategy  `json:"voting_strategy"`

	// TotalPower is the eligible power at StartHeight. It is never
	// re-queried.
	TotalPower    voting.Amount    `json:"total_power"`
	Votes         voting.VoteTally `json:"votes"`
	AllowRevoting bool             `json:"allow_revoting"`
	Veto          *VetoConfig      `json:"veto,omitempty"`
	Deposit       *DepositInfo     `json:"deposit,omitempty"`

	// TimelockExpiration is set while Status is veto_timelock.
	TimelockExpiration *voting.Expiration `json:"timelock_expiration,omitempty"`

	fsm *fsm.FSM
}

// Params carries everything needed to open a proposal.
type Params struct {
	Title           string
	Description     string
	Proposer        string
	Choices         []voting.Option
	VotingStrategy  voting.VotingStrategy
	MinVotingPeriod *voting.Duration
	MaxVotingPeriod voting.Duration
	TotalPower      voting.Amount
	AllowRevoting   bool
	Veto            *VetoConfig
	Deposit         *DepositInfo
}

// ValidateVotingPeriod checks that both periods use the same unit and that
// min does not exceed max.
func ValidateVotingPeriod(min *voting.Duration, max voting.Duration) error {
	if err := max.Validate(); err != nil {
		return err
	}
	if min == nil {
		return nil
	}
	if !min.SameUnit(max) {
		return ErrDurationUnitsConflict
	}
	if max.Less(*min) {
		return ErrInvalidMinVotingPeriod
	}
	return nil
}

// New validates params and opens a proposal at block.
func New(id uint64, params Params, block voting.Block) (*Proposal, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if err := params.VotingStrategy.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateVotingPeriod(params.MinVotingPeriod, params.MaxVotingPeriod); err != nil {
		return nil, err
	}
	if params.Veto != nil {
		if err := params.Veto.Validate(params.MaxVotingPeriod); err != nil {
			return nil, err
		}
	}
	if params.Deposit != nil {
		if err := params.Deposit.Validate(); err != nil {
			return nil, err
		}
	}
	if params.TotalPower.IsZero() {
		return nil, ErrZeroTotalPower
	}

	choices, err := voting.CheckOptions(params.Choices)
	if err != nil {
		return nil, err
	}
	if err := voting.VerifyCheckedOptions(choices); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChoices, err)
	}

	p := &Proposal{
		ID:             id,
		Title:          params.Title,
		Description:    params.Description,
		Proposer:       params.Proposer,
		StartHeight:    block.Height,
		Expiration:     params.MaxVotingPeriod.After(block),
		Choices:        choices,
		Status:         StatusOpen,
		VotingStrategy: params.VotingStrategy,
		TotalPower:     params.TotalPower,
		Votes:          voting.ZeroTally(len(choices)),
		AllowRevoting:  params.AllowRevoting,
		Veto:           params.Veto,
		Deposit:        params.Deposit,
	}
	if params.MinVotingPeriod != nil {
		min := params.MinVotingPeriod.After(block)
		p.MinVotingPeriod = &min
	}

	return p, nil
}

// Clone returns a deep copy that shares no mutable state with p.
func (p *Proposal) Clone() *Proposal {
	c := *p
	c.fsm = nil
	c.Choices = make([]voting.CheckedOption, len(p.Choices))
	copy(c.Choices, p.Choices)
	c.Votes = p.Votes.Clone()
	if p.MinVotingPeriod != nil {
		min := *p.MinVotingPeriod
		c.MinVotingPeriod = &min
	}
	if p.TimelockExpiration != nil {
		exp := *p.TimelockExpiration
		c.TimelockExpiration = &exp
	}
	if p.Veto != nil {
		veto := *p.Veto
		c.Veto = &veto
	}
	if p.Deposit != nil {
		deposit := *p.Deposit
		c.Deposit = &deposit
	}
	return &c
}

// Choice returns the option at index.
func (p *Proposal) Choice(index uint32) (voting.CheckedOption, bool) {
	if int(index) >= len(p.Choices) {
		return voting.CheckedOption{}, false
	}
	return p.Choices[index], true
}

// WinningMessages returns the messages of the passed winner.
func (p *Proposal) WinningMessages() ([]voting.Message, error) {
	result, err := p.CalculateVoteResult()
	if err != nil {
		return nil, err
	}
	if result.Tie {
		return nil, nil
	}
	return result.Winner.Msgs, nil
}

// VetoConfig lets a vetoer cancel a passed proposal during a timelock
// following its expiration.
type VetoConfig struct {
	Vetoer           string          `json:"vetoer"`
	TimelockDuration voting.Duration `json:"timelock_duration"`
	EarlyExecute     bool            `json:"early_execute"`
	VetoBeforePassed bool            `json:"veto_before_passed"`
}

// Validate requires the timelock to use the same unit as the voting period.
func (v *VetoConfig) Validate(maxVotingPeriod voting.Duration) error {
	if strings.TrimSpace(v.Vetoer) == "" {
		return fmt.Errorf("%w: empty vetoer", ErrInvalidVeto)
	}
	if err := v.TimelockDuration.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVeto, err)
	}
	if !v.TimelockDuration.SameUnit(maxVotingPeriod) {
		return fmt.Errorf("%w: %v", ErrInvalidVeto, ErrDurationUnitsConflict)
	}
	return nil
}

type RefundPolicy string

const (
	RefundAlways     RefundPolicy = "always"
	RefundOnlyPassed RefundPolicy = "only_passed"
	RefundNever      RefundPolicy = "never"
)

// DepositInfo records the deposit taken when the proposal was created.
type DepositInfo struct {
	Denom        string        `json:"denom"`
	Amount       voting.Amount `json:"amount"`
	Depositor    string        `json:"depositor"`
	RefundPolicy RefundPolicy  `json:"refund_policy"`
}

func (d *DepositInfo) Validate() error {
	switch d.RefundPolicy {
	case RefundAlways, RefundOnlyPassed, RefundNever:
	default:
		return fmt.Errorf("invalid refund policy %q", d.RefundPolicy)
	}
	if d.Amount.IsZero() {
		return fmt.Errorf("deposit amount is zero")
	}
	return nil
}

// Refundable reports whether the deposit goes back to the depositor once
// the proposal completes with status.
func (d *DepositInfo) Refundable(status Status) bool {
	if !status.IsFinal() {
		return false
	}
	switch d.RefundPolicy {
	case RefundAlways:
		return true
	case RefundOnlyPassed:
		return status == StatusExecuted || status == StatusExecutionFailed
	default:
		return false
	}
}
