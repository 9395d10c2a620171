package governance

import (
	"fmt"
	"strings"

	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
)

const DefaultCreationPolicy = "power > 0"

// DepositConfig is the deposit locked from the proposer of every new
// proposal by the DepositHandler.
type DepositConfig struct {
	Denom        string                `json:"denom"`
	Amount       voting.Amount         `json:"amount"`
	RefundPolicy proposal.RefundPolicy `json:"refund_policy"`
}

// Config is the module configuration. Proposals snapshot the parts they
// need when created, so updates only affect later proposals.
type Config struct {
	// DAO is the only address allowed to update the config.
	DAO                             string                `json:"dao"`
	VotingStrategy                  voting.VotingStrategy `json:"voting_strategy"`
	MinVotingPeriod                 *voting.Duration      `json:"min_voting_period,omitempty"`
	MaxVotingPeriod                 voting.Duration       `json:"max_voting_period"`
	AllowRevoting                   bool                  `json:"allow_revoting"`
	OnlyMembersExecute              bool                  `json:"only_members_execute"`
	CloseProposalOnExecutionFailure bool                  `json:"close_proposal_on_execution_failure"`
	Veto                            *proposal.VetoConfig  `json:"veto,omitempty"`
	Deposit                         *DepositConfig        `json:"deposit,omitempty"`
	CreationPolicy                  string                `json:"creation_policy"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DAO) == "" {
		return fmt.Errorf("%w: empty dao address", ErrInvalidConfig)
	}
	if err := c.VotingStrategy.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := proposal.ValidateVotingPeriod(c.MinVotingPeriod, c.MaxVotingPeriod); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Veto != nil {
		if err := c.Veto.Validate(c.MaxVotingPeriod); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if c.Deposit != nil {
		info := c.Deposit.info("")
		if err := info.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if _, err := NewCreationPolicy(c.CreationPolicy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (d *DepositConfig) info(depositor string) *proposal.DepositInfo {
	return &proposal.DepositInfo{
		Denom:        d.Denom,
		Amount:       d.Amount,
		Depositor:    depositor,
		RefundPolicy: d.RefundPolicy,
	}
}
