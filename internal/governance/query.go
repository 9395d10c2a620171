package governance

import (
	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/pkg/errors"
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	return limit
}

// CurrentStatus returns the status of proposal id at block without writing
// anything.
func (g *Governance) CurrentStatus(block voting.Block, id uint64) (proposal.Status, error) {
	p, err := g.store.Proposal(id)
	if err != nil {
		return "", err
	}
	return p.CurrentStatus(block)
}

// Proposal returns proposal id with its status brought up to block. The
// refreshed status is not written.
func (g *Governance) Proposal(block voting.Block, id uint64) (*proposal.Proposal, error) {
	p, err := g.store.Proposal(id)
	if err != nil {
		return nil, err
	}
	if _, err := p.UpdateStatus(block); err != nil {
		return nil, errors.Wrapf(err, "update status of proposal %d", id)
	}
	return p, nil
}

func (g *Governance) ListProposals(block voting.Block, startAfter uint64, limit int) ([]*proposal.Proposal, error) {
	ps, err := g.store.Proposals(startAfter, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return refreshAll(ps, block)
}

func (g *Governance) ReverseProposals(block voting.Block, startBefore uint64, limit int) ([]*proposal.Proposal, error) {
	ps, err := g.store.ReverseProposals(startBefore, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return refreshAll(ps, block)
}

func refreshAll(ps []*proposal.Proposal, block voting.Block) ([]*proposal.Proposal, error) {
	for _, p := range ps {
		if _, err := p.UpdateStatus(block); err != nil {
			return nil, errors.Wrapf(err, "update status of proposal %d", p.ID)
		}
	}
	return ps, nil
}

func (g *Governance) ProposalCount() uint64 {
	return g.store.ProposalCount()
}

func (g *Governance) Ballot(id uint64, voter string) (*Ballot, error) {
	return g.store.Ballot(id, voter)
}

func (g *Governance) ListBallots(id uint64, startAfter string, limit int) ([]*Ballot, error) {
	return g.store.Ballots(id, startAfter, normalizeLimit(limit))
}

func (g *Governance) Config() (*Config, error) {
	return g.store.Config()
}

// Deposit returns how the deposit of proposal id was settled.
func (g *Governance) Deposit(id uint64) (*DepositRecord, error) {
	return g.store.DepositRecord(id)
}
