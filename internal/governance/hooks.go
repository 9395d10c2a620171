package governance

import (
	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Hook subscribes to proposal events. Hooks are told once the change is
// committed, so an error is logged and never undoes it.
type Hook interface {
	ProposalCreated(p *proposal.Proposal) error
	ProposalStatusChanged(id uint64, old, new proposal.Status) error
	VoteCast(id uint64, voter string, option uint32) error
}

// DepositHandler moves proposal deposits. Writes go to w and commit with
// the proposal; an error aborts the command and nothing is written.
type DepositHandler interface {
	// LockDeposit takes the deposit from its depositor when the proposal
	// is created.
	LockDeposit(w storage.Batch, id uint64, deposit *proposal.DepositInfo) error
	// SettleDeposit releases a locked deposit once the proposal reaches a
	// final status.
	SettleDeposit(w storage.Batch, id uint64, status proposal.Status, deposit *proposal.DepositInfo) error
}

// MessageExecutor runs the messages of a passed proposal's winning choice.
type MessageExecutor interface {
	Execute(id uint64, msgs []voting.Message) error
}

type hooks struct {
	subscribers []Hook
	logger      logrus.FieldLogger
}

func (hs *hooks) notify(event string, fields logrus.Fields, fn func(h Hook) error) {
	lo.ForEach(hs.subscribers, func(h Hook, i int) {
		if err := fn(h); err != nil {
			hs.logger.WithFields(fields).WithFields(logrus.Fields{
				"event": event,
				"hook":  i,
				"err":   err,
			}).Warn("Hook failed")
		}
	})
}

func (hs *hooks) proposalCreated(p *proposal.Proposal) {
	hs.notify("proposal_created", logrus.Fields{"id": p.ID}, func(h Hook) error {
		return h.ProposalCreated(p.Clone())
	})
}

func (hs *hooks) statusChanged(id uint64, old, new proposal.Status) {
	if old == new {
		return
	}
	hs.notify("status_changed", logrus.Fields{"id": id}, func(h Hook) error {
		return h.ProposalStatusChanged(id, old, new)
	})
}

func (hs *hooks) voteCast(id uint64, voter string, option uint32) {
	hs.notify("vote_cast", logrus.Fields{"id": id, "voter": voter}, func(h Hook) error {
		return h.VoteCast(id, voter, option)
	})
}
