package governance

import (
	"fmt"
	"sync"
	"time"

	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/internal/power"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const DefaultQueryLimit = 30

// ProposeArgs is what a proposer submits.
type ProposeArgs struct {
	Title       string
	Description string
	Choices     []voting.Option
}

// Governance runs the proposal commands. Every mutating command is
// serialized, recomputes the proposal status against the supplied block
// before checking its precondition, and writes all of its changes in a
// single batch. Hooks are told after the batch commits.
type Governance struct {
	store    *Store
	source   power.Source
	activity power.ActivityChecker
	executor MessageExecutor
	deposits DepositHandler
	hooks    *hooks
	logger   logrus.FieldLogger

	lock sync.Mutex
}

type Option func(*Governance)

func WithActivityChecker(checker power.ActivityChecker) Option {
	return func(g *Governance) {
		g.activity = checker
	}
}

func WithMessageExecutor(executor MessageExecutor) Option {
	return func(g *Governance) {
		g.executor = executor
	}
}

func WithDepositHandler(handler DepositHandler) Option {
	return func(g *Governance) {
		g.deposits = handler
	}
}

func WithHooks(hs ...Hook) Option {
	return func(g *Governance) {
		g.hooks.subscribers = append(g.hooks.subscribers, hs...)
	}
}

// New opens the governance module on db. cfg is stored on first use and
// ignored afterwards; use UpdateConfig to change a stored config.
func New(db storage.Storage, source power.Source, cfg *Config, cacheSize int, logger logrus.FieldLogger, opts ...Option) (*Governance, error) {
	store, err := NewStore(db, cacheSize)
	if err != nil {
		return nil, err
	}

	g := &Governance{
		store:  store,
		source: source,
		hooks:  &hooks{logger: logger},
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}

	_, err = store.Config()
	switch {
	case err == nil:
		return g, nil
	case !errors.Is(err, storage.ErrorNotFound):
		return nil, errors.Wrap(err, "load config")
	}

	if cfg == nil {
		return nil, fmt.Errorf("%w: no config stored or given", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := store.NewWrite()
	w.PutConfig(cfg)
	if err := w.Commit(); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"dao":    cfg.DAO,
		"quorum": cfg.VotingStrategy.Quorum.String(),
	}).Info("Initialize governance config")

	return g, nil
}

func (g *Governance) checkBlock(block voting.Block) error {
	last, ok, err := g.store.LastBlock()
	if err != nil {
		return err
	}
	if ok && (block.Height < last.Height || block.Time.Before(last.Time)) {
		return fmt.Errorf("%w: height %d, last %d", ErrBlockRegressed, block.Height, last.Height)
	}
	return nil
}

func (g *Governance) refresh(p *proposal.Proposal, block voting.Block) (proposal.Status, error) {
	start := time.Now()
	old, err := p.UpdateStatus(block)
	resolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return old, errors.Wrapf(err, "update status of proposal %d", p.ID)
	}
	return old, nil
}

// Propose opens a new proposal and returns its ID.
func (g *Governance) Propose(block voting.Block, proposer string, args ProposeArgs) (uint64, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := g.checkBlock(block); err != nil {
		return 0, err
	}
	cfg, err := g.store.Config()
	if err != nil {
		return 0, errors.Wrap(err, "load config")
	}

	if g.activity != nil {
		active, err := g.activity.IsActive(block.Height)
		if err != nil {
			return 0, errors.Wrap(err, "check activity")
		}
		if !active {
			return 0, ErrInactive
		}
	}

	proposerPower, err := g.source.VotingPower(proposer, block.Height)
	if err != nil {
		return 0, errors.Wrapf(err, "get voting power of %s", proposer)
	}
	totalPower, err := g.source.TotalPower(block.Height)
	if err != nil {
		return 0, errors.Wrap(err, "get total power")
	}

	policy, err := NewCreationPolicy(cfg.CreationPolicy)
	if err != nil {
		return 0, err
	}
	allowed, err := policy.Allow(proposerPower, totalPower, block.Height)
	if err != nil {
		return 0, err
	}
	if !allowed {
		return 0, fmt.Errorf("%w: %s rejected by creation policy %q", ErrUnauthorized, proposer, policy)
	}

	params := proposal.Params{
		Title:           args.Title,
		Description:     args.Description,
		Proposer:        proposer,
		Choices:         args.Choices,
		VotingStrategy:  cfg.VotingStrategy,
		MinVotingPeriod: cfg.MinVotingPeriod,
		MaxVotingPeriod: cfg.MaxVotingPeriod,
		TotalPower:      totalPower,
		AllowRevoting:   cfg.AllowRevoting,
	}
	if cfg.Veto != nil {
		veto := *cfg.Veto
		params.Veto = &veto
	}
	if cfg.Deposit != nil {
		params.Deposit = cfg.Deposit.info(proposer)
	}

	id := g.store.nextID()
	p, err := proposal.New(id, params, block)
	if err != nil {
		return 0, err
	}

	w := g.store.NewWrite()
	if p.Deposit != nil && g.deposits != nil {
		if err := g.deposits.LockDeposit(w.Batch(), id, p.Deposit); err != nil {
			return 0, errors.Wrapf(err, "lock deposit of %s", proposer)
		}
	}
	w.PutProposal(p)
	w.PutLastBlock(block)
	if err := w.Commit(); err != nil {
		return 0, err
	}

	proposalsCreated.Inc()
	g.hooks.proposalCreated(p)
	g.logger.WithFields(logrus.Fields{
		"id":         id,
		"proposer":   proposer,
		"choices":    len(p.Choices),
		"expiration": p.Expiration.String(),
		"total":      totalPower.String(),
	}).Info("Create proposal")

	return id, nil
}

// Vote casts, or with revoting enabled changes, voter's ballot. The power
// recorded is the voter's power at the proposal's start height.
func (g *Governance) Vote(block voting.Block, voter string, id uint64, option uint32, rationale string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := g.checkBlock(block); err != nil {
		return err
	}
	p, err := g.store.Proposal(id)
	if err != nil {
		return err
	}
	old, err := g.refresh(p, block)
	if err != nil {
		return err
	}
	if p.Status != proposal.StatusOpen {
		return &StatusError{Op: "vote on", Expected: proposal.StatusOpen, Actual: p.Status}
	}
	if _, ok := p.Choice(option); !ok {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, option)
	}

	votePower, err := g.source.VotingPower(voter, p.StartHeight)
	if err != nil {
		return errors.Wrapf(err, "get voting power of %s", voter)
	}
	if votePower.IsZero() {
		return fmt.Errorf("%w: %s at height %d", ErrNotRegistered, voter, p.StartHeight)
	}

	kind := "new"
	prev, err := g.store.Ballot(id, voter)
	switch {
	case err == nil:
		if !p.AllowRevoting {
			return ErrAlreadyVoted
		}
		if prev.Option == option {
			return ErrAlreadyCast
		}
		if err := p.Votes.RemoveVote(prev.Option, prev.Power); err != nil {
			return err
		}
		kind = "revote"
	case errors.Is(err, ErrBallotNotFound):
	default:
		return err
	}

	if err := p.Votes.AddVote(option, votePower); err != nil {
		return err
	}
	total, err := p.Votes.Total()
	if err != nil {
		return err
	}
	if total.GT(p.TotalPower) {
		return fmt.Errorf("%w: %s > %s", ErrTallyExceedsPower, total, p.TotalPower)
	}

	if _, err := g.refresh(p, block); err != nil {
		return err
	}

	w := g.store.NewWrite()
	w.PutProposal(p)
	w.PutBallot(id, &Ballot{
		Voter:     voter,
		Power:     votePower,
		Option:    option,
		Rationale: rationale,
	})
	w.PutLastBlock(block)
	if err := w.Commit(); err != nil {
		return err
	}

	votesCast.WithLabelValues(kind).Inc()
	g.hooks.voteCast(id, voter, option)
	g.recordTransition(id, old, p.Status)
	g.logger.WithFields(logrus.Fields{
		"id":     id,
		"voter":  voter,
		"option": option,
		"power":  votePower.String(),
		"kind":   kind,
		"status": p.Status,
	}).Info("Cast vote")

	return nil
}

// UpdateRationale replaces the rationale of an existing ballot without
// touching the tally.
func (g *Governance) UpdateRationale(block voting.Block, voter string, id uint64, rationale string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := g.checkBlock(block); err != nil {
		return err
	}
	ballot, err := g.store.Ballot(id, voter)
	if err != nil {
		return err
	}
	ballot.Rationale = rationale

	w := g.store.NewWrite()
	w.PutBallot(id, ballot)
	w.PutLastBlock(block)
	return w.Commit()
}

// Execute runs the winning choice's messages of a passed proposal.
func (g *Governance) Execute(block voting.Block, sender string, id uint64) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := g.checkBlock(block); err != nil {
		return err
	}
	cfg, err := g.store.Config()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	p, err := g.store.Proposal(id)
	if err != nil {
		return err
	}
	old, err := g.refresh(p, block)
	if err != nil {
		return err
	}

	switch p.Status {
	case proposal.StatusPassed:
		if cfg.OnlyMembersExecute {
			senderPower, err := g.source.VotingPower(sender, p.StartHeight)
			if err != nil {
				return errors.Wrapf(err, "get voting power of %s", sender)
			}
			if senderPower.IsZero() {
				return fmt.Errorf("%w: %s is not a member", ErrUnauthorized, sender)
			}
		}
	case proposal.StatusVetoTimelock:
		if p.Veto == nil || !p.Veto.EarlyExecute || sender != p.Veto.Vetoer {
			return ErrTimelockActive
		}
	default:
		return &StatusError{Op: "execute", Expected: proposal.StatusPassed, Actual: p.Status}
	}

	msgs, err := p.WinningMessages()
	if err != nil {
		return err
	}

	result := "success"
	event := proposal.EventExecute
	if g.executor != nil {
		if err := g.executor.Execute(id, msgs); err != nil {
			if !cfg.CloseProposalOnExecutionFailure {
				executions.WithLabelValues("error").Inc()
				return errors.Wrapf(err, "execute proposal %d", id)
			}
			g.logger.WithFields(logrus.Fields{
				"id":  id,
				"err": err,
			}).Warn("Proposal execution failed")
			result = "failed"
			event = proposal.EventFailExecution
		}
	}
	if err := p.Fire(event); err != nil {
		return err
	}

	w := g.store.NewWrite()
	w.PutLastBlock(block)
	if err := g.finish(w, p); err != nil {
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}

	executions.WithLabelValues(result).Inc()
	g.recordTransition(id, old, p.Status)
	g.logger.WithFields(logrus.Fields{
		"id":       id,
		"sender":   sender,
		"messages": len(msgs),
		"status":   p.Status,
	}).Info("Execute proposal")

	return nil
}

// Close finalizes a rejected proposal.
func (g *Governance) Close(block voting.Block, id uint64) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := g.checkBlock(block); err != nil {
		return err
	}
	p, err := g.store.Proposal(id)
	if err != nil {
		return err
	}
	old, err := g.refresh(p, block)
	if err != nil {
		return err
	}
	if p.Status != proposal.StatusRejected {
		return &StatusError{Op: "close", Expected: proposal.StatusRejected, Actual: p.Status}
	}
	if err := p.Fire(proposal.EventClose); err != nil {
		return err
	}

	w := g.store.NewWrite()
	w.PutLastBlock(block)
	if err := g.finish(w, p); err != nil {
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}

	g.recordTransition(id, old, p.Status)
	g.logger.WithField("id", id).Info("Close proposal")
	return nil
}

// Veto cancels a proposal in its timelock, or an open one if the veto
// config allows vetoing before it passes.
func (g *Governance) Veto(block voting.Block, sender string, id uint64) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := g.checkBlock(block); err != nil {
		return err
	}
	p, err := g.store.Proposal(id)
	if err != nil {
		return err
	}
	if p.Veto == nil {
		return ErrNoVetoConfig
	}
	if sender != p.Veto.Vetoer {
		return fmt.Errorf("%w: %s is not the vetoer", ErrUnauthorized, sender)
	}
	old, err := g.refresh(p, block)
	if err != nil {
		return err
	}

	switch p.Status {
	case proposal.StatusOpen:
		if !p.Veto.VetoBeforePassed {
			return ErrNotVetoable
		}
	case proposal.StatusVetoTimelock:
	default:
		return &StatusError{Op: "veto", Expected: proposal.StatusVetoTimelock, Actual: p.Status}
	}
	if err := p.Fire(proposal.EventVeto); err != nil {
		return err
	}

	w := g.store.NewWrite()
	w.PutLastBlock(block)
	if err := g.finish(w, p); err != nil {
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}

	g.recordTransition(id, old, p.Status)
	g.logger.WithFields(logrus.Fields{
		"id":     id,
		"vetoer": sender,
	}).Info("Veto proposal")
	return nil
}

// finish adds the proposal and, once it is final, its deposit settlement
// to w.
func (g *Governance) finish(w *Write, p *proposal.Proposal) error {
	if p.Status.IsFinal() && p.Deposit != nil {
		w.PutDepositRecord(p.ID, &DepositRecord{
			Deposit:  *p.Deposit,
			Status:   p.Status,
			Refunded: p.Deposit.Refundable(p.Status),
		})
		if g.deposits != nil {
			if err := g.deposits.SettleDeposit(w.Batch(), p.ID, p.Status, p.Deposit); err != nil {
				return errors.Wrapf(err, "settle deposit of proposal %d", p.ID)
			}
		}
	}
	w.PutProposal(p)
	return nil
}

// recordTransition runs after a commit.
func (g *Governance) recordTransition(id uint64, old, new proposal.Status) {
	if old == new {
		return
	}
	g.hooks.statusChanged(id, old, new)
	statusTransitions.WithLabelValues(string(old), string(new)).Inc()
	g.logger.WithFields(logrus.Fields{
		"id":   id,
		"from": old,
		"to":   new,
	}).Debug("Proposal status changed")
}

// UpdateConfig replaces the config. Only the configured DAO may call it.
func (g *Governance) UpdateConfig(block voting.Block, sender string, cfg *Config) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := g.checkBlock(block); err != nil {
		return err
	}
	current, err := g.store.Config()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if sender != current.DAO {
		return fmt.Errorf("%w: %s is not the dao", ErrUnauthorized, sender)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	w := g.store.NewWrite()
	w.PutConfig(cfg)
	w.PutLastBlock(block)
	if err := w.Commit(); err != nil {
		return err
	}
	g.logger.WithField("dao", cfg.DAO).Info("Update governance config")
	return nil
}
