package governance

import (
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	fuzz "github.com/google/gofuzz"
	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/internal/power"
	"github.com/meshplus/govhub/internal/power/mock_power"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/meshplus/govhub/pkg/storage/leveldb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(height uint64) voting.Block {
	return voting.Block{Height: height}
}

func testConfig() *Config {
	return &Config{
		DAO:             "dao",
		VotingStrategy:  voting.SingleChoice(voting.Majority()),
		MaxVotingPeriod: voting.Blocks(10),
		CreationPolicy:  DefaultCreationPolicy,
	}
}

func testArgs() ProposeArgs {
	return ProposeArgs{
		Title:       "treasury",
		Description: "where should the funds go",
		Choices: []voting.Option{
			{Title: "grants", Msgs: []voting.Message{{Target: "treasury", Payload: "grants"}}},
			{Title: "buyback", Msgs: []voting.Message{{Target: "treasury", Payload: "buyback"}}},
		},
	}
}

// newTestGroup has alice 40, bob 30 and carol 30 from height 1.
func newTestGroup(t *testing.T) *power.Group {
	g := power.NewGroup(logrus.New())
	require.Nil(t, g.SetWeight("alice", voting.NewAmount(40), 1))
	require.Nil(t, g.SetWeight("bob", voting.NewAmount(30), 1))
	require.Nil(t, g.SetWeight("carol", voting.NewAmount(30), 1))
	return g
}

func newTestDB(t *testing.T) storage.Storage {
	db, err := leveldb.NewMemory()
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestGovernance(t *testing.T, cfg *Config, opts ...Option) (*Governance, *power.Group) {
	group := newTestGroup(t)
	g, err := New(newTestDB(t), group, cfg, 16, logrus.New(), opts...)
	require.Nil(t, err)
	return g, group
}

type recordingExecutor struct {
	executed map[uint64][]voting.Message
	err      error
}

func (e *recordingExecutor) Execute(id uint64, msgs []voting.Message) error {
	if e.err != nil {
		return e.err
	}
	if e.executed == nil {
		e.executed = make(map[uint64][]voting.Message)
	}
	e.executed[id] = msgs
	return nil
}

type recordingHook struct {
	created []uint64
	changed [][2]proposal.Status
	votes   []string
	err     error
}

func (h *recordingHook) ProposalCreated(p *proposal.Proposal) error {
	if h.err != nil {
		return h.err
	}
	h.created = append(h.created, p.ID)
	return nil
}

func (h *recordingHook) ProposalStatusChanged(id uint64, old, new proposal.Status) error {
	h.changed = append(h.changed, [2]proposal.Status{old, new})
	return nil
}

func (h *recordingHook) VoteCast(id uint64, voter string, option uint32) error {
	h.votes = append(h.votes, voter)
	return nil
}

func lockedKey(id uint64) []byte {
	return []byte(fmt.Sprintf("locked-%d", id))
}

type recordingDeposits struct {
	settled map[uint64]proposal.Status
	err     error
}

func (d *recordingDeposits) LockDeposit(w storage.Batch, id uint64, deposit *proposal.DepositInfo) error {
	if d.err != nil {
		return d.err
	}
	w.Put(lockedKey(id), []byte(deposit.Depositor))
	return nil
}

func (d *recordingDeposits) SettleDeposit(w storage.Batch, id uint64, status proposal.Status, deposit *proposal.DepositInfo) error {
	if d.settled == nil {
		d.settled = make(map[uint64]proposal.Status)
	}
	d.settled[id] = status
	w.Delete(lockedKey(id))
	return nil
}

// failingDB fails every batch commit while fail is set.
type failingDB struct {
	storage.Storage
	fail bool
}

func (db *failingDB) NewBatch() storage.Batch {
	return &failingBatch{Batch: db.Storage.NewBatch(), db: db}
}

type failingBatch struct {
	storage.Batch
	db *failingDB
}

func (b *failingBatch) Commit() error {
	if b.db.fail {
		return errors.New("disk full")
	}
	return b.Batch.Commit()
}

func TestPropose(t *testing.T) {
	g, _ := newTestGovernance(t, testConfig())

	before := testutil.ToFloat64(proposalsCreated)
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, uint64(1), g.ProposalCount())
	assert.Equal(t, before+1, testutil.ToFloat64(proposalsCreated))

	p, err := g.Proposal(at(10), id)
	require.Nil(t, err)
	assert.Equal(t, "alice", p.Proposer)
	assert.Equal(t, uint64(10), p.StartHeight)
	assert.Equal(t, voting.AtHeight(20), p.Expiration)
	assert.Equal(t, "100", p.TotalPower.String())
	assert.Equal(t, proposal.StatusOpen, p.Status)
	assert.Len(t, p.Choices, 3)

	id, err = g.Propose(at(10), "bob", testArgs())
	require.Nil(t, err)
	assert.Equal(t, uint64(2), id)

	_, err = g.Propose(at(10), "mallory", testArgs())
	assert.ErrorIs(t, err, ErrUnauthorized)

	args := testArgs()
	args.Choices = args.Choices[:1]
	_, err = g.Propose(at(10), "alice", args)
	assert.ErrorIs(t, err, voting.ErrWrongNumberOfChoices)
	assert.Equal(t, uint64(2), g.ProposalCount())

	_, err = g.Proposal(at(10), 3)
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestPropose_CreationPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.CreationPolicy = "power >= total * 0.35"
	g, _ := newTestGovernance(t, cfg)

	_, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	_, err = g.Propose(at(10), "bob", testArgs())
	assert.ErrorIs(t, err, ErrUnauthorized)

	cfg.CreationPolicy = "power +"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestVote_PassesWhenUnbeatable(t *testing.T) {
	g, _ := newTestGovernance(t, testConfig())
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	newVotes := testutil.ToFloat64(votesCast.WithLabelValues("new"))
	require.Nil(t, g.Vote(at(11), "alice", id, 0, ""))
	status, err := g.CurrentStatus(at(11), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusOpen, status)

	require.Nil(t, g.Vote(at(11), "bob", id, 0, "agree"))
	status, err = g.CurrentStatus(at(11), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusPassed, status)
	assert.Equal(t, newVotes+2, testutil.ToFloat64(votesCast.WithLabelValues("new")))

	err = g.Vote(at(12), "carol", id, 1, "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, proposal.StatusOpen, statusErr.Expected)
	assert.Equal(t, proposal.StatusPassed, statusErr.Actual)

	ballot, err := g.Ballot(id, "bob")
	require.Nil(t, err)
	assert.Equal(t, "30", ballot.Power.String())
	assert.Equal(t, "agree", ballot.Rationale)
	_, err = g.Ballot(id, "carol")
	assert.ErrorIs(t, err, ErrBallotNotFound)
}

func TestVote_Errors(t *testing.T) {
	g, _ := newTestGovernance(t, testConfig())
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	assert.ErrorIs(t, g.Vote(at(11), "mallory", id, 0, ""), ErrNotRegistered)
	assert.ErrorIs(t, g.Vote(at(11), "alice", id, 3, ""), ErrInvalidChoice)
	assert.ErrorIs(t, g.Vote(at(11), "alice", 42, 0, ""), ErrProposalNotFound)

	require.Nil(t, g.Vote(at(11), "alice", id, 0, ""))
	assert.ErrorIs(t, g.Vote(at(11), "alice", id, 1, ""), ErrAlreadyVoted)
	assert.ErrorIs(t, g.Vote(at(9), "bob", id, 1, ""), ErrBlockRegressed)

	// expired without quorum
	err = g.Vote(at(20), "bob", id, 1, "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, proposal.StatusRejected, statusErr.Actual)
}

func TestVote_PowerFrozenAtStart(t *testing.T) {
	g, group := newTestGovernance(t, testConfig())
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	// joins in the proposal's own block
	require.Nil(t, group.SetWeight("dave", voting.NewAmount(500), 10))
	assert.ErrorIs(t, g.Vote(at(11), "dave", id, 0, ""), ErrNotRegistered)

	require.Nil(t, group.SetWeight("alice", voting.NewAmount(1), 11))
	require.Nil(t, g.Vote(at(12), "alice", id, 0, ""))
	ballot, err := g.Ballot(id, "alice")
	require.Nil(t, err)
	assert.Equal(t, "40", ballot.Power.String())

	p, err := g.Proposal(at(12), id)
	require.Nil(t, err)
	assert.Equal(t, "100", p.TotalPower.String())
}

func TestVote_Revoting(t *testing.T) {
	cfg := testConfig()
	cfg.AllowRevoting = true
	g, _ := newTestGovernance(t, cfg)
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	require.Nil(t, g.Vote(at(11), "alice", id, 0, ""))
	assert.ErrorIs(t, g.Vote(at(11), "alice", id, 0, ""), ErrAlreadyCast)

	revotes := testutil.ToFloat64(votesCast.WithLabelValues("revote"))
	require.Nil(t, g.Vote(at(12), "alice", id, 1, "changed my mind"))
	assert.Equal(t, revotes+1, testutil.ToFloat64(votesCast.WithLabelValues("revote")))

	p, err := g.Proposal(at(12), id)
	require.Nil(t, err)
	assert.True(t, p.Votes.VoteWeights[0].IsZero())
	assert.Equal(t, "40", p.Votes.VoteWeights[1].String())

	require.Nil(t, g.Vote(at(12), "bob", id, 1, ""))
	require.Nil(t, g.Vote(at(12), "carol", id, 1, ""))

	// everyone voted, but votes can still move until expiration
	status, err := g.CurrentStatus(at(19), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusOpen, status)

	status, err = g.CurrentStatus(at(20), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusPassed, status)
}

func TestVote_TallyNeverExceedsTotal(t *testing.T) {
	cfg := testConfig()
	cfg.AllowRevoting = true
	cfg.MaxVotingPeriod = voting.Blocks(1000)
	g, _ := newTestGovernance(t, cfg)
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	f := fuzz.New().NilChance(0)
	voters := []string{"alice", "bob", "carol", "mallory"}
	for i := 0; i < 200; i++ {
		var v, option uint8
		f.Fuzz(&v)
		f.Fuzz(&option)
		_ = g.Vote(at(11), voters[int(v)%len(voters)], id, uint32(option%4), "")

		p, err := g.Proposal(at(11), id)
		require.Nil(t, err)
		total, err := p.Votes.Total()
		require.Nil(t, err)
		assert.True(t, total.Cmp(p.TotalPower) <= 0)

		ballots, err := g.ListBallots(id, "", 10)
		require.Nil(t, err)
		sum := voting.ZeroAmount()
		for _, b := range ballots {
			sum, err = sum.Add(b.Power)
			require.Nil(t, err)
		}
		assert.True(t, sum.Equal(total), "ballots %s tally %s", sum, total)
	}
}

func TestUpdateRationale(t *testing.T) {
	g, _ := newTestGovernance(t, testConfig())
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	require.Nil(t, g.Vote(at(11), "alice", id, 0, "first"))

	require.Nil(t, g.UpdateRationale(at(12), "alice", id, "second"))
	ballot, err := g.Ballot(id, "alice")
	require.Nil(t, err)
	assert.Equal(t, "second", ballot.Rationale)
	assert.Equal(t, uint32(0), ballot.Option)

	assert.ErrorIs(t, g.UpdateRationale(at(12), "bob", id, "none"), ErrBallotNotFound)
}

func TestExecute(t *testing.T) {
	cfg := testConfig()
	cfg.Deposit = &DepositConfig{Denom: "gov", Amount: voting.NewAmount(10), RefundPolicy: proposal.RefundOnlyPassed}
	executor := &recordingExecutor{}
	deposits := &recordingDeposits{}
	g, _ := newTestGovernance(t, cfg, WithMessageExecutor(executor), WithDepositHandler(deposits))

	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	err = g.Execute(at(11), "carol", id)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, proposal.StatusOpen, statusErr.Actual)

	require.Nil(t, g.Vote(at(11), "alice", id, 1, ""))
	require.Nil(t, g.Vote(at(11), "bob", id, 1, ""))

	successes := testutil.ToFloat64(executions.WithLabelValues("success"))
	require.Nil(t, g.Execute(at(12), "carol", id))
	assert.Equal(t, successes+1, testutil.ToFloat64(executions.WithLabelValues("success")))
	require.Len(t, executor.executed[id], 1)
	assert.Equal(t, "buyback", executor.executed[id][0].Payload)
	assert.Equal(t, proposal.StatusExecuted, deposits.settled[id])

	p, err := g.Proposal(at(12), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusExecuted, p.Status)

	record, err := g.Deposit(id)
	require.Nil(t, err)
	assert.True(t, record.Refunded)
	assert.Equal(t, "alice", record.Deposit.Depositor)

	err = g.Execute(at(13), "carol", id)
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, proposal.StatusExecuted, statusErr.Actual)
}

func TestExecute_OnlyMembers(t *testing.T) {
	cfg := testConfig()
	cfg.OnlyMembersExecute = true
	g, _ := newTestGovernance(t, cfg)

	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	require.Nil(t, g.Vote(at(11), "alice", id, 0, ""))
	require.Nil(t, g.Vote(at(11), "bob", id, 0, ""))

	assert.ErrorIs(t, g.Execute(at(12), "mallory", id), ErrUnauthorized)
	require.Nil(t, g.Execute(at(12), "carol", id))
}

func TestExecute_Failure(t *testing.T) {
	executor := &recordingExecutor{err: errors.New("out of gas")}
	g, _ := newTestGovernance(t, testConfig(), WithMessageExecutor(executor))
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	require.Nil(t, g.Vote(at(11), "alice", id, 0, ""))
	require.Nil(t, g.Vote(at(11), "bob", id, 0, ""))

	assert.NotNil(t, g.Execute(at(12), "carol", id))
	status, err := g.CurrentStatus(at(12), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusPassed, status)

	cfg := testConfig()
	cfg.CloseProposalOnExecutionFailure = true
	cfg.Deposit = &DepositConfig{Denom: "gov", Amount: voting.NewAmount(10), RefundPolicy: proposal.RefundOnlyPassed}
	g, _ = newTestGovernance(t, cfg, WithMessageExecutor(executor))
	id, err = g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	require.Nil(t, g.Vote(at(11), "alice", id, 0, ""))
	require.Nil(t, g.Vote(at(11), "bob", id, 0, ""))

	require.Nil(t, g.Execute(at(12), "carol", id))
	status, err = g.CurrentStatus(at(12), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusExecutionFailed, status)

	record, err := g.Deposit(id)
	require.Nil(t, err)
	assert.True(t, record.Refunded)
}

func TestClose(t *testing.T) {
	cfg := testConfig()
	cfg.Deposit = &DepositConfig{Denom: "gov", Amount: voting.NewAmount(10), RefundPolicy: proposal.RefundOnlyPassed}
	hook := &recordingHook{}
	g, _ := newTestGovernance(t, cfg, WithHooks(hook))

	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	err = g.Close(at(11), id)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, proposal.StatusRejected, statusErr.Expected)

	require.Nil(t, g.Vote(at(11), "alice", id, 2, ""))
	require.Nil(t, g.Vote(at(11), "bob", id, 2, ""))
	status, err := g.CurrentStatus(at(11), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusRejected, status)

	require.Nil(t, g.Close(at(12), id))
	status, err = g.CurrentStatus(at(12), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusClosed, status)

	record, err := g.Deposit(id)
	require.Nil(t, err)
	assert.False(t, record.Refunded)

	assert.Equal(t, []uint64{id}, hook.created)
	assert.Equal(t, []string{"alice", "bob"}, hook.votes)
	assert.Equal(t, [][2]proposal.Status{
		{proposal.StatusOpen, proposal.StatusRejected},
		{proposal.StatusRejected, proposal.StatusClosed},
	}, hook.changed)
}

func TestClose_Expired(t *testing.T) {
	g, _ := newTestGovernance(t, testConfig())
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	// stored status is still open, close recomputes it
	require.Nil(t, g.Close(at(20), id))
	p, err := g.Proposal(at(20), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusClosed, p.Status)
}

func TestVeto(t *testing.T) {
	cfg := testConfig()
	cfg.Veto = &proposal.VetoConfig{Vetoer: "vetoer", TimelockDuration: voting.Blocks(5), EarlyExecute: true}
	executor := &recordingExecutor{}
	g, _ := newTestGovernance(t, cfg, WithMessageExecutor(executor))

	var ids []uint64
	for i := 0; i < 3; i++ {
		id, err := g.Propose(at(10), "alice", testArgs())
		require.Nil(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids {
		require.Nil(t, g.Vote(at(11), "alice", id, 0, ""))
		require.Nil(t, g.Vote(at(11), "bob", id, 0, ""))
	}
	first, second, third := ids[0], ids[1], ids[2]

	p, err := g.Proposal(at(11), first)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusVetoTimelock, p.Status)
	require.NotNil(t, p.TimelockExpiration)
	assert.Equal(t, voting.AtHeight(25), *p.TimelockExpiration)

	assert.ErrorIs(t, g.Execute(at(12), "carol", first), ErrTimelockActive)
	assert.ErrorIs(t, g.Veto(at(12), "carol", first), ErrUnauthorized)
	require.Nil(t, g.Veto(at(12), "vetoer", first))
	status, err := g.CurrentStatus(at(12), first)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusVetoed, status)

	require.Nil(t, g.Execute(at(12), "vetoer", second))
	assert.Len(t, executor.executed[second], 1)

	status, err = g.CurrentStatus(at(25), third)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusPassed, status)
	err = g.Veto(at(25), "vetoer", third)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, proposal.StatusPassed, statusErr.Actual)
	require.Nil(t, g.Execute(at(25), "carol", third))
}

func TestVeto_BeforePassed(t *testing.T) {
	cfg := testConfig()
	cfg.Veto = &proposal.VetoConfig{Vetoer: "vetoer", TimelockDuration: voting.Blocks(5)}
	g, _ := newTestGovernance(t, cfg)
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	assert.ErrorIs(t, g.Veto(at(11), "vetoer", id), ErrNotVetoable)

	cfg.Veto.VetoBeforePassed = true
	g, _ = newTestGovernance(t, cfg)
	id, err = g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	require.Nil(t, g.Veto(at(11), "vetoer", id))
	status, err := g.CurrentStatus(at(11), id)
	require.Nil(t, err)
	assert.Equal(t, proposal.StatusVetoed, status)

	g, _ = newTestGovernance(t, testConfig())
	id, err = g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	assert.ErrorIs(t, g.Veto(at(11), "vetoer", id), ErrNoVetoConfig)
}

func TestPropose_DepositLockFails(t *testing.T) {
	cfg := testConfig()
	cfg.Deposit = &DepositConfig{Denom: "gov", Amount: voting.NewAmount(10), RefundPolicy: proposal.RefundAlways}
	deposits := &recordingDeposits{err: errors.New("insufficient funds")}
	g, _ := newTestGovernance(t, cfg, WithDepositHandler(deposits))

	_, err := g.Propose(at(10), "alice", testArgs())
	assert.ErrorIs(t, err, deposits.err)
	assert.Equal(t, uint64(0), g.ProposalCount())
	_, err = g.Proposal(at(10), 1)
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestHooks_AfterCommit(t *testing.T) {
	db := &failingDB{Storage: newTestDB(t)}
	cfg := testConfig()
	cfg.Deposit = &DepositConfig{Denom: "gov", Amount: voting.NewAmount(10), RefundPolicy: proposal.RefundAlways}
	hook := &recordingHook{}
	deposits := &recordingDeposits{}
	g, err := New(db, newTestGroup(t), cfg, 16, logrus.New(), WithHooks(hook), WithDepositHandler(deposits))
	require.Nil(t, err)

	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	assert.Equal(t, []uint64{id}, hook.created)
	locked, err := db.Has(lockedKey(id))
	require.Nil(t, err)
	assert.True(t, locked)

	db.fail = true
	_, err = g.Propose(at(11), "alice", testArgs())
	assert.NotNil(t, err)
	assert.NotNil(t, g.Vote(at(11), "bob", id, 0, ""))

	assert.Equal(t, []uint64{id}, hook.created)
	assert.Empty(t, hook.votes)
	assert.Empty(t, hook.changed)
	assert.Equal(t, uint64(1), g.ProposalCount())
	locked, err = db.Has(lockedKey(id + 1))
	require.Nil(t, err)
	assert.False(t, locked)
	_, err = g.Ballot(id, "bob")
	assert.ErrorIs(t, err, ErrBallotNotFound)

	// a failing hook does not undo what was committed
	db.fail = false
	hook.err = errors.New("subscriber down")
	require.Nil(t, g.Vote(at(11), "bob", id, 0, ""))
	_, err = g.Ballot(id, "bob")
	require.Nil(t, err)
	_, err = g.Propose(at(12), "alice", testArgs())
	require.Nil(t, err)
	assert.Equal(t, uint64(2), g.ProposalCount())
	assert.Equal(t, []uint64{id}, hook.created)
}

func TestUpdateConfig(t *testing.T) {
	g, _ := newTestGovernance(t, testConfig())
	old, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	cfg := testConfig()
	cfg.VotingStrategy = voting.SingleChoice(voting.Percent(voting.DecimalOne()))
	cfg.MaxVotingPeriod = voting.Blocks(20)

	assert.ErrorIs(t, g.UpdateConfig(at(11), "mallory", cfg), ErrUnauthorized)
	bad := testConfig()
	bad.MaxVotingPeriod = voting.Blocks(0)
	assert.ErrorIs(t, g.UpdateConfig(at(11), "dao", bad), ErrInvalidConfig)
	require.Nil(t, g.UpdateConfig(at(11), "dao", cfg))

	stored, err := g.Config()
	require.Nil(t, err)
	assert.Equal(t, voting.QuorumPercent, stored.VotingStrategy.Quorum.Kind)

	id, err := g.Propose(at(12), "alice", testArgs())
	require.Nil(t, err)
	p, err := g.Proposal(at(12), id)
	require.Nil(t, err)
	assert.Equal(t, voting.AtHeight(32), p.Expiration)
	assert.Equal(t, voting.QuorumPercent, p.VotingStrategy.Quorum.Kind)

	p, err = g.Proposal(at(12), old)
	require.Nil(t, err)
	assert.Equal(t, voting.QuorumMajority, p.VotingStrategy.Quorum.Kind)
}

func TestQueries(t *testing.T) {
	g, _ := newTestGovernance(t, testConfig())
	for i := 0; i < 3; i++ {
		_, err := g.Propose(at(10), "alice", testArgs())
		require.Nil(t, err)
	}

	ps, err := g.ListProposals(at(10), 0, 2)
	require.Nil(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, uint64(1), ps[0].ID)
	assert.Equal(t, uint64(2), ps[1].ID)

	ps, err = g.ListProposals(at(10), 2, 0)
	require.Nil(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, uint64(3), ps[0].ID)

	ps, err = g.ReverseProposals(at(10), 0, 2)
	require.Nil(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, uint64(3), ps[0].ID)
	assert.Equal(t, uint64(2), ps[1].ID)

	ps, err = g.ReverseProposals(at(10), 2, 10)
	require.Nil(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, uint64(1), ps[0].ID)

	// listing reports the live status without writing it
	ps, err = g.ListProposals(at(30), 0, 10)
	require.Nil(t, err)
	for _, p := range ps {
		assert.Equal(t, proposal.StatusRejected, p.Status)
	}

	require.Nil(t, g.Vote(at(11), "alice", 1, 0, ""))
	require.Nil(t, g.Vote(at(11), "bob", 1, 1, ""))
	require.Nil(t, g.Vote(at(11), "carol", 1, 2, ""))

	ballots, err := g.ListBallots(1, "", 2)
	require.Nil(t, err)
	require.Len(t, ballots, 2)
	assert.Equal(t, "alice", ballots[0].Voter)
	assert.Equal(t, "bob", ballots[1].Voter)

	ballots, err = g.ListBallots(1, "bob", 10)
	require.Nil(t, err)
	require.Len(t, ballots, 1)
	assert.Equal(t, "carol", ballots[0].Voter)

	ballots, err = g.ListBallots(2, "", 10)
	require.Nil(t, err)
	assert.Empty(t, ballots)
}

func TestReopen(t *testing.T) {
	db := newTestDB(t)
	group := newTestGroup(t)
	g, err := New(db, group, testConfig(), 0, logrus.New())
	require.Nil(t, err)
	_, err = g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)
	require.Nil(t, g.Vote(at(11), "alice", 1, 0, ""))

	reopened, err := New(db, group, nil, 0, logrus.New())
	require.Nil(t, err)
	assert.Equal(t, uint64(1), reopened.ProposalCount())
	p, err := reopened.Proposal(at(11), 1)
	require.Nil(t, err)
	assert.Equal(t, "40", p.Votes.VoteWeights[0].String())
	assert.ErrorIs(t, reopened.Vote(at(10), "bob", 1, 0, ""), ErrBlockRegressed)

	id, err := reopened.Propose(at(12), "bob", testArgs())
	require.Nil(t, err)
	assert.Equal(t, uint64(2), id)

	_, err = New(newTestDB(t), group, nil, 0, logrus.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPowerSourceErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock_power.NewMockSource(ctrl)
	activity := mock_power.NewMockActivityChecker(ctrl)

	g, err := New(newTestDB(t), source, testConfig(), 0, logrus.New(), WithActivityChecker(activity))
	require.Nil(t, err)

	activity.EXPECT().IsActive(uint64(10)).Return(false, nil)
	_, err = g.Propose(at(10), "alice", testArgs())
	assert.ErrorIs(t, err, ErrInactive)

	boom := errors.New("boom")
	activity.EXPECT().IsActive(gomock.Any()).Return(true, nil).AnyTimes()
	source.EXPECT().VotingPower("alice", uint64(10)).Return(voting.Amount{}, boom)
	_, err = g.Propose(at(10), "alice", testArgs())
	assert.ErrorIs(t, err, boom)

	source.EXPECT().VotingPower("alice", uint64(10)).Return(voting.NewAmount(5), nil)
	source.EXPECT().TotalPower(uint64(10)).Return(voting.Amount{}, boom)
	_, err = g.Propose(at(10), "alice", testArgs())
	assert.ErrorIs(t, err, boom)

	source.EXPECT().VotingPower("alice", uint64(10)).Return(voting.NewAmount(5), nil)
	source.EXPECT().TotalPower(uint64(10)).Return(voting.ZeroAmount(), nil)
	_, err = g.Propose(at(10), "alice", testArgs())
	assert.ErrorIs(t, err, proposal.ErrZeroTotalPower)

	source.EXPECT().VotingPower("alice", uint64(10)).Return(voting.NewAmount(5), nil)
	source.EXPECT().TotalPower(uint64(10)).Return(voting.NewAmount(10), nil)
	id, err := g.Propose(at(10), "alice", testArgs())
	require.Nil(t, err)

	source.EXPECT().VotingPower("bob", uint64(10)).Return(voting.Amount{}, boom)
	assert.ErrorIs(t, g.Vote(at(11), "bob", id, 0, ""), boom)
	_, err = g.Ballot(id, "bob")
	assert.ErrorIs(t, err, ErrBallotNotFound)
}
