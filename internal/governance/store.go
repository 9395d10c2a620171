package governance

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

const (
	proposalPrefix   = "proposal-"
	ballotPrefix     = "ballot-"
	depositPrefix    = "deposit-"
	proposalCountKey = "proposal-count"
	configKey        = "config"
	lastBlockKey     = "last-block"

	DefaultCacheSize = 256
)

// Ballot is a voter's recorded vote on one proposal.
type Ballot struct {
	Voter     string        `json:"voter"`
	Power     voting.Amount `json:"power"`
	Option    uint32        `json:"option"`
	Rationale string        `json:"rationale,omitempty"`
}

func proposalKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", proposalPrefix, id))
}

func ballotsPrefix(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d-", ballotPrefix, id))
}

func ballotKey(id uint64, voter string) []byte {
	return append(ballotsPrefix(id), []byte(voter)...)
}

func depositKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", depositPrefix, id))
}

// Store persists proposals, ballots and module state. Reads of proposals
// go through an LRU cache of decoded values; callers always get a clone.
type Store struct {
	db    storage.Storage
	cache *lru.Cache
	count *atomic.Uint64
}

func NewStore(db storage.Storage, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:    db,
		cache: cache,
		count: atomic.NewUint64(0),
	}

	data, err := db.Get([]byte(proposalCountKey))
	switch {
	case err == nil:
		if len(data) != 8 {
			return nil, fmt.Errorf("corrupted proposal count: %x", data)
		}
		s.count.Store(binary.BigEndian.Uint64(data))
	case !errors.Is(err, storage.ErrorNotFound):
		return nil, errors.Wrap(err, "load proposal count")
	}

	return s, nil
}

// ProposalCount returns the number of proposals ever created. IDs start
// at 1, so it is also the highest ID.
func (s *Store) ProposalCount() uint64 {
	return s.count.Load()
}

// nextID returns the ID the next proposal will get. It is only consumed
// once a write carrying that proposal commits.
func (s *Store) nextID() uint64 {
	return s.count.Load() + 1
}

func (s *Store) Proposal(id uint64) (*proposal.Proposal, error) {
	if v, ok := s.cache.Get(id); ok {
		return v.(*proposal.Proposal).Clone(), nil
	}

	data, err := s.db.Get(proposalKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProposalNotFound, id)
		}
		return nil, errors.Wrapf(err, "get proposal %d", id)
	}

	p := &proposal.Proposal{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errors.Wrapf(err, "unmarshal proposal %d", id)
	}
	s.cache.Add(id, p)
	return p.Clone(), nil
}

// Proposals returns up to limit proposals in ascending ID order starting
// after startAfter.
func (s *Store) Proposals(startAfter uint64, limit int) ([]*proposal.Proposal, error) {
	var out []*proposal.Proposal
	for id := startAfter + 1; id <= s.ProposalCount() && len(out) < limit; id++ {
		p, err := s.Proposal(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ReverseProposals returns up to limit proposals in descending ID order
// starting before startBefore. A zero startBefore starts at the newest.
func (s *Store) ReverseProposals(startBefore uint64, limit int) ([]*proposal.Proposal, error) {
	id := s.ProposalCount()
	if startBefore != 0 && startBefore <= id {
		id = startBefore - 1
	}
	var out []*proposal.Proposal
	for ; id > 0 && len(out) < limit; id-- {
		p, err := s.Proposal(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) Ballot(id uint64, voter string) (*Ballot, error) {
	data, err := s.db.Get(ballotKey(id, voter))
	if err != nil {
		if errors.Is(err, storage.ErrorNotFound) {
			return nil, fmt.Errorf("%w: proposal %d voter %s", ErrBallotNotFound, id, voter)
		}
		return nil, errors.Wrapf(err, "get ballot %d/%s", id, voter)
	}
	b := &Ballot{}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, errors.Wrapf(err, "unmarshal ballot %d/%s", id, voter)
	}
	return b, nil
}

// Ballots returns up to limit ballots of proposal id ordered by voter,
// starting after the voter startAfter.
func (s *Store) Ballots(id uint64, startAfter string, limit int) ([]*Ballot, error) {
	prefix := ballotsPrefix(id)
	it := s.db.Prefix(prefix)
	defer it.Release()

	var ok bool
	if startAfter == "" {
		ok = it.Next()
	} else if ok = it.Seek(ballotKey(id, startAfter)); ok && string(it.Key()[len(prefix):]) == startAfter {
		ok = it.Next()
	}

	var out []*Ballot
	for ; ok && len(out) < limit; ok = it.Next() {
		b := &Ballot{}
		if err := json.Unmarshal(it.Value(), b); err != nil {
			return nil, errors.Wrapf(err, "unmarshal ballot %s", it.Key())
		}
		out = append(out, b)
	}
	return out, it.Error()
}

func (s *Store) Config() (*Config, error) {
	data, err := s.db.Get([]byte(configKey))
	if err != nil {
		return nil, err
	}
	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return c, nil
}

func (s *Store) LastBlock() (voting.Block, bool, error) {
	data, err := s.db.Get([]byte(lastBlockKey))
	if errors.Is(err, storage.ErrorNotFound) {
		return voting.Block{}, false, nil
	}
	if err != nil {
		return voting.Block{}, false, err
	}
	var b voting.Block
	if err := json.Unmarshal(data, &b); err != nil {
		return voting.Block{}, false, errors.Wrap(err, "unmarshal last block")
	}
	return b, true, nil
}

// DepositRecord is how a proposal's deposit was settled.
type DepositRecord struct {
	Deposit  proposal.DepositInfo `json:"deposit"`
	Status   proposal.Status      `json:"status"`
	Refunded bool                 `json:"refunded"`
}

func (s *Store) DepositRecord(id uint64) (*DepositRecord, error) {
	data, err := s.db.Get(depositKey(id))
	if err != nil {
		return nil, err
	}
	r := &DepositRecord{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, errors.Wrapf(err, "unmarshal deposit record %d", id)
	}
	return r, nil
}

// Write collects the changes of one operation. Nothing is visible until
// Commit succeeds.
type Write struct {
	store     *Store
	batch     storage.Batch
	proposals map[uint64]*proposal.Proposal
	count     uint64
	err       error
}

func (s *Store) NewWrite() *Write {
	return &Write{
		store:     s,
		batch:     s.db.NewBatch(),
		proposals: make(map[uint64]*proposal.Proposal),
	}
}

func (w *Write) put(key []byte, v interface{}) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		w.err = errors.Wrapf(err, "marshal %s", key)
		return
	}
	w.batch.Put(key, data)
}

func (w *Write) PutProposal(p *proposal.Proposal) {
	w.put(proposalKey(p.ID), p)
	w.proposals[p.ID] = p.Clone()
	if p.ID > w.store.ProposalCount() && p.ID > w.count {
		w.count = p.ID
	}
}

func (w *Write) PutBallot(id uint64, b *Ballot) {
	w.put(ballotKey(id, b.Voter), b)
}

func (w *Write) PutConfig(c *Config) {
	w.put([]byte(configKey), c)
}

func (w *Write) PutLastBlock(b voting.Block) {
	w.put([]byte(lastBlockKey), b)
}

// Batch exposes the underlying batch to collaborators whose writes must
// commit with this one.
func (w *Write) Batch() storage.Batch {
	return w.batch
}

func (w *Write) PutDepositRecord(id uint64, r *DepositRecord) {
	w.put(depositKey(id), r)
}

func (w *Write) Commit() error {
	if w.err != nil {
		return w.err
	}
	if w.count != 0 {
		data := make([]byte, 8)
		binary.BigEndian.PutUint64(data, w.count)
		w.batch.Put([]byte(proposalCountKey), data)
	}
	if err := w.batch.Commit(); err != nil {
		return errors.Wrap(err, "commit governance write")
	}

	for id, p := range w.proposals {
		w.store.cache.Add(id, p)
	}
	if w.count != 0 {
		w.store.count.Store(w.count)
	}
	return nil
}
