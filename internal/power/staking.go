package power

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	stakePrefix = "stake-"
	totalPrefix = "stake-total-"
)

// Staking derives voting power from staked balances persisted in storage.
// Every change is written as a new height snapshot.
type Staking struct {
	store           storage.Storage
	activeThreshold voting.Amount
	logger          logrus.FieldLogger
	lock            sync.RWMutex
}

// NewStaking returns a staking source. A zero activeThreshold means the
// source is always active.
func NewStaking(store storage.Storage, activeThreshold voting.Amount, logger logrus.FieldLogger) *Staking {
	return &Staking{
		store:           store,
		activeThreshold: activeThreshold,
		logger:          logger,
	}
}

func memberPrefix(addr string) []byte {
	return []byte(stakePrefix + "m-" + hex.EncodeToString([]byte(addr)) + "-")
}

func snapshotKey(prefix []byte, height uint64) []byte {
	return append(append([]byte{}, prefix...), []byte(fmt.Sprintf("%020d", height))...)
}

// valueAt returns the snapshot under prefix written at the highest height
// below height.
func (s *Staking) valueAt(prefix []byte, height uint64) (voting.Amount, error) {
	if height == 0 {
		return voting.ZeroAmount(), nil
	}

	it := s.store.Prefix(prefix)
	defer it.Release()

	var ok bool
	if it.Seek(snapshotKey(prefix, height)) {
		ok = it.Prev()
	} else {
		ok = it.Last()
	}
	if err := it.Error(); err != nil {
		return voting.Amount{}, err
	}
	if !ok {
		return voting.ZeroAmount(), nil
	}

	var amount voting.Amount
	if err := json.Unmarshal(it.Value(), &amount); err != nil {
		return voting.Amount{}, errors.Wrapf(err, "unmarshal snapshot %s", it.Key())
	}
	return amount, nil
}

func (s *Staking) latestHeight(prefix []byte) (uint64, bool, error) {
	it := s.store.Prefix(prefix)
	defer it.Release()

	if !it.Last() {
		return 0, false, it.Error()
	}
	var height uint64
	if _, err := fmt.Sscanf(string(it.Key()[len(prefix):]), "%d", &height); err != nil {
		return 0, false, errors.Wrapf(err, "parse snapshot key %s", it.Key())
	}
	return height, true, nil
}

func (s *Staking) VotingPower(addr string, height uint64) (voting.Amount, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.valueAt(memberPrefix(addr), height)
}

func (s *Staking) TotalPower(height uint64) (voting.Amount, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.valueAt([]byte(totalPrefix), height)
}

// IsActive reports whether the total stake at height reaches the active
// threshold.
func (s *Staking) IsActive(height uint64) (bool, error) {
	if s.activeThreshold.IsZero() {
		return true, nil
	}
	total, err := s.TotalPower(height)
	if err != nil {
		return false, err
	}
	return total.Cmp(s.activeThreshold) >= 0, nil
}

// Stake adds amount to addr's stake from height on.
func (s *Staking) Stake(addr string, amount voting.Amount, height uint64) error {
	return s.update(addr, amount, height, voting.Amount.Add)
}

// Unstake removes amount from addr's stake from height on.
func (s *Staking) Unstake(addr string, amount voting.Amount, height uint64) error {
	return s.update(addr, amount, height, func(staked, amount voting.Amount) (voting.Amount, error) {
		res, err := staked.Sub(amount)
		if errors.Is(err, voting.ErrUnderflow) {
			return voting.Amount{}, fmt.Errorf("%w: staked %s, requested %s", ErrInsufficientStake, staked, amount)
		}
		return res, err
	})
}

func (s *Staking) update(addr string, amount voting.Amount, height uint64, op func(a, b voting.Amount) (voting.Amount, error)) error {
	if addr == "" {
		return ErrEmptyAddress
	}
	if amount.IsZero() {
		return ErrInvalidStakeAmount
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	member := memberPrefix(addr)
	total := []byte(totalPrefix)
	for _, prefix := range [][]byte{member, total} {
		last, ok, err := s.latestHeight(prefix)
		if err != nil {
			return err
		}
		if ok && last > height {
			return fmt.Errorf("%w: %d < %d", ErrHeightRegressed, height, last)
		}
	}

	staked, err := s.valueAt(member, height+1)
	if err != nil {
		return err
	}
	totalStaked, err := s.valueAt(total, height+1)
	if err != nil {
		return err
	}

	newStaked, err := op(staked, amount)
	if err != nil {
		return err
	}
	newTotal, err := op(totalStaked, amount)
	if err != nil {
		return err
	}

	memberData, err := json.Marshal(newStaked)
	if err != nil {
		return err
	}
	totalData, err := json.Marshal(newTotal)
	if err != nil {
		return err
	}

	batch := s.store.NewBatch()
	batch.Put(snapshotKey(member, height), memberData)
	batch.Put(snapshotKey(total, height), totalData)
	if err := batch.Commit(); err != nil {
		return errors.Wrap(err, "commit stake snapshot")
	}

	s.logger.WithFields(logrus.Fields{
		"member": addr,
		"staked": newStaked.String(),
		"total":  newTotal.String(),
		"height": height,
	}).Info("Update stake")

	return nil
}
