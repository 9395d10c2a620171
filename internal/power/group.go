package power

import (
	"sync"

	"github.com/google/btree"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/sirupsen/logrus"
)

const snapshotDegree = 8

type snapshot struct {
	height uint64
	weight voting.Amount
}

func (s *snapshot) Less(than btree.Item) bool {
	return s.height < than.(*snapshot).height
}

// history is a height ordered list of values.
type history struct {
	tree *btree.BTree
}

func newHistory() *history {
	return &history{tree: btree.New(snapshotDegree)}
}

// at returns the value written at the highest height below height.
func (h *history) at(height uint64) voting.Amount {
	if height == 0 {
		return voting.ZeroAmount()
	}
	var found voting.Amount
	h.tree.DescendLessOrEqual(&snapshot{height: height - 1}, func(i btree.Item) bool {
		found = i.(*snapshot).weight
		return false
	})
	return found
}

func (h *history) latest() (*snapshot, bool) {
	if h.tree.Len() == 0 {
		return nil, false
	}
	return h.tree.Max().(*snapshot), true
}

func (h *history) set(height uint64, weight voting.Amount) {
	h.tree.ReplaceOrInsert(&snapshot{height: height, weight: weight})
}

// Group is a weighted member list kept in memory.
type Group struct {
	members map[string]*history
	total   *history
	logger  logrus.FieldLogger
	lock    sync.RWMutex
}

func NewGroup(logger logrus.FieldLogger) *Group {
	return &Group{
		members: make(map[string]*history),
		total:   newHistory(),
		logger:  logger,
	}
}

// next validates a weight change and returns addr's history and the group
// total it would produce. g.lock must be held.
func (g *Group) next(addr string, weight voting.Amount, height uint64) (*history, voting.Amount, error) {
	if addr == "" {
		return nil, voting.Amount{}, ErrEmptyAddress
	}

	h, ok := g.members[addr]
	if !ok {
		h = newHistory()
	}
	if last, ok := h.latest(); ok && last.height > height {
		return nil, voting.Amount{}, ErrHeightRegressed
	}
	if last, ok := g.total.latest(); ok && last.height > height {
		return nil, voting.Amount{}, ErrHeightRegressed
	}

	old := h.at(height + 1)
	total, err := g.total.at(height + 1).Sub(old)
	if err != nil {
		return nil, voting.Amount{}, err
	}
	if total, err = total.Add(weight); err != nil {
		return nil, voting.Amount{}, err
	}
	return h, total, nil
}

// CheckWeight reports the error SetWeight would return, without changing
// the group.
func (g *Group) CheckWeight(addr string, weight voting.Amount, height uint64) error {
	g.lock.RLock()
	defer g.lock.RUnlock()

	_, _, err := g.next(addr, weight, height)
	return err
}

// SetWeight records addr's weight from height on. A zero weight removes
// the member.
func (g *Group) SetWeight(addr string, weight voting.Amount, height uint64) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	h, total, err := g.next(addr, weight, height)
	if err != nil {
		return err
	}
	h.set(height, weight)
	g.members[addr] = h
	g.total.set(height, total)

	g.logger.WithFields(logrus.Fields{
		"member": addr,
		"weight": weight.String(),
		"height": height,
	}).Debug("Set member weight")

	return nil
}

func (g *Group) VotingPower(addr string, height uint64) (voting.Amount, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	h, ok := g.members[addr]
	if !ok {
		return voting.ZeroAmount(), nil
	}
	return h.at(height), nil
}

func (g *Group) TotalPower(height uint64) (voting.Amount, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	return g.total.at(height), nil
}

// IsActive reports whether the group has any weight at height.
func (g *Group) IsActive(height uint64) (bool, error) {
	total, err := g.TotalPower(height)
	if err != nil {
		return false, err
	}
	return !total.IsZero(), nil
}
