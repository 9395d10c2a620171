package app

import (
	"encoding/json"
	"fmt"

	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const weightChangePrefix = "group-"

type weightChange struct {
	Address string        `json:"address"`
	Weight  voting.Amount `json:"weight"`
	Height  uint64        `json:"height"`
}

// memberJournal keeps group weight changes ordered by height.
type memberJournal struct {
	db     storage.Storage
	logger logrus.FieldLogger
}

func weightChangeKey(height uint64, addr string) []byte {
	return []byte(fmt.Sprintf("%s%020d-%s", weightChangePrefix, height, addr))
}

func (j *memberJournal) record(c *weightChange) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := j.db.Put(weightChangeKey(c.Height, c.Address), data); err != nil {
		return err
	}
	j.logger.WithFields(logrus.Fields{
		"member": c.Address,
		"height": c.Height,
	}).Debug("Record weight change")
	return nil
}

func (j *memberJournal) replay(apply func(c *weightChange) error) error {
	it := j.db.Prefix([]byte(weightChangePrefix))
	defer it.Release()

	count := 0
	for it.Next() {
		c := &weightChange{}
		if err := json.Unmarshal(it.Value(), c); err != nil {
			return errors.Wrapf(err, "unmarshal weight change %s", it.Key())
		}
		if err := apply(c); err != nil {
			return err
		}
		count++
	}
	if err := it.Error(); err != nil {
		return err
	}
	j.logger.WithField("count", count).Debug("Replay weight changes")
	return nil
}
