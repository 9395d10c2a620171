package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const executionPrefix = "exec-"

var ErrInvalidMessage = errors.New("invalid message")

// Executor applies the messages of executed proposals by recording them.
// A message needs a target and, when present, a JSON payload.
type Executor struct {
	db     storage.Storage
	logger logrus.FieldLogger
}

func NewExecutor(db storage.Storage, logger logrus.FieldLogger) *Executor {
	return &Executor{
		db:     db,
		logger: logger,
	}
}

func executionKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", executionPrefix, id))
}

func (e *Executor) Execute(id uint64, msgs []voting.Message) error {
	for i, msg := range msgs {
		if msg.Target == "" {
			return fmt.Errorf("%w: message %d has no target", ErrInvalidMessage, i)
		}
		if msg.Payload != "" && !gjson.Valid(msg.Payload) {
			return fmt.Errorf("%w: message %d payload is not json", ErrInvalidMessage, i)
		}
	}

	data, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	if err := e.db.Put(executionKey(id), data); err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"id":   id,
		"msgs": len(msgs),
	}).Info("Execute proposal messages")
	return nil
}

// Executed returns the messages executed for proposal id.
func (e *Executor) Executed(id uint64) ([]voting.Message, bool, error) {
	data, err := e.db.Get(executionKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var msgs []voting.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, false, err
	}
	return msgs, true, nil
}
