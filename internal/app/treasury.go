package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/sirupsen/logrus"
)

const (
	balancePrefix = "balance-"
	escrowPrefix  = "escrow-"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Treasury holds deposit balances. A proposal's deposit is moved from the
// proposer into escrow when it is created and out of escrow when it
// completes: back to the depositor if refundable, to the dao otherwise.
type Treasury struct {
	db     storage.Storage
	dao    string
	logger logrus.FieldLogger
}

func NewTreasury(db storage.Storage, dao string, logger logrus.FieldLogger) *Treasury {
	return &Treasury{
		db:     db,
		dao:    dao,
		logger: logger,
	}
}

func balanceKey(denom, addr string) []byte {
	return []byte(fmt.Sprintf("%s%s-%s", balancePrefix, denom, addr))
}

func escrowKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", escrowPrefix, id))
}

func put(w storage.Batch, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Put(key, data)
	return nil
}

func (t *Treasury) LockDeposit(w storage.Batch, id uint64, deposit *proposal.DepositInfo) error {
	balance, err := t.Balance(deposit.Denom, deposit.Depositor)
	if err != nil {
		return err
	}
	rest, err := balance.Sub(deposit.Amount)
	if err != nil {
		return fmt.Errorf("%w: %s holds %s %s, deposit is %s", ErrInsufficientFunds,
			deposit.Depositor, balance, deposit.Denom, deposit.Amount)
	}
	if err := put(w, balanceKey(deposit.Denom, deposit.Depositor), rest); err != nil {
		return err
	}
	if err := put(w, escrowKey(id), deposit); err != nil {
		return err
	}

	t.logger.WithFields(logrus.Fields{
		"id":        id,
		"depositor": deposit.Depositor,
		"amount":    deposit.Amount.String(),
		"denom":     deposit.Denom,
	}).Info("Lock proposal deposit")
	return nil
}

func (t *Treasury) SettleDeposit(w storage.Batch, id uint64, status proposal.Status, deposit *proposal.DepositInfo) error {
	locked, ok, err := t.Escrowed(id)
	if err != nil {
		return err
	}
	if !ok {
		t.logger.WithField("id", id).Warn("No escrowed deposit to settle")
		return nil
	}

	receiver := t.dao
	if deposit.Refundable(status) {
		receiver = locked.Depositor
	}
	balance, err := t.Balance(locked.Denom, receiver)
	if err != nil {
		return err
	}
	if balance, err = balance.Add(locked.Amount); err != nil {
		return err
	}
	if err := put(w, balanceKey(locked.Denom, receiver), balance); err != nil {
		return err
	}
	w.Delete(escrowKey(id))

	t.logger.WithFields(logrus.Fields{
		"id":       id,
		"status":   status,
		"receiver": receiver,
		"amount":   locked.Amount.String(),
		"denom":    locked.Denom,
	}).Info("Settle proposal deposit")
	return nil
}

// Fund credits amount to addr outside of any proposal. It is how the host
// hands out deposit tokens.
func (t *Treasury) Fund(denom, addr string, amount voting.Amount) error {
	balance, err := t.Balance(denom, addr)
	if err != nil {
		return err
	}
	if balance, err = balance.Add(amount); err != nil {
		return err
	}

	w := t.db.NewBatch()
	if err := put(w, balanceKey(denom, addr), balance); err != nil {
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}

	t.logger.WithFields(logrus.Fields{
		"addr":   addr,
		"amount": amount.String(),
		"denom":  denom,
	}).Info("Fund account")
	return nil
}

// Balance returns the deposit tokens held by addr.
func (t *Treasury) Balance(denom, addr string) (voting.Amount, error) {
	data, err := t.db.Get(balanceKey(denom, addr))
	if err != nil {
		if errors.Is(err, storage.ErrorNotFound) {
			return voting.ZeroAmount(), nil
		}
		return voting.Amount{}, err
	}
	var balance voting.Amount
	if err := json.Unmarshal(data, &balance); err != nil {
		return voting.Amount{}, err
	}
	return balance, nil
}

// Escrowed returns the deposit locked for proposal id, if any.
func (t *Treasury) Escrowed(id uint64) (*proposal.DepositInfo, bool, error) {
	data, err := t.db.Get(escrowKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	deposit := &proposal.DepositInfo{}
	if err := json.Unmarshal(data, deposit); err != nil {
		return nil, false, err
	}
	return deposit, true, nil
}
