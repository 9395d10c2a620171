package proposal

import (
	"fmt"

	"github.com/looplab/fsm"
)

type Status string

const (
	StatusOpen            Status = "open"
	StatusRejected        Status = "rejected"
	StatusPassed          Status = "passed"
	StatusExecuted        Status = "executed"
	StatusClosed          Status = "closed"
	StatusExecutionFailed Status = "execution_failed"
	StatusVetoTimelock    Status = "veto_timelock"
	StatusVetoed          Status = "vetoed"
)

// IsFinal reports whether no further transition can leave s.
func (s Status) IsFinal() bool {
	switch s {
	case StatusExecuted, StatusClosed, StatusExecutionFailed, StatusVetoed:
		return true
	}
	return false
}

type Event string

const (
	EventPass          Event = "pass"
	EventReject        Event = "reject"
	EventTimelock      Event = "timelock"
	EventExecute       Event = "execute"
	EventFailExecution Event = "fail_execution"
	EventClose         Event = "close"
	EventVeto          Event = "veto"
)

func (p *Proposal) setFSM() {
	p.fsm = fsm.NewFSM(
		string(p.Status),
		fsm.Events{
			// resolution
			{Name: string(EventPass), Src: []string{string(StatusOpen), string(StatusVetoTimelock)}, Dst: string(StatusPassed)},
			{Name: string(EventReject), Src: []string{string(StatusOpen)}, Dst: string(StatusRejected)},
			{Name: string(EventTimelock), Src: []string{string(StatusOpen)}, Dst: string(StatusVetoTimelock)},

			// completion
			{Name: string(EventExecute), Src: []string{string(StatusPassed), string(StatusVetoTimelock)}, Dst: string(StatusExecuted)},
			{Name: string(EventFailExecution), Src: []string{string(StatusPassed), string(StatusVetoTimelock)}, Dst: string(StatusExecutionFailed)},
			{Name: string(EventClose), Src: []string{string(StatusRejected)}, Dst: string(StatusClosed)},
			{Name: string(EventVeto), Src: []string{string(StatusOpen), string(StatusVetoTimelock)}, Dst: string(StatusVetoed)},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { p.Status = Status(p.fsm.Current()) },
		},
	)
}

// Fire applies event to the proposal status. Guards that depend on
// configuration (who may veto, early execution) are the caller's concern;
// Fire only enforces the shape of the state machine.
func (p *Proposal) Fire(event Event) error {
	if p.fsm == nil || p.fsm.Current() != string(p.Status) {
		p.setFSM()
	}
	if err := p.fsm.Event(string(event)); err != nil {
		return fmt.Errorf("%w: %s from %s: %v", ErrInvalidTransition, event, p.Status, err)
	}
	return nil
}
