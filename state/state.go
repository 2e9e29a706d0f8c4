package state

import (
	"errors"
	"fmt"
	"sync"
)

// Phase is the coarse lifecycle stage of a game.
type Phase int

const (
	Lobby Phase = iota
	InProgress
	Finished
)

func (p Phase) String() string {
	switch p {
	case Lobby:
		return "lobby"
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// StateMachine drives a phase through declared transitions only.
type StateMachine interface {
	ChangeState(to Phase) error
	Current() Phase
	AddTransition(from, to Phase, condition func() bool)
	OnEnter(phase Phase, fn func())
}

// ErrTransitionNotAllowed is returned when a transition was never declared
// or its condition does not hold.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

type BaseStateMachine struct {
	current     Phase
	transitions map[Phase]map[Phase]func() bool // from -> to -> condition
	enter       map[Phase][]func()
	mutex       sync.RWMutex
}

func NewBaseStateMachine(initial Phase) *BaseStateMachine {
	return &BaseStateMachine{
		current:     initial,
		transitions: make(map[Phase]map[Phase]func() bool),
		enter:       make(map[Phase][]func()),
	}
}

// NewGameLifecycle returns the one-way Lobby -> InProgress -> Finished machine.
// canStart guards the move out of the lobby.
func NewGameLifecycle(canStart func() bool) *BaseStateMachine {
	sm := NewBaseStateMachine(Lobby)
	sm.AddTransition(Lobby, InProgress, canStart)
	sm.AddTransition(InProgress, Finished, nil)
	return sm
}

func (sm *BaseStateMachine) ChangeState(to Phase) error {
	sm.mutex.Lock()

	conditions, exists := sm.transitions[sm.current]
	if !exists {
		sm.mutex.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, sm.current, to)
	}
	condition, exists := conditions[to]
	if !exists || (condition != nil && !condition()) {
		sm.mutex.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, sm.current, to)
	}

	sm.current = to
	hooks := sm.enter[to]
	sm.mutex.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (sm *BaseStateMachine) Current() Phase {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.current
}

func (sm *BaseStateMachine) AddTransition(from, to Phase, condition func() bool) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if _, exists := sm.transitions[from]; !exists {
		sm.transitions[from] = make(map[Phase]func() bool)
	}
	sm.transitions[from][to] = condition
}

// OnEnter registers fn to run after every successful transition into phase.
func (sm *BaseStateMachine) OnEnter(phase Phase, fn func()) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.enter[phase] = append(sm.enter[phase], fn)
}
