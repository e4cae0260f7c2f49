// Package interaction runs multi-turn conversations as a graph of steps. A
// Flow owns its steps; each step lists guarded actions pointing at other
// steps, and an Executor advances one run of the flow as events arrive.
//
// A flow is a template: build it once, then run it from as many goroutines
// as needed. Nothing in a Flow changes while it runs.
package interaction

import (
	"context"
	"fmt"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/util"
)

// StepID addresses a step inside its Flow.
type StepID int

const (
	// None is returned by callbacks that do not redirect the flow.
	None StepID = -1
	// End is the terminal step present in every flow.
	End StepID = 0
)

// EndName is the name of the terminal step.
const EndName = "end"

// Guard decides whether an action applies to ev. A nil Guard always applies.
type Guard func(ctx context.Context, ev chat.Event) bool

// Always is a guard that accepts every event.
func Always(context.Context, chat.Event) bool { return true }

// Callback runs when the executor arrives at an executable step. Returning
// an id other than None moves the flow there with the same event.
type Callback func(ctx context.Context, ev chat.Event) (StepID, error)

// Action is an outgoing edge of a step.
type Action struct {
	Guard    Guard
	Priority int
	Target   StepID
}

func (a Action) accepts(ctx context.Context, ev chat.Event) bool {
	return a.Guard == nil || a.Guard(ctx, ev)
}

// Step is a node of a Flow.
type Step struct {
	flow     *Flow
	id       StepID
	name     string
	actions  []Action
	callback Callback
}

// ID returns the step's address in its flow.
func (s *Step) ID() StepID { return s.id }

// Name returns the step's unique name.
func (s *Step) Name() string { return s.name }

// Executable reports whether the step carries a callback.
func (s *Step) Executable() bool { return s.callback != nil }

// Actions returns a copy of the outgoing actions in registration order.
func (s *Step) Actions() []Action {
	out := make([]Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// On adds an action moving to target when guard accepts an event. Higher
// priorities win; equal priorities resolve to the action added first.
// It panics if target belongs to another flow or s is the end step.
func (s *Step) On(target *Step, guard Guard, priority int) Action {
	if target == nil || target.flow != s.flow {
		panic(fmt.Sprintf("interaction: step %q: target is not part of the same flow", s.name))
	}
	if s.id == End {
		panic("interaction: the end step cannot have actions")
	}
	a := Action{Guard: guard, Priority: priority, Target: target.id}
	s.actions = append(s.actions, a)
	return a
}

// OnEnd adds an action finishing the flow.
func (s *Step) OnEnd(guard Guard, priority int) Action {
	return s.On(s.flow.steps[End], guard, priority)
}

// Next selects the step to move to for ev. Guards are evaluated
// concurrently. It reports false when no guard accepts the event.
func (s *Step) Next(ctx context.Context, ev chat.Event) (StepID, bool) {
	switch len(s.actions) {
	case 0:
		return None, false
	case 1:
		if s.actions[0].accepts(ctx, ev) {
			return s.actions[0].Target, true
		}
		return None, false
	}

	accepted := make([]bool, len(s.actions))
	err := util.Parallel(ctx, util.Indexes(len(s.actions)), len(s.actions), func(ctx context.Context, i int) error {
		accepted[i] = s.actions[i].accepts(ctx, ev)
		return nil
	})
	if err != nil {
		return None, false
	}

	best := -1
	for i, ok := range accepted {
		if ok && (best < 0 || s.actions[i].Priority > s.actions[best].Priority) {
			best = i
		}
	}
	if best < 0 {
		return None, false
	}
	return s.actions[best].Target, true
}

// Flow is an arena of steps. The zero value is not usable; call NewFlow.
type Flow struct {
	steps  []*Step
	byName map[string]StepID
}

// NewFlow returns a flow holding only the end step.
func NewFlow() *Flow {
	f := &Flow{byName: make(map[string]StepID)}
	f.add(EndName, nil)
	return f
}

// Step adds a plain step. Names must be unique within the flow; a duplicate
// name panics.
func (f *Flow) Step(name string) *Step {
	return f.add(name, nil)
}

// Executable adds a step that runs cb whenever the flow arrives at it.
func (f *Flow) Executable(name string, cb Callback) *Step {
	if cb == nil {
		panic(fmt.Sprintf("interaction: step %q: nil callback", name))
	}
	return f.add(name, cb)
}

// End returns the terminal step.
func (f *Flow) End() *Step { return f.steps[End] }

// Get returns the step with id.
func (f *Flow) Get(id StepID) (*Step, bool) {
	if id < 0 || int(id) >= len(f.steps) {
		return nil, false
	}
	return f.steps[id], true
}

// Lookup returns the step called name.
func (f *Flow) Lookup(name string) (*Step, bool) {
	id, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return f.steps[id], true
}

// Len returns the number of steps, including the end step.
func (f *Flow) Len() int { return len(f.steps) }

func (f *Flow) add(name string, cb Callback) *Step {
	if _, dup := f.byName[name]; dup {
		panic(fmt.Sprintf("interaction: duplicate step name %q", name))
	}
	s := &Step{flow: f, id: StepID(len(f.steps)), name: name, callback: cb}
	f.steps = append(f.steps, s)
	f.byName[name] = s.id
	return s
}
