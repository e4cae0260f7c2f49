package interaction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/keshon/flowbot/pkg/chat"
)

var (
	// ErrSourceClosed ends a run whose event subscription was closed.
	ErrSourceClosed = errors.New("interaction: event source closed")
	// ErrUnknownStep is returned when a run reaches an id its flow does not hold.
	ErrUnknownStep = errors.New("interaction: unknown step")
)

// Executor runs one instance of a flow from root until the end step.
type Executor interface {
	Run(ctx context.Context, flow *Flow, root StepID, rootEvent chat.Event) error
}

// DefaultExecutor subscribes to an event source once per run and feeds every
// event it sees to the current step.
type DefaultExecutor struct {
	source chat.EventSource
	buffer int
	log    *zap.SugaredLogger
}

// NewExecutor returns an executor reading from source. logger may be nil.
func NewExecutor(source chat.EventSource, logger *zap.SugaredLogger) *DefaultExecutor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DefaultExecutor{source: source, buffer: chat.DefaultBuffer, log: logger}
}

// Run advances the flow until it reaches End, ctx is done, the source closes
// or a callback fails.
//
// Arriving at an executable step runs its callback with the event that caused
// the arrival, but only if that event moved the flow and is not nil. A
// callback that returns a step id moves the flow there at once, reusing the
// same event. Otherwise the run waits for the next event and asks the current
// step where to go; if no guard accepts it, the run stays put and the
// callback is not repeated.
func (e *DefaultExecutor) Run(ctx context.Context, flow *Flow, root StepID, rootEvent chat.Event) error {
	events, unsubscribe := e.source.Subscribe(e.buffer)
	defer unsubscribe()

	current := root
	event := rootEvent
	stayed := false

	for current != End {
		step, ok := flow.Get(current)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownStep, current)
		}

		if !stayed && step.Executable() && event != nil {
			next, err := step.callback(ctx, event)
			if err != nil {
				return fmt.Errorf("step %q: %w", step.name, err)
			}
			if next != None {
				e.log.Debugw("flow jumped", "from", step.name, "to", next)
				current = next
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrSourceClosed
			}
			event = ev
		}

		if next, ok := step.Next(ctx, event); ok {
			e.log.Debugw("flow moved", "from", step.name, "to", next, "event", event.Type().String())
			current = next
			stayed = false
		} else {
			stayed = true
		}
	}
	return nil
}
