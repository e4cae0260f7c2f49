package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keshon/flowbot/pkg/chat"
)

// ErrorHandler receives command errors of the taxonomy, typically to tell the
// user what went wrong.
type ErrorHandler interface {
	HandleError(ctx context.Context, err *Error)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(ctx context.Context, err *Error)

func (f ErrorHandlerFunc) HandleError(ctx context.Context, err *Error) { f(ctx, err) }

// RouterOptions configures a Router.
type RouterOptions struct {
	// InvokeOnEdit dispatches edited messages as well as new ones.
	InvokeOnEdit bool
	Logger       *zap.SugaredLogger
}

// Router is where front-ends hand events over. Every event is dispatched on
// its own goroutine; failures are reported to error handlers or logged and
// never reach the caller.
type Router struct {
	d            *Dispatcher
	invokeOnEdit bool
	log          *zap.SugaredLogger

	mu       sync.RWMutex
	handlers []ErrorHandler

	wg sync.WaitGroup
}

// NewRouter wraps d.
func NewRouter(d *Dispatcher, opts RouterOptions) *Router {
	log := opts.Logger
	if log == nil {
		log = d.log
	}
	return &Router{d: d, invokeOnEdit: opts.InvokeOnEdit, log: log}
}

// Dispatcher returns the wrapped dispatcher.
func (r *Router) Dispatcher() *Dispatcher { return r.d }

// AddErrorHandler registers h. Handlers run in registration order.
func (r *Router) AddErrorHandler(h ErrorHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// Handle dispatches ev asynchronously. Events other than message creation
// (and edits, when enabled) are ignored.
func (r *Router) Handle(ctx context.Context, ev chat.Event) {
	var msg *chat.Message
	switch e := ev.(type) {
	case *chat.MessageCreate:
		msg = e.Message
	case *chat.MessageUpdate:
		if !r.invokeOnEdit {
			return
		}
		msg = e.Message
	default:
		return
	}
	if msg == nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx, msg, ev)
	}()
}

// Listen handles every event from src until ctx ends or src closes.
func (r *Router) Listen(ctx context.Context, src chat.EventSource) {
	events, unsubscribe := src.Subscribe(0)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Handle(ctx, ev)
		}
	}
}

// Wait blocks until in-flight dispatches return.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) run(ctx context.Context, msg *chat.Message, ev chat.Event) {
	id := uuid.NewString()
	log := r.log.With("dispatch", id, "message", msg.ID)

	defer func() {
		if p := recover(); p != nil {
			log.Errorw("panic while dispatching", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
		}
	}()

	err := r.d.Dispatch(ctx, msg, ev)
	if err == nil {
		return
	}

	var cerr *Error
	if !errors.As(err, &cerr) {
		log.Errorw("command returned an error", "error", err)
		return
	}

	r.mu.RLock()
	handlers := append([]ErrorHandler(nil), r.handlers...)
	r.mu.RUnlock()

	if len(handlers) == 0 {
		log.Warnw("unhandled command error", "kind", cerr.Kind.String(), "error", cerr)
		return
	}
	for _, h := range handlers {
		h.HandleError(ctx, cerr)
	}
}
