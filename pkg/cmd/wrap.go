package cmd

import "context"

// Unwrappable is implemented by wrapped commands so callers can reach the
// underlying command, for example to type-assert it to *Group.
type Unwrappable interface {
	Command
	Unwrap() Command
}

// Wrapped replaces a command's Execute. Info is delegated to the inner
// command.
type Wrapped struct {
	Inner   Command
	RunFunc func(ctx context.Context, c *Context) error
}

// Info delegates to the inner command.
func (w *Wrapped) Info() *Info { return w.Inner.Info() }

// Execute runs RunFunc, or the inner command when RunFunc is nil.
func (w *Wrapped) Execute(ctx context.Context, c *Context) error {
	if w.RunFunc != nil {
		return w.RunFunc(ctx, c)
	}
	return w.Inner.Execute(ctx, c)
}

// Unwrap returns the inner command.
func (w *Wrapped) Unwrap() Command { return w.Inner }

// Wrap returns a command that runs run instead of c.Execute.
func Wrap(c Command, run func(ctx context.Context, cc *Context) error) Command {
	return &Wrapped{Inner: c, RunFunc: run}
}

// Root unwraps a command until the underlying command is not Unwrappable.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
