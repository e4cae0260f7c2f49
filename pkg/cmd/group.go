package cmd

import "context"

// Group routes its first argument to a sub-command. Sub-commands are looked
// up by name or alias in one table; later entries replace earlier ones.
// When nothing matches, the default command runs with the unchanged
// arguments, or SubCommandNotFound is returned.
type Group struct {
	Base
	commands []Command
	lookup   map[string]Command
	def      Command
}

// NewGroup builds a group. def may be nil.
func NewGroup(base Base, commands []Command, def Command) *Group {
	g := &Group{
		Base:     base,
		commands: commands,
		lookup:   make(map[string]Command),
		def:      def,
	}
	for _, c := range commands {
		info := c.Info()
		g.lookup[info.Name] = c
		for _, a := range info.Aliases {
			g.lookup[a] = c
		}
	}
	return g
}

// Commands returns the sub-commands in construction order.
func (g *Group) Commands() []Command { return g.commands }

// Default returns the fallback command or nil.
func (g *Group) Default() Command { return g.def }

// Execute runs the matched sub-command after checking its own
// preconditions. The sub-command sees the arguments after its name.
func (g *Group) Execute(ctx context.Context, c *Context) error {
	var sub Command
	if len(c.Args) > 0 {
		sub = g.lookup[c.Args[0]]
	}
	if sub == nil {
		if g.def != nil {
			return g.def.Execute(ctx, c.With(g.def, c.Args))
		}
		return &Error{Kind: SubCommandNotFound, Message: c.Message, Command: c.Command, Token: c.Arg(0)}
	}

	if err := c.dispatcher.Verify(c.Message, sub); err != nil {
		return err
	}
	return sub.Execute(ctx, c.With(sub, c.Args[1:]))
}
