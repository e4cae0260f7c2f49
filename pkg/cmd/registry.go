package cmd

import (
	"sort"
	"sync"
)

// Registry stores commands by name and by alias. Registering a name or alias
// that is already taken replaces the previous entry.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]Command),
	}
}

// Register adds commands.
func (r *Registry) Register(cmds ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cmds {
		info := c.Info()
		r.commands[info.Name] = c
		for _, a := range info.Aliases {
			r.aliases[a] = c
		}
	}
}

// Get returns the command registered under name, falling back to aliases.
func (r *Registry) Get(name string) (Command, bool) {
	if c, ok := r.ByName(name); ok {
		return c, true
	}
	return r.ByAlias(name)
}

// ByName looks only at primary names.
func (r *Registry) ByName(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// ByAlias looks only at aliases.
func (r *Registry) ByAlias(alias string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.aliases[alias]
	return c, ok
}

// All returns every command registered by name, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Info().Name < list[j].Info().Name
	})
	return list
}

// Categories groups visible commands by category. Both the categories and the
// commands inside them are sorted.
func (r *Registry) Categories() (names []string, byCategory map[string][]Command) {
	byCategory = make(map[string][]Command)
	for _, c := range r.All() {
		info := c.Info()
		if info.Hidden {
			continue
		}
		if _, ok := byCategory[info.Category]; !ok {
			names = append(names, info.Category)
		}
		byCategory[info.Category] = append(byCategory[info.Category], c)
	}
	sort.Strings(names)
	return names, byCategory
}
