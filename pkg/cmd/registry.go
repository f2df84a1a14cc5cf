package cmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores commands by name and alias, case-insensitively. It does
// not perform dispatch; each adapter looks up commands and invokes them with
// its own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	byAlias  map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		byAlias:  make(map[string]Command),
	}
}

// Register adds a command under its name and every alias the root command
// declares. A name or alias already taken by another command is an error.
func (r *Registry) Register(c Command) error {
	keys := []string{strings.ToLower(c.Name())}
	if a, ok := Root(c).(Aliased); ok {
		for _, alias := range a.Aliases() {
			keys = append(keys, strings.ToLower(alias))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		if other, taken := r.byAlias[k]; taken && other.Name() != c.Name() {
			return fmt.Errorf("command %q: alias %q already used by %q", c.Name(), k, other.Name())
		}
	}
	r.commands[c.Name()] = c
	for _, k := range keys {
		r.byAlias[k] = c
	}
	return nil
}

// Get returns the command registered under name or alias, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byAlias[strings.ToLower(name)]
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
