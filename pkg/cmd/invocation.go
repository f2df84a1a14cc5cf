// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord messages, CLI) is defined by adapters that wrap this.
package cmd

import "context"

// Invocation carries the minimal input any command runner can pass: the alias
// it was called by, the raw argument text, and an opaque payload. Adapters set
// Data to their context (e.g. *discordgo.Session + event).
type Invocation struct {
	Alias string
	Args  string
	Data  interface{}
}

// Command is the universal contract: identity plus execution. Permissions and
// transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliased is implemented by commands reachable under more than one name.
type Aliased interface {
	Aliases() []string
}

// Documented is implemented by commands that take arguments, e.g.
// "[User mention] [Reason~]".
type Documented interface {
	Syntax() string
}
