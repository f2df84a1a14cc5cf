package moderation

import (
	"context"

	"server-warden/internal/command"
	mod "server-warden/internal/moderation"
)

// Runner runs a kick invocation to completion.
type Runner interface {
	Run(ctx context.Context, inv mod.Invocation) mod.Report
}

type KickCommand struct {
	Workflow Runner
}

func (c *KickCommand) Name() string      { return "kick" }
func (c *KickCommand) Aliases() []string { return []string{"kick"} }
func (c *KickCommand) Syntax() string    { return "[User mention] [Reason~]" }
func (c *KickCommand) Description() string {
	return "Kicks a member from the server and DMs them the reason"
}
func (c *KickCommand) Category() string { return "Moderation" }

// UserPermissions is empty: the kick workflow checks privilege itself so
// that the denial notice expires.
func (c *KickCommand) UserPermissions() []int64 { return nil }

func (c *KickCommand) Run(ctx context.Context, mc *command.MessageContext, args string) error {
	c.Workflow.Run(ctx, mod.Invocation{
		InvokerID: mc.AuthorID(),
		GuildID:   mc.Event.GuildID,
		Mentions:  mentionsInOrder(args, mc.Event.Mentions),
		Args:      args,
	})
	return nil
}
