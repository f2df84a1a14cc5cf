package middleware

import (
	"context"

	"server-warden/internal/command"
	"server-warden/pkg/cmd"
)

// WithGuildOnly silently ignores the command outside a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := inv.Data.(*command.MessageContext); ok && v.Event.GuildID == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}
