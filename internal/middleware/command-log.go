package middleware

import (
	"context"
	"time"

	"server-warden/internal/command"
	"server-warden/internal/storage"
	"server-warden/pkg/cmd"

	"github.com/rs/zerolog"
)

// WithCommandLogger logs every run and records guild commands in the
// storage history.
func WithCommandLogger(log zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			started := time.Now()
			err := c.Run(ctx, inv)

			v, ok := inv.Data.(*command.MessageContext)
			if !ok {
				return err
			}
			e := v.Event
			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Str("command", c.Name()).
				Str("guild", e.GuildID).
				Str("channel", e.ChannelID).
				Str("user", v.AuthorID()).
				Dur("took", time.Since(started)).
				Msg("command executed")

			if e.GuildID == "" || v.Storage == nil {
				return err
			}
			username := ""
			if e.Author != nil {
				username = e.Author.Username
			}
			if herr := v.Storage.AppendCommandToHistory(e.GuildID, storage.CommandHistoryRecord{
				ChannelID: e.ChannelID,
				UserID:    v.AuthorID(),
				Username:  username,
				Command:   c.Name(),
				Param:     inv.Args,
				Datetime:  started,
			}); herr != nil {
				log.Warn().Err(herr).Str("command", c.Name()).Msg("failed to record command history")
			}
			return err
		})
	}
}
