// Package commands assembles the bot's command registry.
package commands

import (
	"time"

	"server-warden/internal/command"
	"server-warden/internal/commands/core"
	"server-warden/internal/commands/moderation"
	"server-warden/internal/middleware"
	"server-warden/pkg/cmd"

	"github.com/rs/zerolog"
)

type Options struct {
	Prefix   string
	Cooldown time.Duration
	Logger   zerolog.Logger
}

// Build registers every command with its middlewares. kick runs through
// workflow; it may be nil when the registry is only inspected.
func Build(opts Options, workflow moderation.Runner) (*cmd.Registry, error) {
	reg := cmd.NewRegistry()
	cmdLog := middleware.WithCommandLogger(opts.Logger)
	cooldown := middleware.WithCooldown(opts.Cooldown)

	registrations := []struct {
		cmd command.DiscordCommand
		mws []cmd.Middleware
	}{
		{&moderation.KickCommand{Workflow: workflow}, []cmd.Middleware{cooldown, cmdLog}},
		{&moderation.NotesCommand{}, []cmd.Middleware{middleware.WithUserPermissionCheck(), middleware.WithGuildOnly(), cmdLog}},
		{&moderation.LogChannelCommand{}, []cmd.Middleware{middleware.WithUserPermissionCheck(), middleware.WithGuildOnly(), cmdLog}},
		{&moderation.WordBlacklistCommand{}, []cmd.Middleware{middleware.WithUserPermissionCheck(), middleware.WithGuildOnly(), cmdLog}},
		{&core.HelpCommand{Registry: reg, Prefix: opts.Prefix}, []cmd.Middleware{cooldown}},
	}
	for _, r := range registrations {
		if err := command.RegisterCommand(reg, r.cmd, r.mws...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
