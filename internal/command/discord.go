package command

import (
	"context"

	"server-warden/internal/moderation"
	"server-warden/internal/storage"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Messenger is the part of the platform commands use to answer.
type Messenger interface {
	OpenPrivateChannel(ctx context.Context, userID string) (string, error)
	SendMessage(ctx context.Context, channelID string, msg moderation.Message) (moderation.MessageHandle, error)
}

// MessageContext is what the runtime passes when a prefixed message command runs.
type MessageContext struct {
	Event     *discordgo.MessageCreate
	Storage   *storage.Storage
	Messenger Messenger
	// Permissions are the author's guild-wide permission bits, 0 outside a guild.
	Permissions int64
	// Developer is set when the author is the configured developer.
	Developer bool
}

func (c *MessageContext) AuthorID() string {
	if c.Event.Author == nil {
		return ""
	}
	return c.Event.Author.ID
}

// Reply answers in the channel the command was sent in.
func (c *MessageContext) Reply(ctx context.Context, msg moderation.Message) error {
	_, err := c.Messenger.SendMessage(ctx, c.Event.ChannelID, msg)
	return err
}

// DirectMessage answers in the author's private channel.
func (c *MessageContext) DirectMessage(ctx context.Context, msg moderation.Message) error {
	ch, err := c.Messenger.OpenPrivateChannel(ctx, c.AuthorID())
	if err != nil {
		return err
	}
	_, err = c.Messenger.SendMessage(ctx, ch, msg)
	return err
}

// DiscordMeta is exposed by the Discord adapter so middleware can read
// category and permissions without depending on the concrete command type.
type DiscordMeta interface {
	Category() string
	UserPermissions() []int64
}

// DiscordCommand is what individual Discord commands implement.
type DiscordCommand interface {
	Name() string
	Aliases() []string
	Syntax() string
	Description() string
	Category() string
	// UserPermissions lists permissions of which the author needs at least one.
	UserPermissions() []int64
	Run(ctx context.Context, mc *MessageContext, args string) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in the
// universal registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string             { return a.Cmd.Name() }
func (a *DiscordAdapter) Aliases() []string        { return a.Cmd.Aliases() }
func (a *DiscordAdapter) Syntax() string           { return a.Cmd.Syntax() }
func (a *DiscordAdapter) Description() string      { return a.Cmd.Description() }
func (a *DiscordAdapter) Category() string         { return a.Cmd.Category() }
func (a *DiscordAdapter) UserPermissions() []int64 { return a.Cmd.UserPermissions() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := inv.Data.(*MessageContext)
	if !ok {
		return nil
	}
	return a.Cmd.Run(ctx, mc, inv.Args)
}

// RegisterCommand registers a Discord command with reg and applies middlewares.
func RegisterCommand(reg *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) error {
	return reg.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}
