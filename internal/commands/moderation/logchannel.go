package moderation

import (
	"context"
	"fmt"

	"server-warden/internal/command"
	mod "server-warden/internal/moderation"

	"github.com/bwmarrin/discordgo"
)

type LogChannelCommand struct{}

func (c *LogChannelCommand) Name() string      { return "logchannel" }
func (c *LogChannelCommand) Aliases() []string { return []string{"logchannel", "setlog"} }
func (c *LogChannelCommand) Syntax() string    { return "" }
func (c *LogChannelCommand) Description() string {
	return "Posts moderation cases to the channel this is sent in"
}
func (c *LogChannelCommand) Category() string { return "Moderation" }
func (c *LogChannelCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionAdministrator}
}

func (c *LogChannelCommand) Run(ctx context.Context, mc *command.MessageContext, _ string) error {
	e := mc.Event
	if err := mc.Storage.SetLogChannel(e.GuildID, e.ChannelID); err != nil {
		return fmt.Errorf("failed to set log channel: %w", err)
	}
	return mc.Reply(ctx, mod.Message{Content: fmt.Sprintf("Moderation cases will be posted in <#%s>.", e.ChannelID)})
}
