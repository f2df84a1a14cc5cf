package core

import (
	"context"
	"fmt"
	"strings"

	"server-warden/internal/command"
	"server-warden/internal/middleware"
	"server-warden/internal/moderation"
	"server-warden/pkg/cmd"

	"github.com/samber/lo"
)

const (
	embedColor = 0x5865f2
	// maxEmbedFields is Discord's limit of fields per embed.
	maxEmbedFields = 25
)

type HelpCommand struct {
	Registry *cmd.Registry
	Prefix   string
}

func (c *HelpCommand) Name() string             { return "help" }
func (c *HelpCommand) Aliases() []string        { return []string{"help", "commands"} }
func (c *HelpCommand) Syntax() string           { return "" }
func (c *HelpCommand) Description() string      { return "Lists the available commands" }
func (c *HelpCommand) Category() string         { return "Information" }
func (c *HelpCommand) UserPermissions() []int64 { return nil }

func (c *HelpCommand) Run(ctx context.Context, mc *command.MessageContext, _ string) error {
	for _, embed := range helpEmbeds(c.Registry.GetAll(), c.Prefix) {
		if err := mc.DirectMessage(ctx, moderation.Message{Embed: embed}); err != nil {
			return fmt.Errorf("failed to send help: %w", err)
		}
	}
	return nil
}

func helpEmbeds(cmds []cmd.Command, prefix string) []*moderation.Embed {
	fields := lo.Map(cmds, func(c cmd.Command, _ int) moderation.EmbedField {
		return helpField(c, prefix)
	})
	pages := lo.Chunk(fields, maxEmbedFields)

	embeds := make([]*moderation.Embed, 0, len(pages))
	for i, page := range pages {
		title := "Commands"
		if len(pages) > 1 {
			title = fmt.Sprintf("Commands (%d/%d)", i+1, len(pages))
		}
		embeds = append(embeds, &moderation.Embed{Title: title, Color: embedColor, Fields: page})
	}
	return embeds
}

func helpField(c cmd.Command, prefix string) moderation.EmbedField {
	root := cmd.Root(c)

	names := []string{c.Name()}
	if a, ok := root.(cmd.Aliased); ok && len(a.Aliases()) > 0 {
		names = lo.Uniq(append(names, a.Aliases()...))
	}
	name := strings.Join(lo.Map(names, func(n string, _ int) string { return prefix + n }), " / ")
	if d, ok := root.(cmd.Documented); ok && d.Syntax() != "" {
		name += " " + d.Syntax()
	}

	value := c.Description()
	if meta, ok := root.(command.DiscordMeta); ok && len(meta.UserPermissions()) > 0 {
		perms := lo.Map(meta.UserPermissions(), func(p int64, _ int) string { return middleware.PermissionName(p) })
		value += fmt.Sprintf("\nRequires: `%s`", strings.Join(perms, "`, `"))
	}
	return moderation.EmbedField{Name: name, Value: value}
}
