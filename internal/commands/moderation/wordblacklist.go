package moderation

import (
	"context"
	"fmt"
	"strings"

	"server-warden/internal/command"
	mod "server-warden/internal/moderation"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

type WordBlacklistCommand struct{}

func (c *WordBlacklistCommand) Name() string      { return "wordblacklist" }
func (c *WordBlacklistCommand) Aliases() []string { return []string{"wordblacklist", "blacklist"} }
func (c *WordBlacklistCommand) Syntax() string {
	return "[add word method | remove word | list]"
}
func (c *WordBlacklistCommand) Description() string {
	return "Manages the words whose messages are removed. Methods: " + strings.Join(methodNames(), ", ")
}
func (c *WordBlacklistCommand) Category() string { return "Moderation" }
func (c *WordBlacklistCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageMessages}
}

func (c *WordBlacklistCommand) Run(ctx context.Context, mc *command.MessageContext, args string) error {
	guildID := mc.Event.GuildID
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return mc.DirectMessage(ctx, mod.Message{Content: "Usage: " + c.Syntax()})
	}

	switch strings.ToLower(fields[0]) {
	case "list":
		words, err := mc.Storage.BlacklistedWords(guildID)
		if err != nil {
			return fmt.Errorf("failed to load word blacklist: %w", err)
		}
		return mc.DirectMessage(ctx, mod.Message{Embed: blacklistEmbed(words)})

	case "add":
		if len(fields) != 3 {
			return mc.DirectMessage(ctx, mod.Message{Content: "You need to specify a word followed by a filtering method."})
		}
		method, err := mod.ParseFilterMethod(fields[2])
		if err != nil {
			return mc.DirectMessage(ctx, mod.Message{Content: fmt.Sprintf("Unknown filtering method %q, use one of: %s.", fields[2], strings.Join(methodNames(), ", "))})
		}
		if err := mc.Storage.AddBlacklistedWord(guildID, mod.BlacklistedWord{Word: fields[1], Method: method}); err != nil {
			return fmt.Errorf("failed to add blacklisted word: %w", err)
		}
		return mc.DirectMessage(ctx, mod.Message{Content: fmt.Sprintf("Messages with `%s` (%s) will be removed.", fields[1], method)})

	case "remove":
		if len(fields) != 2 {
			return mc.DirectMessage(ctx, mod.Message{Content: "You need to specify the word to remove."})
		}
		removed, err := mc.Storage.RemoveBlacklistedWord(guildID, fields[1])
		if err != nil {
			return fmt.Errorf("failed to remove blacklisted word: %w", err)
		}
		if !removed {
			return mc.DirectMessage(ctx, mod.Message{Content: fmt.Sprintf("`%s` is not blacklisted.", fields[1])})
		}
		return mc.DirectMessage(ctx, mod.Message{Content: fmt.Sprintf("`%s` is no longer blacklisted.", fields[1])})

	default:
		return mc.DirectMessage(ctx, mod.Message{Content: "Usage: " + c.Syntax()})
	}
}

func methodNames() []string {
	return lo.Map(mod.FilterMethods, func(m mod.FilterMethod, _ int) string { return string(m) })
}

func blacklistEmbed(words []mod.BlacklistedWord) *mod.Embed {
	desc := "No words are blacklisted."
	if len(words) > 0 {
		desc = strings.Join(lo.Map(words, func(w mod.BlacklistedWord, _ int) string {
			return fmt.Sprintf("`%s` (%s)", w.Word, w.Method)
		}), "\n")
	}
	return &mod.Embed{
		Title:       fmt.Sprintf("Word blacklist (%d)", len(words)),
		Description: desc,
		Color:       colorFiltered,
	}
}

const colorFiltered = 0xe74c3c
