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

// maxListedNotes keeps the rendered list inside one embed description.
const maxListedNotes = 25

type NotesCommand struct{}

func (c *NotesCommand) Name() string             { return "notes" }
func (c *NotesCommand) Aliases() []string        { return []string{"notes", "warnings"} }
func (c *NotesCommand) Syntax() string           { return "[User mention]" }
func (c *NotesCommand) Description() string      { return "Lists the moderation notes stored for a member" }
func (c *NotesCommand) Category() string         { return "Moderation" }
func (c *NotesCommand) UserPermissions() []int64 { return []int64{discordgo.PermissionKickMembers} }

func (c *NotesCommand) Run(ctx context.Context, mc *command.MessageContext, args string) error {
	mentions := mentionsInOrder(args, mc.Event.Mentions)
	if len(mentions) == 0 {
		return mc.DirectMessage(ctx, mod.Message{Content: "Illegal argumentation, you need to mention a user."})
	}
	targetID := mentions[0]

	notes, err := mc.Storage.Notes(mc.Event.GuildID, targetID)
	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}
	if len(notes) == 0 {
		return mc.DirectMessage(ctx, mod.Message{Content: fmt.Sprintf("There are no notes for <@%s>.", targetID)})
	}

	return mc.DirectMessage(ctx, mod.Message{Embed: notesEmbed(targetID, notes)})
}

func notesEmbed(targetID string, notes []mod.Note) *mod.Embed {
	total := len(notes)
	if total > maxListedNotes {
		notes = notes[total-maxListedNotes:]
	}
	offset := total - len(notes)
	lines := lo.Map(notes, func(n mod.Note, i int) string {
		return fmt.Sprintf("**%d.** `%s` <t:%d:d> by <@%s>: %s", offset+i+1, n.Type, n.CreatedAt.Unix(), n.AuthorID, n.Reason)
	})

	title := fmt.Sprintf("Notes (%d)", total)
	if offset > 0 {
		title = fmt.Sprintf("Notes (latest %d of %d)", len(notes), total)
	}
	return &mod.Embed{
		Title:       title,
		Description: fmt.Sprintf("<@%s>\n\n%s", targetID, strings.Join(lines, "\n")),
		Color:       colorNotes,
	}
}

const colorNotes = 0xf1c40f
