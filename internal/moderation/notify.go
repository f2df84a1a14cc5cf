package moderation

import (
	"context"
	"fmt"
)

const colorRed = 0xff0000

func kickNotice(p parties, reason string) Embed {
	moderator := p.invoker.NameAndUsername()
	return Embed{
		Title:         fmt.Sprintf("%s: You have been kicked by %s", p.guild.Name, moderator),
		Description:   "Reason: " + reason,
		Color:         colorRed,
		AuthorName:    moderator,
		AuthorIconURL: p.invoker.AvatarURL,
	}
}

// notify tries to DM the target before the kick. It has no timeout of its
// own; whatever the platform returns is captured in the outcome.
func (w *Workflow) notify(ctx context.Context, req Request, p parties) NotificationOutcome {
	notice := kickNotice(p, req.Reason)

	channelID, err := w.platform.OpenPrivateChannel(ctx, req.TargetID)
	if err != nil {
		return Undeliverable(fmt.Errorf("open private channel: %w", err))
	}
	h, err := w.platform.SendMessage(ctx, channelID, Message{Embed: &notice})
	if err != nil {
		return Undeliverable(fmt.Errorf("send notice: %w", err))
	}
	return Delivered(h, notice)
}

// kick applies the action once, without retry.
func (w *Workflow) kick(ctx context.Context, req Request) ActionOutcome {
	if err := w.platform.Kick(ctx, req.GuildID, req.TargetID, req.Reason); err != nil {
		return Failed(err)
	}
	return Applied()
}
