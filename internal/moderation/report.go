package moderation

import (
	"context"
	"errors"
	"fmt"
)

// outcomeMessage composes the invoker-facing message for one cell of the
// notify x action matrix. noticeDeleted only matters when the notice was
// delivered and the kick failed.
func outcomeMessage(target Member, n NotificationOutcome, a ActionOutcome, noticeDeleted bool) Message {
	switch {
	case n.Delivered() && a.Applied():
		notice := n.Notice
		return Message{
			Content: fmt.Sprintf("Kicked %s.\n\nThe following message was sent to the user:", target),
			Embed:   &notice,
		}
	case n.Delivered() && noticeDeleted:
		notice := n.Notice
		return Message{
			Content: fmt.Sprintf("Kick failed %s %v.\n\nThe notice sent to the user has been deleted:", target, a.Cause),
			Embed:   &notice,
		}
	case n.Delivered():
		notice := n.Notice
		return Message{
			Content: fmt.Sprintf("Kick failed %s %v.\n\nThe notice below was sent to the user and could not be deleted, please inform them manually:", target, a.Cause),
			Embed:   &notice,
		}
	case a.Applied():
		return Message{
			Content: fmt.Sprintf("Kicked %s.\n\nUnable to DM the user, please inform them manually if possible: %v", target, n.Cause),
		}
	default:
		return Message{
			Content: fmt.Sprintf("Kick failed %s.\n\nUnable to kick: %v\n\nUnable to DM: %v", target, a.Cause, n.Cause),
		}
	}
}

// rejectionMessage renders a validation or authorization failure.
func rejectionMessage(invokerID string, err error) string {
	switch {
	case errors.Is(err, ErrNoTargetMentioned):
		return "Illegal argumentation, you need to mention a user that is still in the server."
	case errors.Is(err, ErrMissingReason):
		return "No reason provided for this action."
	case errors.Is(err, ErrNotInGuildContext):
		return "This command only works in a guild."
	case errors.Is(err, ErrInsufficientPrivilege):
		return fmt.Sprintf("<@%s> you need kick members permission to use this command!", invokerID)
	case errors.Is(err, ErrTargetNotInGuild):
		return "The mentioned user is not a member of this server."
	case errors.Is(err, ErrCannotInteractWithTarget):
		return "You can't interact with this member."
	default:
		return fmt.Sprintf("Unable to process the kick: %v", err)
	}
}

// settle applies the side effects of the matrix and reports to the invoker.
func (w *Workflow) settle(ctx context.Context, req Request, p parties, n NotificationOutcome, a ActionOutcome) Report {
	rep := Report{Notification: &n, Action: &a}

	switch {
	case a.Applied():
		rep.CaseNumber = w.recordKick(ctx, req, p)
		if n.Delivered() {
			// Notes are kept only for kicks the user was told about.
			rep.NoteRecorded = w.recordNote(ctx, req)
		}
	case n.Delivered():
		if err := w.platform.DeleteMessage(ctx, n.Handle); err != nil {
			w.log.Warn().Err(err).Str("guild", req.GuildID).Str("target", req.TargetID).Msg("delete kick notice")
		} else {
			rep.NoticeDeleted = true
		}
	}

	msg := outcomeMessage(p.target, n, a, rep.NoticeDeleted)
	rep.Feedback = msg.Content
	_, _ = w.feedback(ctx, req.InvokerID, msg)
	return rep
}
