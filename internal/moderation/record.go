package moderation

import (
	"context"

	"github.com/google/uuid"
)

// recordKick writes the audit entry and returns the allocated case number,
// 0 when the write failed. Failures are logged, never reported upstream.
func (w *Workflow) recordKick(ctx context.Context, req Request, p parties) int64 {
	entry := AuditEntry{
		GuildID:       req.GuildID,
		TargetID:      req.TargetID,
		TargetName:    p.target.NameAndUsername(),
		ModeratorID:   req.InvokerID,
		ModeratorName: p.invoker.NameAndUsername(),
		Reason:        req.Reason,
		Action:        ActionKick,
		CreatedAt:     w.now().UTC(),
	}

	caseNumber, err := w.audit.AppendAudit(ctx, entry)
	if err != nil {
		w.log.Warn().Err(err).Str("guild", req.GuildID).Str("target", req.TargetID).Msg("append audit entry")
		return 0
	}
	w.log.Info().Int64("case", caseNumber).Str("guild", req.GuildID).Str("target", req.TargetID).Str("moderator", req.InvokerID).Msg("kick recorded")
	return caseNumber
}

func (w *Workflow) recordNote(ctx context.Context, req Request) bool {
	note := Note{
		ID:        uuid.NewString(),
		TargetID:  req.TargetID,
		GuildID:   req.GuildID,
		AuthorID:  req.InvokerID,
		Reason:    req.Reason,
		Type:      NoteWarn,
		CreatedAt: w.now().UTC(),
	}
	if err := w.notes.AddNote(ctx, note); err != nil {
		w.log.Warn().Err(err).Str("guild", req.GuildID).Str("target", req.TargetID).Msg("add note")
		return false
	}
	return true
}
