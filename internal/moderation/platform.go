package moderation

import "context"

// Platform is the chat-platform client the workflow drives. Every method is
// a remote call that may fail independently of the others.
type Platform interface {
	OpenPrivateChannel(ctx context.Context, userID string) (channelID string, err error)
	SendMessage(ctx context.Context, channelID string, msg Message) (MessageHandle, error)
	DeleteMessage(ctx context.Context, h MessageHandle) error
	Kick(ctx context.Context, guildID, userID, reason string) error

	Guild(ctx context.Context, guildID string) (Guild, error)
	// Member returns ErrMemberNotFound when userID is not in the guild.
	Member(ctx context.Context, guildID, userID string) (Member, error)
	HasCapability(ctx context.Context, guildID, userID string, c Capability) (bool, error)
	// CanActOn reports whether actor outranks target in the guild.
	CanActOn(ctx context.Context, guildID, actorID, targetID string) (bool, error)
}

// AuditLog allocates a per-guild case number and stores the entry.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry AuditEntry) (caseNumber int64, err error)
}

type NoteStore interface {
	AddNote(ctx context.Context, note Note) error
}
