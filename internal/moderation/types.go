// Package moderation implements the kick workflow: resolve the target, check
// the invoker's authority, notify the target, kick, then report back and
// record the case. Every remote call goes through the Platform interface.
package moderation

import (
	"fmt"
	"time"
)

// Capability is a platform permission the invoker must hold.
type Capability string

const CapabilityRemoveMembers Capability = "remove_members"

// Member is the subset of a guild member the workflow needs.
type Member struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
}

// NameAndUsername renders "Display Name (username)", or just the username
// when both are the same.
func (m Member) NameAndUsername() string {
	switch {
	case m.DisplayName == "" || m.DisplayName == m.Username:
		return m.Username
	case m.Username == "":
		return m.DisplayName
	default:
		return fmt.Sprintf("%s (%s)", m.DisplayName, m.Username)
	}
}

func (m Member) String() string {
	return fmt.Sprintf("%s [%s]", m.NameAndUsername(), m.ID)
}

type Guild struct {
	ID   string
	Name string
}

// EmbedField is a single name/value row of an Embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a platform-neutral rich message body.
type Embed struct {
	Title         string
	Description   string
	Color         int
	AuthorName    string
	AuthorIconURL string
	Fields        []EmbedField
}

type Message struct {
	Content string
	Embed   *Embed
}

// MessageHandle points at a delivered message. It is only used to delete
// that message later and does not own it.
type MessageHandle struct {
	ChannelID string
	MessageID string
}

// Invocation is the raw command context handed over by the dispatcher.
type Invocation struct {
	InvokerID string
	GuildID   string // empty for direct messages
	Mentions  []string
	Args      string
}

// Request is a validated kick request.
type Request struct {
	InvokerID string
	GuildID   string
	TargetID  string
	Reason    string
}

// NewRequest builds a Request. An empty reason is a construction failure.
func NewRequest(invokerID, guildID, targetID, reason string) (Request, error) {
	if targetID == "" {
		return Request{}, ErrNoTargetMentioned
	}
	if reason == "" {
		return Request{}, ErrMissingReason
	}
	return Request{InvokerID: invokerID, GuildID: guildID, TargetID: targetID, Reason: reason}, nil
}

// Decision is the result of the authority checks.
type Decision int

const (
	Authorized Decision = iota
	InsufficientPrivilege
	CannotInteractWithTarget
)

func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case InsufficientPrivilege:
		return "insufficient privilege"
	case CannotInteractWithTarget:
		return "cannot interact with target"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Err maps a decision onto its sentinel error, nil when Authorized.
func (d Decision) Err() error {
	switch d {
	case Authorized:
		return nil
	case InsufficientPrivilege:
		return ErrInsufficientPrivilege
	default:
		return ErrCannotInteractWithTarget
	}
}

// NotificationOutcome is either Delivered (Handle set) or Undeliverable (Cause set).
type NotificationOutcome struct {
	Handle MessageHandle
	Notice Embed
	Cause  error
}

func Delivered(h MessageHandle, notice Embed) NotificationOutcome {
	return NotificationOutcome{Handle: h, Notice: notice}
}

func Undeliverable(cause error) NotificationOutcome {
	return NotificationOutcome{Cause: cause}
}

func (n NotificationOutcome) Delivered() bool { return n.Cause == nil }

// ActionOutcome is either Applied (nil Cause) or Failed.
type ActionOutcome struct {
	Cause error
}

func Applied() ActionOutcome { return ActionOutcome{} }

func Failed(cause error) ActionOutcome { return ActionOutcome{Cause: cause} }

func (a ActionOutcome) Applied() bool { return a.Cause == nil }

type ActionType string

const ActionKick ActionType = "kick"

// AuditEntry is one moderation case. CaseNumber is assigned by the AuditLog.
type AuditEntry struct {
	CaseNumber    int64      `json:"case_number"`
	GuildID       string     `json:"guild_id"`
	TargetID      string     `json:"target_id"`
	TargetName    string     `json:"target_name"`
	ModeratorID   string     `json:"moderator_id"`
	ModeratorName string     `json:"moderator_name"`
	Reason        string     `json:"reason"`
	Action        ActionType `json:"action"`
	CreatedAt     time.Time  `json:"created_at"`
}

type NoteType string

const NoteWarn NoteType = "warn"

// Note is a moderation annotation attached to a user in a guild.
type Note struct {
	ID        string    `json:"id"`
	TargetID  string    `json:"target_id"`
	GuildID   string    `json:"guild_id"`
	AuthorID  string    `json:"author_id"`
	Reason    string    `json:"reason"`
	Type      NoteType  `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
