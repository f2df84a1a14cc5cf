package discord

import (
	"context"
	"fmt"
	"time"

	"server-warden/internal/moderation"
	"server-warden/pkg/jobmgr"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	colorAudit = 0xe67e22
	// discordEpoch is the first second of 2015 in Unix milliseconds.
	discordEpoch int64 = 1420070400000
)

// AuditStore persists audit entries and knows each guild's log channel.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry moderation.AuditEntry) (int64, error)
	LogChannel(guildID string) (string, error)
}

// Sender posts a message to a channel.
type Sender interface {
	SendMessage(ctx context.Context, channelID string, msg moderation.Message) (moderation.MessageHandle, error)
}

// AuditChannel stores audit entries and then posts them to the guild's log
// channel when one is configured. Posts run in the background on jobs, so
// their failures never fail the append.
type AuditChannel struct {
	store  AuditStore
	sender Sender
	jobs   *jobmgr.Manager
	log    zerolog.Logger
}

func NewAuditChannel(store AuditStore, sender Sender, jobs *jobmgr.Manager, log zerolog.Logger) *AuditChannel {
	return &AuditChannel{store: store, sender: sender, jobs: jobs, log: log}
}

func (a *AuditChannel) AppendAudit(ctx context.Context, entry moderation.AuditEntry) (int64, error) {
	caseNumber, err := a.store.AppendAudit(ctx, entry)
	if err != nil {
		return 0, err
	}
	entry.CaseNumber = caseNumber
	a.post(entry.GuildID, fmt.Sprintf("audit-post:%s:%d", entry.GuildID, caseNumber), auditEmbed(entry))
	return caseNumber, nil
}

// PostLog posts embed to the guild's log channel without storing a case.
func (a *AuditChannel) PostLog(_ context.Context, guildID string, embed moderation.Embed) {
	a.post(guildID, "modlog-post:"+guildID+":"+uuid.NewString(), &embed)
}

func (a *AuditChannel) post(guildID, job string, embed *moderation.Embed) {
	channelID, err := a.store.LogChannel(guildID)
	if err != nil {
		a.log.Warn().Err(err).Str("guild", guildID).Msg("failed to read log channel")
		return
	}
	if channelID == "" {
		return
	}
	err = a.jobs.StartAsync(job, func(ctx context.Context) error {
		if _, err := a.sender.SendMessage(ctx, channelID, moderation.Message{Embed: embed}); err != nil {
			return fmt.Errorf("post to log channel %s: %w", channelID, err)
		}
		return nil
	})
	if err != nil {
		a.log.Warn().Err(err).Str("guild", guildID).Str("job", job).Msg("log channel post dropped")
	}
}

var actionTitles = map[moderation.ActionType]string{
	moderation.ActionKick: "kicked",
}

func auditEmbed(e moderation.AuditEntry) *moderation.Embed {
	user := fmt.Sprintf("%s (<@%s>)", e.TargetName, e.TargetID)
	if created, ok := accountCreated(e.TargetID); ok {
		user += fmt.Sprintf("\nAccount created <t:%d:R>", created.Unix())
	}
	return &moderation.Embed{
		Title: fmt.Sprintf("User %s | Case: %d", actionTitles[e.Action], e.CaseNumber),
		Color: colorAudit,
		Fields: []moderation.EmbedField{
			{Name: "User", Value: user, Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("%s (<@%s>)", e.ModeratorName, e.ModeratorID), Inline: true},
			{Name: "Reason", Value: e.Reason},
		},
	}
}

// accountCreated reads the creation time encoded in a Discord snowflake.
func accountCreated(userID string) (time.Time, bool) {
	id, err := snowflake.ParseString(userID)
	if err != nil || id <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(id.Int64()>>22 + discordEpoch).UTC(), true
}
