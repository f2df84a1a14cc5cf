package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"server-warden/pkg/jobmgr"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	platform *fakePlatform
	audit    *fakeAudit
	notes    *fakeNotes
	wf       *Workflow
}

func newHarness(t *testing.T, ttl time.Duration) *harness {
	t.Helper()
	h := &harness{platform: newFakePlatform(), audit: newFakeAudit(), notes: &fakeNotes{}}
	h.wf = New(h.platform, h.audit, h.notes, Config{
		Logger:    zerolog.Nop(),
		DenialTTL: ttl,
		Now:       func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) },
	})
	return h
}

func validInvocation() Invocation {
	return Invocation{
		InvokerID: testInvoker,
		GuildID:   testGuild,
		Mentions:  []string{testTarget},
		Args:      "<@200> posting scam links",
	}
}

func (h *harness) invokerFeedback(t *testing.T) string {
	t.Helper()
	msgs := h.platform.sentTo(dmChannel(testInvoker))
	require.Len(t, msgs, 1)
	return msgs[0].Msg.Content
}

func TestScenarioDeliveredAndKicked(t *testing.T) {
	h := newHarness(t, 0)

	rep := h.wf.Run(context.Background(), validInvocation())

	require.NoError(t, rep.Rejected)
	assert.Equal(t, int64(1), rep.CaseNumber)
	assert.True(t, rep.NoteRecorded)
	assert.Contains(t, h.invokerFeedback(t), "Kicked troll [200].")
	assert.Contains(t, h.invokerFeedback(t), "The following message was sent to the user")

	notice := h.platform.sentTo(dmChannel(testTarget))
	require.Len(t, notice, 1)
	require.NotNil(t, notice[0].Msg.Embed)
	assert.Equal(t, "Gopher Den: You have been kicked by Moderator (mod)", notice[0].Msg.Embed.Title)
	assert.Equal(t, "Reason: posting scam links", notice[0].Msg.Embed.Description)
	assert.Equal(t, "https://cdn/mod.png", notice[0].Msg.Embed.AuthorIconURL)

	require.Len(t, h.audit.entries, 1)
	entry := h.audit.entries[0]
	assert.Equal(t, ActionKick, entry.Action)
	assert.Equal(t, testTarget, entry.TargetID)
	assert.Equal(t, testInvoker, entry.ModeratorID)
	assert.Equal(t, "posting scam links", entry.Reason)

	require.Len(t, h.notes.notes, 1)
	note := h.notes.notes[0]
	assert.Equal(t, NoteWarn, note.Type)
	assert.Equal(t, testTarget, note.TargetID)
	assert.Equal(t, testGuild, note.GuildID)
	assert.Equal(t, testInvoker, note.AuthorID)
	assert.NotEmpty(t, note.ID)
	assert.Empty(t, h.platform.deletedHandles())
}

func TestScenarioUndeliverableAndKicked(t *testing.T) {
	h := newHarness(t, 0)
	h.platform.sendErr[dmChannel(testTarget)] = errors.New("Cannot send messages to this user")

	rep := h.wf.Run(context.Background(), validInvocation())

	assert.Equal(t, int64(1), rep.CaseNumber)
	assert.False(t, rep.NoteRecorded)
	assert.Empty(t, h.notes.notes)
	require.Len(t, h.audit.entries, 1)

	feedback := h.invokerFeedback(t)
	assert.Contains(t, feedback, "Kicked troll [200].")
	assert.Contains(t, feedback, "Unable to DM the user")
	assert.Contains(t, feedback, "Cannot send messages to this user")
}

func TestScenarioDeliveredButKickFailed(t *testing.T) {
	h := newHarness(t, 0)
	h.platform.kickErr = errors.New("Missing Permissions")

	rep := h.wf.Run(context.Background(), validInvocation())

	assert.Zero(t, rep.CaseNumber)
	assert.Empty(t, h.audit.entries)
	assert.Empty(t, h.notes.notes)
	assert.True(t, rep.NoticeDeleted)

	notice := h.platform.sentTo(dmChannel(testTarget))
	require.Len(t, notice, 1)
	assert.Equal(t, []MessageHandle{notice[0].Handle}, h.platform.deletedHandles())

	feedback := h.invokerFeedback(t)
	assert.Contains(t, feedback, "Kick failed troll [200] Missing Permissions.")
	assert.Contains(t, feedback, "has been deleted")
}

func TestScenarioNoMention(t *testing.T) {
	h := newHarness(t, 0)
	inv := validInvocation()
	inv.Mentions = nil

	rep := h.wf.Run(context.Background(), inv)

	require.ErrorIs(t, rep.Rejected, ErrNoTargetMentioned)
	assert.Contains(t, h.invokerFeedback(t), "Illegal argumentation")
	assert.Empty(t, h.platform.kicks)
	assert.Empty(t, h.platform.sentTo(dmChannel(testTarget)))
	assert.Empty(t, h.platform.deletedHandles())
	assert.Empty(t, h.audit.entries)
	// The only remote write is the feedback DM itself.
	assert.Equal(t, 1, h.platform.mutations)
}

func TestUndeliverableAndKickFailed(t *testing.T) {
	h := newHarness(t, 0)
	h.platform.dmErr[testTarget] = errors.New("dms closed")
	h.platform.kickErr = errors.New("Missing Permissions")

	rep := h.wf.Run(context.Background(), validInvocation())

	assert.Zero(t, rep.CaseNumber)
	assert.False(t, rep.NoticeDeleted)
	assert.Empty(t, h.platform.deletedHandles())
	assert.Empty(t, h.audit.entries)
	assert.Empty(t, h.notes.notes)

	feedback := h.invokerFeedback(t)
	assert.Contains(t, feedback, "Kick failed troll [200].")
	assert.Contains(t, feedback, "Unable to kick: Missing Permissions")
	assert.Contains(t, feedback, "Unable to DM: open private channel: dms closed")
}

func TestOutcomeMatrix(t *testing.T) {
	tests := []struct {
		name        string
		dmFails     bool
		kickFails   bool
		wantAudit   bool
		wantNote    bool
		wantDeleted bool
	}{
		{name: "delivered/applied", wantAudit: true, wantNote: true},
		{name: "delivered/failed", kickFails: true, wantDeleted: true},
		{name: "undeliverable/applied", dmFails: true, wantAudit: true},
		{name: "undeliverable/failed", dmFails: true, kickFails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 0)
			if tt.dmFails {
				h.platform.dmErr[testTarget] = errors.New("dms closed")
			}
			if tt.kickFails {
				h.platform.kickErr = errors.New("unknown member")
			}

			rep := h.wf.Run(context.Background(), validInvocation())

			require.NotNil(t, rep.Notification)
			require.NotNil(t, rep.Action)
			assert.Equal(t, !tt.dmFails, rep.Notification.Delivered())
			assert.Equal(t, !tt.kickFails, rep.Action.Applied())

			assert.Len(t, h.platform.kicks, 1, "kick is attempted exactly once")
			assert.Equal(t, tt.wantAudit, len(h.audit.entries) == 1)
			assert.Equal(t, tt.wantNote, len(h.notes.notes) == 1)
			assert.Equal(t, tt.wantNote, rep.NoteRecorded)
			if tt.wantDeleted {
				assert.Len(t, h.platform.deletedHandles(), 1)
			} else {
				assert.Empty(t, h.platform.deletedHandles())
			}
			assert.Len(t, h.platform.sentTo(dmChannel(testInvoker)), 1)
		})
	}
}

func TestAuthorizationFailuresNeverKick(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *harness, inv *Invocation)
		wantErr error
		wantMsg string
	}{
		{
			name:    "direct message",
			setup:   func(_ *harness, inv *Invocation) { inv.GuildID = "" },
			wantErr: ErrNotInGuildContext,
			wantMsg: "This command only works in a guild.",
		},
		{
			name:    "missing reason",
			setup:   func(_ *harness, inv *Invocation) { inv.Args = "<@200>" },
			wantErr: ErrMissingReason,
			wantMsg: "No reason provided for this action.",
		},
		{
			name:    "no kick capability",
			setup:   func(h *harness, _ *Invocation) { h.platform.canKick[testInvoker] = false },
			wantErr: ErrInsufficientPrivilege,
			wantMsg: "<@100> you need kick members permission to use this command!",
		},
		{
			name:    "target left the guild",
			setup:   func(h *harness, _ *Invocation) { delete(h.platform.members, testTarget) },
			wantErr: ErrTargetNotInGuild,
			wantMsg: "The mentioned user is not a member of this server.",
		},
		{
			name:    "target outranks invoker",
			setup:   func(h *harness, _ *Invocation) { h.platform.outranks = false },
			wantErr: ErrCannotInteractWithTarget,
			wantMsg: "You can't interact with this member.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 0)
			inv := validInvocation()
			tt.setup(h, &inv)

			rep := h.wf.Run(context.Background(), inv)

			require.ErrorIs(t, rep.Rejected, tt.wantErr)
			assert.Equal(t, tt.wantMsg, h.invokerFeedback(t))
			assert.Empty(t, h.platform.kicks)
			assert.Empty(t, h.platform.sentTo(dmChannel(testTarget)))
			assert.Empty(t, h.audit.entries)
			assert.Empty(t, h.notes.notes)
			assert.Nil(t, rep.Notification)
			assert.Nil(t, rep.Action)
		})
	}
}

func TestInvokerWithoutPrivateChannelStillKicks(t *testing.T) {
	h := newHarness(t, 0)
	h.platform.dmErr[testInvoker] = errors.New("dms closed")

	rep := h.wf.Run(context.Background(), validInvocation())

	assert.Len(t, h.platform.kicks, 1)
	assert.Equal(t, int64(1), rep.CaseNumber)
	assert.Empty(t, h.platform.sentTo(dmChannel(testInvoker)))
	assert.NotEmpty(t, rep.Feedback)
}

func TestRejectionDroppedWithoutPrivateChannel(t *testing.T) {
	h := newHarness(t, 0)
	h.platform.dmErr[testInvoker] = errors.New("dms closed")
	inv := validInvocation()
	inv.Mentions = nil

	rep := h.wf.Run(context.Background(), inv)

	require.ErrorIs(t, rep.Rejected, ErrNoTargetMentioned)
	assert.Zero(t, h.platform.mutations)
}

func TestDenialNoticeExpires(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.platform.canKick[testInvoker] = false

	h.wf.Run(context.Background(), validInvocation())

	denial := h.platform.sentTo(dmChannel(testInvoker))
	require.Len(t, denial, 1)
	assert.Eventually(t, func() bool {
		deleted := h.platform.deletedHandles()
		return len(deleted) == 1 && deleted[0] == denial[0].Handle
	}, time.Second, 5*time.Millisecond)
}

func TestOtherRejectionsDoNotExpire(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.platform.outranks = false

	h.wf.Run(context.Background(), validInvocation())

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, h.platform.deletedHandles())
}

func TestAuditFailureStillReportsKick(t *testing.T) {
	h := newHarness(t, 0)
	h.audit.err = errors.New("disk full")

	rep := h.wf.Run(context.Background(), validInvocation())

	assert.Zero(t, rep.CaseNumber)
	assert.True(t, rep.NoteRecorded)
	assert.Contains(t, h.invokerFeedback(t), "Kicked troll [200].")
}

func TestCaseNumbersIncrementPerGuild(t *testing.T) {
	h := newHarness(t, 0)

	first := h.wf.Run(context.Background(), validInvocation())
	second := h.wf.Run(context.Background(), validInvocation())

	assert.Equal(t, int64(1), first.CaseNumber)
	assert.Equal(t, int64(2), second.CaseNumber)
}

func TestShutdownDeletesPendingDenialNotice(t *testing.T) {
	jobs := jobmgr.NewManager(zerolog.Nop())
	platform := newFakePlatform()
	platform.canKick[testInvoker] = false
	wf := New(platform, newFakeAudit(), &fakeNotes{}, Config{Logger: zerolog.Nop(), DenialTTL: time.Hour, Jobs: jobs})

	wf.Run(context.Background(), validInvocation())
	require.Len(t, jobs.List(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, jobs.Shutdown(ctx))
	assert.Len(t, platform.deletedHandles(), 1)
}

func TestNotificationSettlesBeforeKick(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		want  []string
	}{
		{
			name: "delivered",
			want: []string{"open:200", "send:dm-200", "kick:200", "open:100", "send:dm-100"},
		},
		{
			name:  "send rejected",
			setup: func(h *harness) { h.platform.sendErr[dmChannel(testTarget)] = errors.New("Cannot send messages to this user") },
			want:  []string{"open:200", "send:dm-200", "kick:200", "open:100", "send:dm-100"},
		},
		{
			name:  "private channel unavailable",
			setup: func(h *harness) { h.platform.dmErr[testTarget] = errors.New("dms closed") },
			want:  []string{"open:200", "kick:200", "open:100", "send:dm-100"},
		},
		{
			name:  "delivered then kick failed",
			setup: func(h *harness) { h.platform.kickErr = errors.New("Missing Permissions") },
			want:  []string{"open:200", "send:dm-200", "kick:200", "delete:dm-200", "open:100", "send:dm-100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 0)
			if tt.setup != nil {
				tt.setup(h)
			}

			h.wf.Run(context.Background(), validInvocation())

			assert.Equal(t, tt.want, h.platform.callLog())
		})
	}
}

func TestNoticeDeleteFailureIsReported(t *testing.T) {
	h := newHarness(t, 0)
	h.platform.kickErr = errors.New("Missing Permissions")
	h.platform.deleteErr = errors.New("HTTP 404: Unknown Message")

	rep := h.wf.Run(context.Background(), validInvocation())

	assert.False(t, rep.NoticeDeleted)
	assert.Empty(t, h.platform.deletedHandles())
	assert.Empty(t, h.audit.entries)

	feedback := h.invokerFeedback(t)
	assert.Contains(t, feedback, "Kick failed troll [200] Missing Permissions.")
	assert.Contains(t, feedback, "could not be deleted")
	assert.NotContains(t, feedback, "has been deleted")
}
