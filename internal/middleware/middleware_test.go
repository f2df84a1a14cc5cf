package middleware

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"server-warden/internal/command"
	"server-warden/internal/moderation"
	"server-warden/internal/storage"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMessenger) OpenPrivateChannel(_ context.Context, userID string) (string, error) {
	return "dm-" + userID, nil
}

func (f *fakeMessenger) SendMessage(_ context.Context, channelID string, msg moderation.Message) (moderation.MessageHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, channelID+": "+msg.Content)
	return moderation.MessageHandle{ChannelID: channelID, MessageID: "1"}, nil
}

type probeCommand struct {
	perms []int64
	runs  int
}

func (p *probeCommand) Name() string             { return "probe" }
func (p *probeCommand) Aliases() []string        { return nil }
func (p *probeCommand) Syntax() string           { return "" }
func (p *probeCommand) Description() string      { return "probe" }
func (p *probeCommand) Category() string         { return "Test" }
func (p *probeCommand) UserPermissions() []int64 { return p.perms }
func (p *probeCommand) Run(context.Context, *command.MessageContext, string) error {
	p.runs++
	return nil
}

func messageContext(guildID string, perms int64, m *fakeMessenger) *command.MessageContext {
	return &command.MessageContext{
		Event: &discordgo.MessageCreate{Message: &discordgo.Message{
			GuildID:   guildID,
			ChannelID: "chan",
			Author:    &discordgo.User{ID: "100", Username: "mod"},
		}},
		Messenger:   m,
		Permissions: perms,
	}
}

func run(t *testing.T, c cmd.Command, mc *command.MessageContext) {
	t.Helper()
	require.NoError(t, c.Run(context.Background(), &cmd.Invocation{Alias: "probe", Data: mc}))
}

func TestGuildOnly(t *testing.T) {
	probe := &probeCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: probe}, WithGuildOnly())

	run(t, c, messageContext("", 0, &fakeMessenger{}))
	assert.Equal(t, 0, probe.runs)

	run(t, c, messageContext("900", 0, &fakeMessenger{}))
	assert.Equal(t, 1, probe.runs)
}

func TestUserPermissionCheck(t *testing.T) {
	probe := &probeCommand{perms: []int64{discordgo.PermissionKickMembers, discordgo.PermissionBanMembers}}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: probe}, WithUserPermissionCheck())
	m := &fakeMessenger{}

	run(t, c, messageContext("900", discordgo.PermissionSendMessages, m))
	assert.Equal(t, 0, probe.runs)
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "dm-100: ")
	assert.Contains(t, m.sent[0], "`Kick Members`, `Ban Members`")

	run(t, c, messageContext("900", discordgo.PermissionBanMembers, m))
	assert.Equal(t, 1, probe.runs)

	run(t, c, messageContext("900", discordgo.PermissionAdministrator, m))
	assert.Equal(t, 2, probe.runs)

	dev := messageContext("900", 0, m)
	dev.Developer = true
	run(t, c, dev)
	assert.Equal(t, 3, probe.runs)
}

func TestPermissionNameFallback(t *testing.T) {
	assert.Equal(t, "Kick Members", PermissionName(discordgo.PermissionKickMembers))
	assert.Equal(t, "0x400000000000", PermissionName(1<<46))
}

func TestCooldown(t *testing.T) {
	probe := &probeCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: probe}, WithCooldown(time.Hour))
	m := &fakeMessenger{}

	run(t, c, messageContext("900", 0, m))
	run(t, c, messageContext("900", 0, m))
	assert.Equal(t, 1, probe.runs)

	other := messageContext("900", 0, m)
	other.Event.Author = &discordgo.User{ID: "101"}
	run(t, c, other)
	assert.Equal(t, 2, probe.runs)
}

func TestCooldownDisabled(t *testing.T) {
	probe := &probeCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: probe}, WithCooldown(0))

	run(t, c, messageContext("900", 0, &fakeMessenger{}))
	run(t, c, messageContext("900", 0, &fakeMessenger{}))
	assert.Equal(t, 2, probe.runs)
}

func TestCommandLoggerRecordsHistory(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "db.json"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	probe := &probeCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: probe}, WithCommandLogger(zerolog.Nop()))
	mc := messageContext("900", 0, &fakeMessenger{})
	mc.Storage = store

	require.NoError(t, c.Run(context.Background(), &cmd.Invocation{Alias: "probe", Args: "<@200> spam", Data: mc}))

	history, err := store.FetchCommandHistory("900")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "probe", history[0].Command)
	assert.Equal(t, "<@200> spam", history[0].Param)
	assert.Equal(t, "100", history[0].UserID)
}
