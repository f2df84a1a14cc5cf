package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"server-warden/internal/command"
	"server-warden/internal/config"
	"server-warden/internal/moderation"
	"server-warden/internal/storage"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent

// drainTimeout bounds how long Run waits for running handlers on shutdown.
const drainTimeout = 30 * time.Second

// MessageFilter screens guild messages.
type MessageFilter interface {
	Match(guildID, content string) (moderation.BlacklistedWord, bool)
	Remove(ctx context.Context, msg moderation.FilteredMessage, hit moderation.BlacklistedWord) error
}

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	platform *Platform
	storage  *storage.Storage
	cfg      *config.Config
	log      zerolog.Logger
	registry *cmd.Registry
	filter   MessageFilter

	// ctx is the base context for command runs, set by Run.
	ctx context.Context

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

// NewBot creates the session without connecting it.
func NewBot(cfg *config.Config, store *storage.Storage, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents

	return &Bot{
		dg:       dg,
		platform: NewPlatform(dg),
		storage:  store,
		cfg:      cfg,
		log:      log,
		ctx:      context.Background(),
	}, nil
}

// Platform returns the moderation platform backed by the bot's session.
func (b *Bot) Platform() *Platform {
	return b.platform
}

// Run connects to the gateway, screens guild messages with filter (nil
// disables it) and dispatches prefixed commands from registry until ctx is
// done. It returns once the handlers still running have finished.
func (b *Bot) Run(ctx context.Context, registry *cmd.Registry, filter MessageFilter) error {
	b.ctx = ctx
	b.registry = registry
	b.filter = filter

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onMessageUpdate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	if err := b.dg.Close(); err != nil {
		b.log.Warn().Err(err).Msg("failed to close session")
	}
	if !b.drain(drainTimeout) {
		b.log.Warn().Dur("timeout", drainTimeout).Msg("handlers still running at shutdown")
	}
	return nil
}

// track registers a running handler. It returns false once draining started.
func (b *Bot) track() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.draining {
		return false
	}
	b.inflight.Add(1)
	return true
}

// drain stops new handlers and waits for running ones. It reports whether
// they all finished within timeout.
func (b *Bot) drain(timeout time.Duration) bool {
	b.mu.Lock()
	b.draining = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Str("prefix", b.cfg.CommandPrefix).
		Msg("discord bot is running")
}

// onGuildCreate is called when a guild becomes available
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Debug().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
}

// onMessageCreate dispatches messages starting with the command prefix.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !b.track() {
		return
	}
	defer b.inflight.Done()

	// In-flight handlers finish on shutdown.
	ctx := context.WithoutCancel(b.ctx)

	if b.screen(ctx, m.Message) {
		return
	}

	alias, args, ok := parseCommand(m.Content, b.cfg.CommandPrefix)
	if !ok {
		return
	}
	c := b.registry.Get(alias)
	if c == nil {
		return
	}

	mc := &command.MessageContext{
		Event:       m,
		Storage:     b.storage,
		Messenger:   b.platform,
		Permissions: b.authorPermissions(ctx, m.Message),
		Developer:   config.IsDeveloper(b.cfg, m.Author.ID),
	}
	if err := c.Run(ctx, &cmd.Invocation{Alias: alias, Args: args, Data: mc}); err != nil {
		b.log.Error().Err(err).
			Str("command", c.Name()).
			Str("guild", m.GuildID).
			Str("user", m.Author.ID).
			Msg("error running command")
	}
}

// onMessageUpdate screens edited messages.
func (b *Bot) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if !b.track() {
		return
	}
	defer b.inflight.Done()

	b.screen(context.WithoutCancel(b.ctx), m.Message)
}

// screen removes a guild message that hits the word blacklist and reports
// whether it did. Members who can manage messages are exempt.
func (b *Bot) screen(ctx context.Context, m *discordgo.Message) bool {
	if b.filter == nil || m.GuildID == "" || m.Author == nil || m.Content == "" {
		return false
	}
	hit, ok := b.filter.Match(m.GuildID, m.Content)
	if !ok {
		return false
	}
	if hasPermission(b.authorPermissions(ctx, m), discordgo.PermissionManageMessages) {
		return false
	}

	msg := moderation.FilteredMessage{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Content:   m.Content,
		Author: moderation.Member{
			ID:        m.Author.ID,
			Username:  m.Author.Username,
			AvatarURL: m.Author.AvatarURL(""),
		},
	}
	if err := b.filter.Remove(ctx, msg, hit); err != nil {
		b.log.Warn().Err(err).Str("guild", m.GuildID).Str("user", m.Author.ID).Msg("failed to remove filtered message")
		return false
	}
	return true
}

// authorPermissions returns the author's guild-wide permissions, 0 in DMs
// or when the guild cannot be loaded.
func (b *Bot) authorPermissions(ctx context.Context, m *discordgo.Message) int64 {
	if m.GuildID == "" {
		return 0
	}
	g, err := b.platform.guild(ctx, m.GuildID)
	if err != nil {
		b.log.Warn().Err(err).Str("guild", m.GuildID).Msg("failed to load guild for permissions")
		return 0
	}
	member := m.Member
	if member == nil {
		if member, err = b.platform.member(ctx, m.GuildID, m.Author.ID); err != nil {
			b.log.Warn().Err(err).Str("guild", m.GuildID).Str("user", m.Author.ID).Msg("failed to load member for permissions")
			return 0
		}
	}
	// Members attached to message events carry roles but no user.
	withUser := *member
	withUser.User = m.Author
	return guildPermissions(g, &withUser)
}

// parseCommand splits "!kick @user reason" into "kick" and "@user reason".
func parseCommand(content, prefix string) (alias, args string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	body := strings.TrimPrefix(content, prefix)
	if body == "" || unicode.IsSpace(rune(body[0])) {
		return "", "", false
	}
	alias = body
	if i := strings.IndexFunc(body, unicode.IsSpace); i >= 0 {
		alias, args = body[:i], strings.TrimSpace(body[i:])
	}
	return alias, args, true
}
