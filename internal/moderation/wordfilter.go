package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"server-warden/pkg/jobmgr"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// FilterMethod decides how a blacklisted word is compared with each word of
// a message. All methods ignore case.
type FilterMethod string

const (
	FilterExact      FilterMethod = "exact"
	FilterContains   FilterMethod = "contains"
	FilterStartsWith FilterMethod = "starts_with"
	FilterEndsWith   FilterMethod = "ends_with"
)

var FilterMethods = []FilterMethod{FilterExact, FilterContains, FilterStartsWith, FilterEndsWith}

var ErrUnknownFilterMethod = errors.New("unknown filter method")

// ParseFilterMethod accepts a method name in any case, with "-" or "_".
func ParseFilterMethod(s string) (FilterMethod, error) {
	m := FilterMethod(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !lo.Contains(FilterMethods, m) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilterMethod, s)
	}
	return m, nil
}

// BlacklistedWord is one entry of a guild's word blacklist.
type BlacklistedWord struct {
	Word   string       `json:"word"`
	Method FilterMethod `json:"method"`
}

func (b BlacklistedWord) matches(word string) bool {
	w, banned := strings.ToLower(word), strings.ToLower(b.Word)
	switch b.Method {
	case FilterExact:
		return w == banned
	case FilterContains:
		return strings.Contains(w, banned)
	case FilterStartsWith:
		return strings.HasPrefix(w, banned)
	case FilterEndsWith:
		return strings.HasSuffix(w, banned)
	default:
		return false
	}
}

// MatchBlacklist returns the first entry hit by a whitespace separated word
// of content.
func MatchBlacklist(content string, blacklist []BlacklistedWord) (BlacklistedWord, bool) {
	words := strings.Fields(content)
	return lo.Find(blacklist, func(b BlacklistedWord) bool {
		return b.Word != "" && lo.SomeBy(words, b.matches)
	})
}

type BlacklistStore interface {
	BlacklistedWords(guildID string) ([]BlacklistedWord, error)
}

// ModeratorLog receives moderation events that are not numbered cases.
type ModeratorLog interface {
	PostLog(ctx context.Context, guildID string, embed Embed)
}

// MessageClient sends and deletes channel messages.
type MessageClient interface {
	SendMessage(ctx context.Context, channelID string, msg Message) (MessageHandle, error)
	DeleteMessage(ctx context.Context, h MessageHandle) error
}

// FilteredMessage is a guild message caught by the word filter.
type FilteredMessage struct {
	GuildID   string
	ChannelID string
	MessageID string
	Content   string
	Author    Member
}

type FilterConfig struct {
	Logger zerolog.Logger
	// WarningTTL is how long the warning posted in the channel stays. Zero
	// keeps it.
	WarningTTL time.Duration
	// Jobs schedules the warning deletion. A private manager is used when nil.
	Jobs *jobmgr.Manager
}

// WordFilter removes guild messages containing blacklisted words.
type WordFilter struct {
	messages   MessageClient
	store      BlacklistStore
	modlog     ModeratorLog
	log        zerolog.Logger
	warningTTL time.Duration
	jobs       *jobmgr.Manager
}

func NewWordFilter(messages MessageClient, store BlacklistStore, modlog ModeratorLog, cfg FilterConfig) *WordFilter {
	jobs := cfg.Jobs
	if jobs == nil {
		jobs = jobmgr.NewManager(cfg.Logger)
	}
	return &WordFilter{
		messages:   messages,
		store:      store,
		modlog:     modlog,
		log:        cfg.Logger,
		warningTTL: cfg.WarningTTL,
		jobs:       jobs,
	}
}

// Match checks content against the guild's blacklist. A blacklist that
// cannot be read matches nothing.
func (f *WordFilter) Match(guildID, content string) (BlacklistedWord, bool) {
	blacklist, err := f.store.BlacklistedWords(guildID)
	if err != nil {
		f.log.Warn().Err(err).Str("guild", guildID).Msg("failed to read word blacklist")
		return BlacklistedWord{}, false
	}
	return MatchBlacklist(content, blacklist)
}

// Remove deletes msg, posts it to the moderator log and warns the author in
// the channel. Nothing is logged or posted when the delete fails.
func (f *WordFilter) Remove(ctx context.Context, msg FilteredMessage, hit BlacklistedWord) error {
	if err := f.messages.DeleteMessage(ctx, MessageHandle{ChannelID: msg.ChannelID, MessageID: msg.MessageID}); err != nil {
		return fmt.Errorf("delete filtered message: %w", err)
	}
	f.log.Info().
		Str("guild", msg.GuildID).
		Str("channel", msg.ChannelID).
		Str("user", msg.Author.ID).
		Str("word", hit.Word).
		Msg("removed message with blacklisted word")

	if f.modlog != nil {
		f.modlog.PostLog(ctx, msg.GuildID, filteredEmbed(msg, hit))
	}

	warning := Message{Content: fmt.Sprintf("<@%s> Your message has been deleted because it contained banned word(s). Please watch your language.", msg.Author.ID)}
	h, err := f.messages.SendMessage(ctx, msg.ChannelID, warning)
	if err != nil {
		f.log.Debug().Err(err).Str("channel", msg.ChannelID).Msg("filter warning dropped")
		return nil
	}
	if f.warningTTL > 0 {
		scheduleDelete(f.jobs, f.messages, f.log, "expire-warning", h, f.warningTTL)
	}
	return nil
}

const colorFiltered = 0xe74c3c

func filteredEmbed(msg FilteredMessage, hit BlacklistedWord) Embed {
	return Embed{
		Title:         "Message removed for a blacklisted word",
		Description:   fmt.Sprintf("<#%s>\nOld message was:\n%s", msg.ChannelID, msg.Content),
		Color:         colorFiltered,
		AuthorName:    msg.Author.String(),
		AuthorIconURL: msg.Author.AvatarURL,
		Fields: []EmbedField{
			{Name: "Blacklisted word", Value: fmt.Sprintf("`%s` (%s)", hit.Word, hit.Method)},
		},
	}
}
