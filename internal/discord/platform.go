package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"server-warden/internal/moderation"

	"github.com/bwmarrin/discordgo"
)

// Platform implements moderation.Platform on a discordgo session. Lookups
// try the state cache first and fall back to REST.
type Platform struct {
	s *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s}
}

var capabilityPermissions = map[moderation.Capability]int64{
	moderation.CapabilityRemoveMembers: discordgo.PermissionKickMembers,
}

func (p *Platform) OpenPrivateChannel(ctx context.Context, userID string) (string, error) {
	ch, err := p.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", describeRESTError(err)
	}
	return ch.ID, nil
}

func (p *Platform) SendMessage(ctx context.Context, channelID string, msg moderation.Message) (moderation.MessageHandle, error) {
	send := &discordgo.MessageSend{
		Content:         msg.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers}},
	}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toDiscordEmbed(*msg.Embed)}
	}

	m, err := p.s.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return moderation.MessageHandle{}, describeRESTError(err)
	}
	return moderation.MessageHandle{ChannelID: m.ChannelID, MessageID: m.ID}, nil
}

func (p *Platform) DeleteMessage(ctx context.Context, h moderation.MessageHandle) error {
	return describeRESTError(p.s.ChannelMessageDelete(h.ChannelID, h.MessageID, discordgo.WithContext(ctx)))
}

func (p *Platform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return describeRESTError(p.s.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)))
}

func (p *Platform) Guild(ctx context.Context, guildID string) (moderation.Guild, error) {
	g, err := p.guild(ctx, guildID)
	if err != nil {
		return moderation.Guild{}, err
	}
	return moderation.Guild{ID: g.ID, Name: g.Name}, nil
}

func (p *Platform) Member(ctx context.Context, guildID, userID string) (moderation.Member, error) {
	m, err := p.member(ctx, guildID, userID)
	if err != nil {
		return moderation.Member{}, err
	}
	return toMember(m), nil
}

func (p *Platform) HasCapability(ctx context.Context, guildID, userID string, c moderation.Capability) (bool, error) {
	perm, ok := capabilityPermissions[c]
	if !ok {
		return false, fmt.Errorf("unknown capability %q", c)
	}
	g, err := p.guild(ctx, guildID)
	if err != nil {
		return false, err
	}
	m, err := p.member(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	return hasPermission(guildPermissions(g, m), perm), nil
}

func (p *Platform) CanActOn(ctx context.Context, guildID, actorID, targetID string) (bool, error) {
	g, err := p.guild(ctx, guildID)
	if err != nil {
		return false, err
	}
	actor, err := p.member(ctx, guildID, actorID)
	if err != nil {
		return false, err
	}
	target, err := p.member(ctx, guildID, targetID)
	if err != nil {
		return false, err
	}
	return outranks(g, actor, target), nil
}

func (p *Platform) guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if g, err := p.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return g, nil
	}
	g, err := p.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, describeRESTError(err))
	}
	return g, nil
}

func (p *Platform) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := p.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	m, err := p.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && isUnknownMember(restErr) {
			return nil, moderation.ErrMemberNotFound
		}
		return nil, fmt.Errorf("fetch member %s: %w", userID, describeRESTError(err))
	}
	return m, nil
}

func isUnknownMember(e *discordgo.RESTError) bool {
	if e.Message != nil {
		return e.Message.Code == discordgo.ErrCodeUnknownMember || e.Message.Code == discordgo.ErrCodeUnknownUser
	}
	return e.Response != nil && e.Response.StatusCode == http.StatusNotFound
}

// restError renders a Discord REST failure as "HTTP 403: Missing Permissions".
type restError struct {
	status  string
	message string
	err     *discordgo.RESTError
}

func (e *restError) Error() string {
	if e.message == "" {
		return "HTTP " + e.status
	}
	return fmt.Sprintf("HTTP %s: %s", e.status, e.message)
}

func (e *restError) Unwrap() error { return e.err }

func describeRESTError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	out := &restError{err: restErr}
	if restErr.Response != nil {
		out.status = restErr.Response.Status
	}
	if restErr.Message != nil {
		out.message = restErr.Message.Message
	}
	return out
}

func toMember(m *discordgo.Member) moderation.Member {
	if m == nil || m.User == nil {
		return moderation.Member{}
	}
	return moderation.Member{
		ID:          m.User.ID,
		Username:    m.User.Username,
		DisplayName: m.DisplayName(),
		AvatarURL:   m.AvatarURL(""),
	}
}

func toDiscordEmbed(e moderation.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.AuthorName != "" {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.AuthorName, IconURL: e.AuthorIconURL}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}
