package middleware

import (
	"context"
	"fmt"
	"strings"

	"server-warden/internal/command"
	"server-warden/internal/moderation"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:     "Kick Members",
	discordgo.PermissionBanMembers:      "Ban Members",
	discordgo.PermissionAdministrator:   "Administrator",
	discordgo.PermissionManageChannels:  "Manage Channels",
	discordgo.PermissionManageGuild:     "Manage Server",
	discordgo.PermissionViewAuditLogs:   "View Audit Logs",
	discordgo.PermissionManageMessages:  "Manage Messages",
	discordgo.PermissionManageRoles:     "Manage Roles",
	discordgo.PermissionModerateMembers: "Moderate Members",
}

// PermissionName returns a readable permission name, or its hex bit.
func PermissionName(p int64) string {
	if name, ok := PermissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", p)
}

// WithUserPermissionCheck requires at least one of the command's
// UserPermissions. Administrators and the developer always pass.
func WithUserPermissionCheck() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.MessageContext)
			if !ok || v.Developer || v.Permissions&discordgo.PermissionAdministrator != 0 {
				return c.Run(ctx, inv)
			}

			meta, ok := cmd.Root(c).(command.DiscordMeta)
			if !ok || len(meta.UserPermissions()) == 0 {
				return c.Run(ctx, inv)
			}

			required := meta.UserPermissions()
			if lo.SomeBy(required, func(p int64) bool { return v.Permissions&p != 0 }) {
				return c.Run(ctx, inv)
			}

			msg := fmt.Sprintf(
				"You need at least one of the following permissions to run this command:\n`%s`",
				strings.Join(lo.Map(required, func(p int64, _ int) string { return PermissionName(p) }), "`, `"),
			)
			// Best-effort: a closed DM just drops the notice.
			_ = v.DirectMessage(ctx, moderation.Message{Content: msg})
			return nil
		})
	}
}
