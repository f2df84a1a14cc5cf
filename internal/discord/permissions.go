package discord

import "github.com/bwmarrin/discordgo"

// guildPermissions computes a member's guild-wide permission bits: the
// @everyone role plus every role the member holds. The owner has them all.
func guildPermissions(g *discordgo.Guild, m *discordgo.Member) int64 {
	if g == nil || m == nil || m.User == nil {
		return 0
	}
	if m.User.ID == g.OwnerID {
		return discordgo.PermissionAll
	}

	var perms int64
	for _, role := range g.Roles {
		if role.ID == g.ID {
			perms |= role.Permissions
			break
		}
	}
	for _, role := range g.Roles {
		for _, id := range m.Roles {
			if role.ID == id {
				perms |= role.Permissions
				break
			}
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}

func hasPermission(perms, want int64) bool {
	return perms&want == want
}

// highestRolePosition returns the position of the member's top role, 0
// (the @everyone position) when the member has none.
func highestRolePosition(g *discordgo.Guild, m *discordgo.Member) int {
	top := 0
	for _, role := range g.Roles {
		for _, id := range m.Roles {
			if role.ID == id && role.Position > top {
				top = role.Position
			}
		}
	}
	return top
}

// outranks reports whether actor may act on target: the owner outranks
// everyone, nobody outranks the owner, otherwise the actor's top role must
// sit strictly above the target's.
func outranks(g *discordgo.Guild, actor, target *discordgo.Member) bool {
	if g == nil || actor == nil || target == nil || actor.User == nil || target.User == nil {
		return false
	}
	switch {
	case actor.User.ID == target.User.ID:
		return false
	case actor.User.ID == g.OwnerID:
		return true
	case target.User.ID == g.OwnerID:
		return false
	}
	return highestRolePosition(g, actor) > highestRolePosition(g, target)
}
