package helpers

import (
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/bradfitz/slice"
	"github.com/bwmarrin/discordgo"
)

// MemberPermissions computes the guild level permissions of member from its
// roles, @everyone included. The owner and administrators get everything.
func MemberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil || member.User == nil {
		return 0
	}
	if member.User.ID == guild.OwnerID {
		return discordgo.PermissionAll
	}

	var perms int64
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			perms |= role.Permissions
			continue
		}
		for _, memberRole := range member.Roles {
			if memberRole == role.ID {
				perms |= role.Permissions
				break
			}
		}
	}

	if perms&models.PermissionAdministrator == models.PermissionAdministrator {
		return discordgo.PermissionAll
	}
	return perms
}

// MemberRoles returns the guild roles of member sorted by position, highest first
func MemberRoles(guild *discordgo.Guild, member *discordgo.Member) (roles []*discordgo.Role) {
	for _, role := range guild.Roles {
		for _, memberRole := range member.Roles {
			if memberRole == role.ID {
				roles = append(roles, role)
				break
			}
		}
	}
	slice.Sort(roles, func(i, j int) bool {
		return roles[i].Position > roles[j].Position
	})
	return roles
}

// HighestRolePosition is the position of member's top role, 0 for @everyone only
func HighestRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	roles := MemberRoles(guild, member)
	if len(roles) == 0 {
		return 0
	}
	return roles[0].Position
}

// CanModerate checks the role hierarchy: bot may act on target only if its
// top role is strictly above target's. Nobody may act on the owner.
func CanModerate(guild *discordgo.Guild, bot, target *discordgo.Member) bool {
	if guild == nil || bot == nil || target == nil || bot.User == nil || target.User == nil {
		return false
	}
	if target.User.ID == guild.OwnerID || target.User.ID == bot.User.ID {
		return false
	}
	if bot.User.ID == guild.OwnerID {
		return true
	}
	return HighestRolePosition(guild, bot) > HighestRolePosition(guild, target)
}
