package moderation

import "github.com/bwmarrin/discordgo"

// HierarchyCheck reports both halves of the permission gate independently so
// the caller can name which side is lacking.
type HierarchyCheck struct {
	BotOutranks    bool
	IssuerOutranks bool
}

func (c HierarchyCheck) Passed() bool {
	return c.BotOutranks && c.IssuerOutranks
}

// CheckHierarchy verifies that both the bot and the issuing moderator outrank
// the target. Both checks run regardless of the first result.
func CheckHierarchy(guild *discordgo.Guild, bot, issuer, target *discordgo.Member) HierarchyCheck {
	return HierarchyCheck{
		BotOutranks:    CanInteract(guild, bot, target),
		IssuerOutranks: CanInteract(guild, issuer, target),
	}
}

// CanInteract reports whether actor may act on target under the platform's
// role hierarchy: the owner beats everyone, otherwise the higher highest-role
// position wins and ties lose.
func CanInteract(guild *discordgo.Guild, actor, target *discordgo.Member) bool {
	if guild == nil || actor == nil || target == nil {
		return false
	}
	actorID := memberID(actor)
	targetID := memberID(target)
	if actorID != "" && guild.OwnerID == actorID {
		return true
	}
	if targetID != "" && guild.OwnerID == targetID {
		return false
	}
	return highestRolePosition(guild, actor) > highestRolePosition(guild, target)
}

// HasPermission reports whether the member holds perm through any of its
// roles or the @everyone role, or is an administrator.
func HasPermission(guild *discordgo.Guild, member *discordgo.Member, perm int64) bool {
	if guild == nil || member == nil {
		return false
	}
	if memberID(member) != "" && guild.OwnerID == memberID(member) {
		return true
	}

	perms := int64(0)
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
		if role.ID == guild.ID {
			perms |= role.Permissions
		}
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&perm != 0
}

func highestRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	highest := -1
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil && role.Position > highest {
			highest = role.Position
		}
	}
	return highest
}

func memberID(member *discordgo.Member) string {
	if member.User != nil {
		return member.User.ID
	}
	return ""
}
