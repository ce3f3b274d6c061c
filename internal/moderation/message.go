package moderation

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"wardenbot/internal/locale"
)

const localePrefix = "commands.moderation"

// RenderTemplate substitutes {TOKEN} placeholders in a punish-log template.
// Unknown tokens are left untouched.
func RenderTemplate(template string, tokens map[string]string) string {
	for name, value := range tokens {
		template = strings.ReplaceAll(template, "{"+name+"}", value)
	}
	return template
}

func StaffTokens(staff *discordgo.User) map[string]string {
	return map[string]string{
		"STAFF_NAME_SHORT":    staff.Username,
		"STAFF_NAME":          staff.Username,
		"STAFF_MENTION":       staff.Mention(),
		"STAFF_DISCRIMINATOR": staff.Discriminator,
		"STAFF_AVATAR_URL":    staff.AvatarURL(""),
		"STAFF_ID":            staff.ID,
		"STAFF_TAG":           userTag(staff),
	}
}

func PunishmentTokens(locales *locale.Locales, lang, reason, punishmentType string) map[string]string {
	action := locales.Get(lang, localePrefix+"."+punishmentType+".punishAction")
	return map[string]string{
		"PUNISHMENT_REASON":       reason,
		"PUNISHMENT_REASON_SHORT": reason,
		"PUNISHMENT_TYPE":         action,
		"PUNISHMENT_TYPE_SHORT":   action,
	}
}

func TargetTokens(user *discordgo.User, guild *discordgo.Guild) map[string]string {
	return map[string]string{
		"USER_MENTION": user.Mention(),
		"USER_NAME":    user.Username,
		"USER_TAG":     userTag(user),
		"USER_ID":      user.ID,
		"GUILD_NAME":   guild.Name,
	}
}

// AuditLogReason builds the localized reason shown in the platform's own
// audit log, truncated to its 512 character limit.
func AuditLogReason(locales *locale.Locales, lang string, staff *discordgo.User, reason string) string {
	message := locales.Get(lang, localePrefix+".punishedLog", userTag(staff), reason)
	if len(message) > 512 {
		message = message[:512]
	}
	return message
}

func userTag(user *discordgo.User) string {
	if user.Discriminator == "" || user.Discriminator == "0" {
		return user.Username
	}
	return user.Username + "#" + user.Discriminator
}
