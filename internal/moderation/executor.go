package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"wardenbot/internal/locale"
	"wardenbot/internal/modules/audit"
	"wardenbot/internal/storage"
)

// ErrMutedRoleMissing is returned by Mute when the guild has no role with the
// configured muted role name.
var ErrMutedRoleMissing = errors.New("muted role not found")

// Session is the slice of the chat platform client the executor needs.
// *discordgo.Session satisfies it.
type Session interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Executor runs punishment actions against the store, the pending-removal
// registry and the platform, in the order the consistency model requires.
type Executor struct {
	store           *storage.Store
	registry        *Registry
	locales         *locale.Locales
	audit           *audit.Logger
	logger          *zap.Logger
	session         Session
	mutedRoleName   string
	punishmentColor int
}

func NewExecutor(store *storage.Store, registry *Registry, locales *locale.Locales, auditLogger *audit.Logger, logger *zap.Logger, session Session, mutedRoleName string, punishmentColor int) *Executor {
	return &Executor{
		store:           store,
		registry:        registry,
		locales:         locales,
		audit:           auditLogger,
		logger:          logger,
		session:         session,
		mutedRoleName:   mutedRoleName,
		punishmentColor: punishmentColor,
	}
}

// Unmute lifts a mute. Ordering matters: the pending removal timer is
// cancelled before the record is deleted, so a timer can never fire into the
// window where the record is already gone. The record delete is the only step
// whose failure aborts; notification and role removal are best effort.
func (e *Executor) Unmute(ctx context.Context, guild *discordgo.Guild, settings storage.ModerationSettings, staff, target *discordgo.User, reason string, silent bool) error {
	lang := settings.Language

	if !silent {
		duration := e.locales.Get(lang, localePrefix+".mute.forever")
		e.postPunishLog(ctx, guild, settings, staff, target, lang, reason, "unmute", duration)
	}

	e.registry.CancelAndRemove(RemovalKey(guild.ID, target.ID))

	if err := e.store.DeleteMute(ctx, guild.ID, target.ID); err != nil {
		return err
	}

	e.removeMutedRole(guild, target.ID, AuditLogReason(e.locales, lang, staff, reason))

	e.audit.Log(ctx, audit.LevelInfo, guild.ID, staff.ID, target.ID, "unmute", reason)
	return nil
}

// Mute applies the muted role, persists the record and, for temporary mutes,
// schedules the automatic removal. A zero duration means the mute holds until
// explicitly lifted.
func (e *Executor) Mute(ctx context.Context, guild *discordgo.Guild, settings storage.ModerationSettings, staff, target *discordgo.User, reason string, silent bool, duration time.Duration) error {
	role := e.findMutedRole(guild)
	if role == nil {
		return ErrMutedRoleMissing
	}
	lang := settings.Language

	record := storage.MuteRecord{
		GuildID:    guild.ID,
		UserID:     target.ID,
		PunishedBy: staff.ID,
		Reason:     reason,
		ReceivedAt: time.Now(),
	}
	if duration > 0 {
		expires := time.Now().Add(duration)
		record.ExpiresAt = &expires
	}
	if err := e.store.UpsertMute(ctx, record); err != nil {
		return err
	}

	auditReason := AuditLogReason(e.locales, lang, staff, reason)
	if err := e.session.GuildMemberRoleAdd(guild.ID, target.ID, role.ID, discordgo.WithAuditLogReason(auditReason)); err != nil {
		return err
	}

	if !silent {
		if settings.SendPunishmentViaDm {
			e.sendPunishmentDM(guild, staff, target, lang, reason, "mute")
		}
		e.postPunishLog(ctx, guild, settings, staff, target, lang, reason, "mute", durationText(e.locales, lang, duration))
	}

	if duration > 0 {
		e.ScheduleRemoval(guild.ID, target.ID, role.ID, duration)
	}

	e.audit.Log(ctx, audit.LevelInfo, guild.ID, staff.ID, target.ID, "mute", reason)
	return nil
}

// ScheduleRemoval arms the delayed role removal for a muted member. The fired
// action deletes the record first, so a removal racing a direct unmute reads
// "no record" and degrades to an idempotent role strip.
func (e *Executor) ScheduleRemoval(guildID, userID, roleID string, d time.Duration) {
	e.registry.Schedule(RemovalKey(guildID, userID), d, func() {
		ctx := context.Background()
		if err := e.store.DeleteMute(ctx, guildID, userID); err != nil {
			e.logger.Warn("expired mute delete failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
		}
		if err := e.session.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
			e.logger.Warn("expired mute role removal failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
		}
		e.audit.Log(ctx, audit.LevelInfo, guildID, "", userID, "mute_expired", "")
	})
}

func (e *Executor) findMutedRole(guild *discordgo.Guild) *discordgo.Role {
	for _, role := range guild.Roles {
		if strings.EqualFold(role.Name, e.mutedRoleName) {
			return role
		}
	}
	return nil
}

func (e *Executor) removeMutedRole(guild *discordgo.Guild, userID, auditReason string) {
	member, err := e.session.GuildMember(guild.ID, userID)
	if err != nil || member == nil {
		// Not a member anymore; nothing to strip.
		return
	}
	role := e.findMutedRole(guild)
	if role == nil {
		return
	}
	if err := e.session.GuildMemberRoleRemove(guild.ID, userID, role.ID, discordgo.WithAuditLogReason(auditReason)); err != nil {
		e.logger.Warn("muted role removal failed", zap.String("guild_id", guild.ID), zap.String("user_id", userID), zap.Error(err))
	}
}

// postPunishLog renders the guild's punish-log template and posts it. Every
// failure is swallowed: the punishment already happened and must not be
// rolled back over a notification.
func (e *Executor) postPunishLog(ctx context.Context, guild *discordgo.Guild, settings storage.ModerationSettings, staff, target *discordgo.User, lang, reason, punishmentType, duration string) {
	if !settings.SendPunishmentToPunishLog || settings.PunishLogChannelID == "" {
		return
	}

	template, err := e.store.GetPunishmentMessage(ctx, guild.ID, punishmentType, settings.PunishLogMessage)
	if err != nil {
		e.logger.Warn("punish log template lookup failed", zap.String("guild_id", guild.ID), zap.Error(err))
		return
	}
	if template == "" {
		return
	}

	if reason == "" {
		reason = e.locales.Get(lang, localePrefix+".noReasonGiven")
	}

	tokens := map[string]string{"duration": duration}
	for name, value := range StaffTokens(staff) {
		tokens[name] = value
	}
	for name, value := range PunishmentTokens(e.locales, lang, reason, punishmentType) {
		tokens[name] = value
	}
	for name, value := range TargetTokens(target, guild) {
		tokens[name] = value
	}

	if _, err := e.session.ChannelMessageSend(settings.PunishLogChannelID, RenderTemplate(template, tokens)); err != nil {
		e.logger.Warn("punish log delivery failed", zap.String("guild_id", guild.ID), zap.String("channel_id", settings.PunishLogChannelID), zap.Error(err))
	}
}

func (e *Executor) sendPunishmentDM(guild *discordgo.Guild, staff, target *discordgo.User, lang, reason, punishmentType string) {
	channel, err := e.session.UserChannelCreate(target.ID)
	if err != nil {
		return
	}
	if reason == "" {
		reason = e.locales.Get(lang, localePrefix+".noReasonGiven")
	}
	action := strings.ToLower(e.locales.Get(lang, localePrefix+"."+punishmentType+".punishAction"))
	embed := &discordgo.MessageEmbed{
		Title:     "\U0001F6AB " + e.locales.Get(lang, localePrefix+".youGotPunished", action, guild.Name) + "!",
		Color:     e.punishmentColor,
		Timestamp: time.Now().Format(time.RFC3339),
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("")},
		Author: &discordgo.MessageEmbedAuthor{
			Name:    userTag(staff),
			IconURL: staff.AvatarURL(""),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "\U0001F46E " + e.locales.Get(lang, localePrefix+".punishedBy"), Value: userTag(staff)},
			{Name: "\U0001F4DD " + e.locales.Get(lang, localePrefix+".punishmentReason"), Value: reason},
		},
	}
	_, _ = e.session.ChannelMessageSendEmbed(channel.ID, embed)
}

func durationText(locales *locale.Locales, lang string, d time.Duration) string {
	if d <= 0 {
		return locales.Get(lang, localePrefix+".mute.forever")
	}
	return d.String()
}
