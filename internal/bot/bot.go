package bot

import (
	"context"
	"strings"
	"time"

	"wardenbot/internal/config"
	"wardenbot/internal/locale"
	"wardenbot/internal/moderation"
	"wardenbot/internal/modules/audit"
	"wardenbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *storage.Store
	locales  *locale.Locales
	registry *moderation.Registry
	confirms *moderation.Confirmations
	executor *moderation.Executor
	audit    *audit.Logger
	session  *discordgo.Session
	commands map[string]*command
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, locales *locale.Locales, registry *moderation.Registry, auditLogger *audit.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		locales:  locales,
		registry: registry,
		audit:    auditLogger,
		session:  session,
	}

	b.confirms = moderation.NewConfirmations(cfg.Confirmation.ConfirmEmoji, cfg.Confirmation.SilentEmoji)
	b.executor = moderation.NewExecutor(store, registry, locales, auditLogger, logger, session, cfg.MutedRoleName, cfg.EmbedColors.Punishment)
	b.commands = buildCommandTable(b)

	auditLogger.SetNotifier(func(ctx context.Context, entry storage.AuditLog) {
		channelID, content, ok := b.expiredMuteNotice(ctx, entry)
		if !ok {
			return
		}
		if _, err := session.ChannelMessageSend(channelID, content); err != nil {
			logger.Warn("audit notification failed", zap.String("guild_id", entry.GuildID), zap.Error(err))
		}
	})

	return b, nil
}

// expiredMuteNotice builds the punish-log line for automatic mute
// expirations. Timed removals have no staff context, so they bypass the
// template path used by explicit punishments.
func (b *Bot) expiredMuteNotice(ctx context.Context, entry storage.AuditLog) (string, string, bool) {
	if entry.Action != "mute_expired" {
		return "", "", false
	}
	settings := b.moderationSettings(ctx, entry.GuildID)
	if !settings.SendPunishmentToPunishLog || settings.PunishLogChannelID == "" {
		return "", "", false
	}
	lang := settings.Language
	if lang == "" {
		lang = b.cfg.DefaultLanguage
	}
	content := "\U0001F508 **|** " + b.locales.Get(lang, localePrefix+".mute.expiredLog", "<@"+entry.TargetID+">")
	return settings.PunishLogChannelID, content, true
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageReactionAdd)

	if err := b.session.Open(); err != nil {
		return err
	}

	b.resumeTemporaryMutes()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

// resumeTemporaryMutes re-arms removal timers for every persisted temporary
// mute, so restarts do not leave muted roles stuck forever.
func (b *Bot) resumeTemporaryMutes() {
	ctx := context.Background()
	records, err := b.store.ListTemporaryMutes(ctx)
	if err != nil {
		b.logger.Warn("temporary mute listing failed", zap.Error(err))
		return
	}

	for _, record := range records {
		if record.ExpiresAt == nil {
			continue
		}
		guild := b.guildForID(record.GuildID)
		if guild == nil {
			continue
		}
		role := mutedRoleIn(guild, b.cfg.MutedRoleName)
		if role == nil {
			continue
		}
		b.executor.ScheduleRemoval(record.GuildID, record.UserID, role.ID, time.Until(*record.ExpiresAt))
	}
	if len(records) > 0 {
		b.logger.Info("temporary mutes resumed", zap.Int("count", len(records)))
	}
}

func (b *Bot) guildForID(guildID string) *discordgo.Guild {
	guild, err := b.session.State.Guild(guildID)
	if err == nil && guild != nil {
		return guild
	}
	guild, _ = b.session.Guild(guildID)
	return guild
}

func (b *Bot) memberForUser(guildID, userID string) *discordgo.Member {
	member, err := b.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(guildID, userID)
	return member
}

func (b *Bot) moderationSettings(ctx context.Context, guildID string) storage.ModerationSettings {
	defaults := storage.ModerationSettings{
		GuildID:  guildID,
		Language: b.cfg.DefaultLanguage,
	}

	settings, err := b.store.GetModerationSettings(ctx, guildID, defaults)
	if err != nil {
		b.logger.Warn("moderation settings fallback", zap.Error(err))
		return defaults
	}
	return settings
}

func mutedRoleIn(guild *discordgo.Guild, name string) *discordgo.Role {
	for _, role := range guild.Roles {
		if role != nil && strings.EqualFold(role.Name, name) {
			return role
		}
	}
	return nil
}
