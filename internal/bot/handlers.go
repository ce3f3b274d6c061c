package bot

import (
	"context"
	"errors"
	"strings"

	"wardenbot/internal/moderation"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const localePrefix = "commands.moderation"

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}
	if !strings.HasPrefix(msg.Content, b.cfg.CommandPrefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(msg.Content, b.cfg.CommandPrefix))
	if len(fields) == 0 {
		return
	}
	cmd := b.commands[strings.ToLower(fields[0])]
	if cmd == nil {
		return
	}

	ctx := context.Background()
	guild := b.guildForID(msg.GuildID)
	if guild == nil {
		b.logger.Warn("guild lookup failed", zap.String("guild_id", msg.GuildID))
		return
	}
	issuer := msg.Member
	if issuer == nil {
		issuer = b.memberForUser(msg.GuildID, msg.Author.ID)
	}
	if issuer == nil {
		return
	}
	issuer = issuerWithUser(issuer, msg.Author)

	if cmd.permission != 0 && !moderation.HasPermission(guild, issuer, cmd.permission) {
		return
	}

	settings := b.moderationSettings(ctx, msg.GuildID)
	lang := settings.Language
	if lang == "" {
		lang = b.cfg.DefaultLanguage
	}

	cmd.handler(ctx, &commandContext{
		message:  msg,
		guild:    guild,
		issuer:   issuer,
		args:     fields[1:],
		lang:     lang,
		settings: settings,
	})
}

func (b *Bot) onMessageReactionAdd(session *discordgo.Session, event *discordgo.MessageReactionAdd) {
	if session.State.User != nil && event.UserID == session.State.User.ID {
		return
	}
	message := &discordgo.Message{ID: event.MessageID, ChannelID: event.ChannelID}
	b.confirms.Resolve(event.MessageID, event.UserID, event.Emoji.Name, message)
}

func (b *Bot) cmdUnmute(ctx context.Context, cc *commandContext) {
	if len(cc.args) == 0 {
		b.reply(cc, "❓", "`"+b.cfg.CommandPrefix+"unmute @user`")
		return
	}

	matches, users, ok := b.resolveAndGate(cc)
	if !ok {
		return
	}

	opts, ok := b.parseOptions(ctx, cc, matches.Reason)
	if !ok {
		return
	}

	anyMuted := false
	for _, user := range users {
		record, err := b.store.GetMute(ctx, cc.guild.ID, user.ID)
		if err != nil {
			b.logger.Warn("mute lookup failed", zap.Error(err))
		}
		if record != nil {
			anyMuted = true
			break
		}
	}
	if !anyMuted {
		b.replyError(cc, b.locales.Get(cc.lang, localePrefix+".unmute.notMuted"))
		return
	}

	callback := func(message *discordgo.Message, silent bool) {
		for _, user := range users {
			if err := b.executor.Unmute(ctx, cc.guild, cc.settings, cc.message.Author, user, opts.Reason, silent); err != nil {
				b.logger.Warn("unmute failed", zap.String("guild_id", cc.guild.ID), zap.String("user_id", user.ID), zap.Error(err))
			}
		}
		if message != nil {
			_ = b.session.ChannelMessageDelete(message.ChannelID, message.ID)
		}
		b.replySuccess(cc, b.locales.Get(cc.lang, localePrefix+".unmute.successfullyUnmuted"), opts.Reason)
	}

	b.runWithConfirmation(cc, "unmute", users, opts, callback)
}

func (b *Bot) cmdMute(ctx context.Context, cc *commandContext) {
	if len(cc.args) == 0 {
		b.reply(cc, "❓", "`"+b.cfg.CommandPrefix+"mute @user [reason] [time]`")
		return
	}

	matches, users, ok := b.resolveAndGate(cc)
	if !ok {
		return
	}

	opts, ok := b.parseOptions(ctx, cc, matches.Reason)
	if !ok {
		return
	}
	reason, duration := moderation.ExtractDuration(opts.Reason)
	opts.Reason = reason

	callback := func(message *discordgo.Message, silent bool) {
		for _, user := range users {
			err := b.executor.Mute(ctx, cc.guild, cc.settings, cc.message.Author, user, opts.Reason, silent, duration)
			if errors.Is(err, moderation.ErrMutedRoleMissing) {
				b.replyError(cc, b.locales.Get(cc.lang, localePrefix+".mutedRoleMissing", "`"+b.cfg.MutedRoleName+"`"))
				return
			}
			if err != nil {
				b.logger.Warn("mute failed", zap.String("guild_id", cc.guild.ID), zap.String("user_id", user.ID), zap.Error(err))
			}
		}
		if message != nil {
			_ = b.session.ChannelMessageDelete(message.ChannelID, message.ID)
		}
		b.replySuccess(cc, b.locales.Get(cc.lang, localePrefix+".mute.successfullyMuted"), opts.Reason)
	}

	b.runWithConfirmation(cc, "mute", users, opts, callback)
}

func (b *Bot) cmdQuickPunishment(ctx context.Context, cc *commandContext) {
	current, err := b.store.GetQuickPunishment(ctx, cc.message.Author.ID)
	if err != nil {
		b.logger.Warn("quick punishment lookup failed", zap.Error(err))
		return
	}
	if err := b.store.SetQuickPunishment(ctx, cc.message.Author.ID, !current); err != nil {
		b.logger.Warn("quick punishment update failed", zap.Error(err))
		return
	}

	key := localePrefix + ".quickPunishmentEnabled"
	if current {
		key = localePrefix + ".quickPunishmentDisabled"
	}
	b.reply(cc, "\U0001F389", b.locales.Get(cc.lang, key))
}

func (b *Bot) cmdModInfo(ctx context.Context, cc *commandContext) {
	actions, err := b.store.ListWarnActions(ctx, cc.guild.ID)
	if err != nil {
		b.logger.Warn("warn action listing failed", zap.Error(err))
	}

	logChannel := b.locales.Get(cc.lang, localePrefix+".info.notSet")
	if cc.settings.PunishLogChannelID != "" {
		logChannel = "<#" + cc.settings.PunishLogChannelID + ">"
	}

	warnLines := make([]string, 0, len(actions))
	for _, action := range actions {
		warnLines = append(warnLines, b.locales.Get(cc.lang, localePrefix+".info.warnActionLine", action.Count, action.Action))
	}
	warnValue := strings.Join(warnLines, "\n")
	if warnValue == "" {
		warnValue = b.locales.Get(cc.lang, localePrefix+".info.noWarnActions")
	}

	embed := &discordgo.MessageEmbed{
		Title: b.locales.Get(cc.lang, localePrefix+".info.title"),
		Color: b.cfg.EmbedColors.Success,
		Fields: []*discordgo.MessageEmbedField{
			{Name: b.locales.Get(cc.lang, localePrefix+".info.dmPunishments"), Value: yesNo(cc.settings.SendPunishmentViaDm), Inline: true},
			{Name: b.locales.Get(cc.lang, localePrefix+".info.logPunishments"), Value: yesNo(cc.settings.SendPunishmentToPunishLog), Inline: true},
			{Name: b.locales.Get(cc.lang, localePrefix+".info.logChannel"), Value: logChannel, Inline: true},
			{Name: b.locales.Get(cc.lang, localePrefix+".info.warnActions"), Value: warnValue, Inline: false},
		},
	}
	_, _ = b.session.ChannelMessageSendEmbed(cc.message.ChannelID, embed)
}

// resolveAndGate resolves command targets and runs the hierarchy gate against
// every target that is still a guild member. Failures reply and abort.
func (b *Bot) resolveAndGate(cc *commandContext) (moderation.TargetMatches, []*discordgo.User, bool) {
	matches, err := moderation.ResolveTargets(cc.args, cc.message.Mentions, cc.guild.Members)
	if err != nil {
		var noTarget *moderation.NoValidTargetError
		if errors.As(err, &noTarget) {
			b.replyError(cc, b.locales.Get(cc.lang, "commands.userDoesNotExist", "`"+noTarget.Token+"`"))
		}
		return moderation.TargetMatches{}, nil, false
	}

	self := b.memberForUser(cc.guild.ID, b.session.State.User.ID)
	for _, user := range matches.Users {
		target := b.memberForUser(cc.guild.ID, user.ID)
		if target == nil {
			continue
		}
		check := moderation.CheckHierarchy(cc.guild, self, cc.issuer, target)
		if !check.BotOutranks {
			b.replyHierarchyFailure(cc, localePrefix+".roleTooLow", localePrefix+".roleTooLowHowToFix")
			return moderation.TargetMatches{}, nil, false
		}
		if !check.IssuerOutranks {
			b.replyHierarchyFailure(cc, localePrefix+".punisherRoleTooLow", localePrefix+".punisherRoleTooLowHowToFix")
			return moderation.TargetMatches{}, nil, false
		}
	}

	return matches, matches.Users, true
}

func (b *Bot) parseOptions(ctx context.Context, cc *commandContext, rawReason string) (moderation.Options, bool) {
	quick, err := b.store.GetQuickPunishment(ctx, cc.message.Author.ID)
	if err != nil {
		b.logger.Warn("quick punishment lookup failed", zap.Error(err))
	}

	opts, err := moderation.ParseOptions(rawReason, quick, firstImageURL(cc.message.Message))
	if errors.Is(err, moderation.ErrDayRangeTooHigh) {
		b.replyError(cc, b.locales.Get(cc.lang, localePrefix+".cantDeleteMessagesMoreThan7Days"))
		return moderation.Options{}, false
	}
	if errors.Is(err, moderation.ErrDayRangeTooLow) {
		b.replyError(cc, b.locales.Get(cc.lang, localePrefix+".cantDeleteMessagesLessThan0Days"))
		return moderation.Options{}, false
	}
	return opts, true
}

// runWithConfirmation either completes immediately (quick punishment, force
// flag) or sends the confirmation message and parks the callback until the
// issuer reacts.
func (b *Bot) runWithConfirmation(cc *commandContext, punishmentType string, users []*discordgo.User, opts moderation.Options, callback moderation.ConfirmCallback) {
	if opts.SkipConfirmation {
		callback(nil, opts.Silent)
		return
	}

	hasSilent := cc.settings.SendPunishmentViaDm || cc.settings.SendPunishmentToPunishLog
	content := b.buildConfirmationContent(cc, punishmentType, users, hasSilent)

	message, err := b.session.ChannelMessageSend(cc.message.ChannelID, content)
	if err != nil || message == nil {
		b.logger.Warn("confirmation message failed", zap.Error(err))
		return
	}

	_ = b.session.MessageReactionAdd(message.ChannelID, message.ID, b.cfg.Confirmation.ConfirmEmoji)
	if hasSilent {
		_ = b.session.MessageReactionAdd(message.ChannelID, message.ID, b.cfg.Confirmation.SilentEmoji)
	}

	b.confirms.Await(message.ID, cc.guild.ID, message.ChannelID, cc.message.Author.ID, callback)
}

func (b *Bot) buildConfirmationContent(cc *commandContext, punishmentType string, users []*discordgo.User, hasSilent bool) string {
	mentions := make([]string, 0, len(users))
	tags := make([]string, 0, len(users))
	ids := make([]string, 0, len(users))
	for _, user := range users {
		mentions = append(mentions, user.Mention())
		tags = append(tags, userTag(user))
		ids = append(ids, user.ID)
	}

	punishName := b.locales.Get(cc.lang, localePrefix+"."+punishmentType+".punishName")
	lines := []string{
		"⚠ **|** " + cc.message.Author.Mention() + " " + b.locales.Get(cc.lang, localePrefix+".readyToPunish",
			strings.ToLower(punishName),
			strings.Join(mentions, ", "),
			strings.Join(tags, ", "),
			strings.Join(ids, ", ")),
	}

	if hasSilent {
		lines = append(lines, "\U0001F440 **|** "+b.locales.Get(cc.lang, localePrefix+".silentTip"))
	}

	quick, _ := b.store.GetQuickPunishment(context.Background(), cc.message.Author.ID)
	if !quick {
		lines = append(lines, b.locales.Get(cc.lang, localePrefix+".skipConfirmationTip", "`"+b.cfg.CommandPrefix+"quickpunishment`"))
	}

	return strings.Join(lines, "\n")
}

func (b *Bot) replySuccess(cc *commandContext, message, reason string) {
	lines := []string{"\U0001F389 **|** " + cc.message.Author.Mention() + " " + message}

	lowered := strings.ToLower(reason)
	explanation := ""
	switch {
	case strings.Contains(lowered, "raid"):
		explanation = b.locales.Get(cc.lang, localePrefix+".reports.raidReport")
	case strings.Contains(lowered, "porn"), strings.Contains(lowered, "nsfw"):
		explanation = b.locales.Get(cc.lang, localePrefix+".reports.nsfwReport")
	}
	if explanation != "" {
		url := "<" + b.locales.Get(cc.lang, localePrefix+".reports.pleaseReportUrl") + ">"
		lines = append(lines, b.locales.Get(cc.lang, localePrefix+".reports.pleaseReportToDiscord", explanation, url))
	}

	_, _ = b.session.ChannelMessageSend(cc.message.ChannelID, strings.Join(lines, "\n"))
}

func (b *Bot) replyHierarchyFailure(cc *commandContext, key, howToFixKey string) {
	reply := b.locales.Get(cc.lang, key)
	if moderation.HasPermission(cc.guild, cc.issuer, discordgo.PermissionManageRoles) {
		reply += " " + b.locales.Get(cc.lang, howToFixKey)
	}
	b.replyError(cc, reply)
}

func (b *Bot) replyError(cc *commandContext, content string) {
	b.reply(cc, "❌", content)
}

func (b *Bot) reply(cc *commandContext, emoji, content string) {
	_, _ = b.session.ChannelMessageSend(cc.message.ChannelID, emoji+" **|** "+cc.message.Author.Mention()+" "+content)
}

// issuerWithUser guarantees member.User is set. The member may point into the
// session state cache, so patching happens on a copy.
func issuerWithUser(member *discordgo.Member, author *discordgo.User) *discordgo.Member {
	if member.User != nil {
		return member
	}
	patched := *member
	patched.User = author
	return &patched
}

func firstImageURL(msg *discordgo.Message) string {
	for _, attachment := range msg.Attachments {
		if attachment != nil && attachment.Width > 0 {
			return attachment.URL
		}
	}
	return ""
}

func userTag(user *discordgo.User) string {
	if user.Discriminator == "" || user.Discriminator == "0" {
		return user.Username
	}
	return user.Username + "#" + user.Discriminator
}

func yesNo(value bool) string {
	if value {
		return "✅"
	}
	return "❌"
}
