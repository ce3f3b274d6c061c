package bot

import (
	"context"

	"wardenbot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type command struct {
	name       string
	aliases    []string
	usage      string
	permission int64
	handler    func(ctx context.Context, cc *commandContext)
}

// commandContext carries one parsed invocation through a handler.
type commandContext struct {
	message  *discordgo.MessageCreate
	guild    *discordgo.Guild
	issuer   *discordgo.Member
	args     []string
	lang     string
	settings storage.ModerationSettings
}

func buildCommandTable(b *Bot) map[string]*command {
	commands := []*command{
		{
			name:       "mute",
			aliases:    []string{"mutar", "silenciar"},
			usage:      "@user [reason] [time]",
			permission: discordgo.PermissionKickMembers,
			handler:    b.cmdMute,
		},
		{
			name:       "unmute",
			aliases:    []string{"desmutar", "desilenciar"},
			usage:      "@user [reason]",
			permission: discordgo.PermissionKickMembers,
			handler:    b.cmdUnmute,
		},
		{
			name:    "quickpunishment",
			handler: b.cmdQuickPunishment,
		},
		{
			name:       "modinfo",
			permission: discordgo.PermissionKickMembers,
			handler:    b.cmdModInfo,
		},
	}

	table := make(map[string]*command)
	for _, cmd := range commands {
		table[cmd.name] = cmd
		for _, alias := range cmd.aliases {
			table[alias] = cmd
		}
	}
	return table
}
