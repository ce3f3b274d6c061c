package moderation

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g1", Position: 0, Permissions: 0},
			{ID: "low", Position: 1, Permissions: 0},
			{ID: "mid", Position: 5, Permissions: discordgo.PermissionKickMembers},
			{ID: "high", Position: 10, Permissions: discordgo.PermissionAdministrator},
		},
	}
}

func memberWithRoles(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:  &discordgo.User{ID: id},
		Roles: roles,
	}
}

func TestCanInteractHierarchy(t *testing.T) {
	guild := testGuild()
	high := memberWithRoles("1", "high")
	low := memberWithRoles("2", "low")

	if !CanInteract(guild, high, low) {
		t.Fatalf("higher role should outrank lower")
	}
	if CanInteract(guild, low, high) {
		t.Fatalf("lower role should not outrank higher")
	}
}

func TestCanInteractTiesLose(t *testing.T) {
	guild := testGuild()
	a := memberWithRoles("1", "mid")
	b := memberWithRoles("2", "mid")

	if CanInteract(guild, a, b) {
		t.Fatalf("equal positions must not allow interaction")
	}
}

func TestCanInteractOwner(t *testing.T) {
	guild := testGuild()
	owner := memberWithRoles("owner")
	high := memberWithRoles("1", "high")

	if !CanInteract(guild, owner, high) {
		t.Fatalf("owner should outrank everyone")
	}
	if CanInteract(guild, high, owner) {
		t.Fatalf("nobody should outrank the owner")
	}
}

func TestCheckHierarchyReportsBothSides(t *testing.T) {
	guild := testGuild()
	bot := memberWithRoles("bot", "low")
	issuer := memberWithRoles("issuer", "high")
	target := memberWithRoles("target", "mid")

	check := CheckHierarchy(guild, bot, issuer, target)
	if check.BotOutranks {
		t.Fatalf("bot should not outrank target")
	}
	if !check.IssuerOutranks {
		t.Fatalf("issuer should outrank target")
	}
	if check.Passed() {
		t.Fatalf("gate must fail when either side fails")
	}
}

func TestHasPermission(t *testing.T) {
	guild := testGuild()

	if !HasPermission(guild, memberWithRoles("1", "mid"), discordgo.PermissionKickMembers) {
		t.Fatalf("role permission should grant")
	}
	if HasPermission(guild, memberWithRoles("2", "low"), discordgo.PermissionKickMembers) {
		t.Fatalf("missing permission should deny")
	}
	if !HasPermission(guild, memberWithRoles("3", "high"), discordgo.PermissionBanMembers) {
		t.Fatalf("administrator should bypass")
	}
	if !HasPermission(guild, memberWithRoles("owner"), discordgo.PermissionBanMembers) {
		t.Fatalf("owner should bypass")
	}
}

func TestHasPermissionEveryoneRole(t *testing.T) {
	guild := testGuild()
	guild.Roles[0].Permissions = discordgo.PermissionKickMembers

	if !HasPermission(guild, memberWithRoles("1"), discordgo.PermissionKickMembers) {
		t.Fatalf("@everyone permissions should apply to every member")
	}
}
