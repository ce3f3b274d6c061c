package moderation

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func member(id, username, discriminator, nick string) *discordgo.Member {
	return &discordgo.Member{
		Nick: nick,
		User: &discordgo.User{ID: id, Username: username, Discriminator: discriminator},
	}
}

func TestResolveTargetsMention(t *testing.T) {
	target := &discordgo.User{ID: "100", Username: "alice"}
	matches, err := ResolveTargets(
		[]string{"<@100>", "being", "rude"},
		[]*discordgo.User{target},
		nil,
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(matches.Users) != 1 || matches.Users[0].ID != "100" {
		t.Fatalf("unexpected users: %+v", matches.Users)
	}
	if matches.Reason != "being rude" {
		t.Fatalf("unexpected reason %q", matches.Reason)
	}
}

func TestResolveTargetsRawID(t *testing.T) {
	members := []*discordgo.Member{member("200", "bob", "0001", "")}
	matches, err := ResolveTargets([]string{"200", "spam"}, nil, members)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(matches.Users) != 1 || matches.Users[0].ID != "200" {
		t.Fatalf("unexpected users: %+v", matches.Users)
	}
	if matches.Reason != "spam" {
		t.Fatalf("unexpected reason %q", matches.Reason)
	}
}

func TestResolveTargetsMultiple(t *testing.T) {
	a := &discordgo.User{ID: "1", Username: "a"}
	b := &discordgo.User{ID: "2", Username: "b"}
	matches, err := ResolveTargets(
		[]string{"<@1>", "<@!2>", "raid"},
		[]*discordgo.User{a, b},
		nil,
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(matches.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(matches.Users))
	}
	if matches.Reason != "raid" {
		t.Fatalf("unexpected reason %q", matches.Reason)
	}
}

func TestResolveTargetsNameMatchingOnlyForFirst(t *testing.T) {
	members := []*discordgo.Member{
		member("1", "alice", "0001", ""),
		member("2", "spam", "0002", ""),
	}

	// "spam" after a resolved target must stay part of the reason even though
	// a member carries that username.
	matches, err := ResolveTargets([]string{"alice", "spam"}, nil, members)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(matches.Users) != 1 || matches.Users[0].ID != "1" {
		t.Fatalf("unexpected users: %+v", matches.Users)
	}
	if matches.Reason != "spam" {
		t.Fatalf("unexpected reason %q", matches.Reason)
	}
}

func TestResolveTargetsByTagAndNick(t *testing.T) {
	members := []*discordgo.Member{member("1", "alice", "1234", "mod killer")}

	matches, err := ResolveTargets([]string{"alice#1234"}, nil, members)
	if err != nil || len(matches.Users) != 1 {
		t.Fatalf("tag match failed: %v %+v", err, matches.Users)
	}

	matches, err = ResolveTargets([]string{"ALICE"}, nil, members)
	if err != nil || len(matches.Users) != 1 {
		t.Fatalf("case-insensitive username match failed: %v", err)
	}
}

func TestResolveTargetsNoMatch(t *testing.T) {
	_, err := ResolveTargets([]string{"`nobody`"}, nil, nil)
	var noTarget *NoValidTargetError
	if !errors.As(err, &noTarget) {
		t.Fatalf("expected NoValidTargetError, got %v", err)
	}
	if strings.Contains(noTarget.Token, "`") {
		t.Fatalf("token should have code marks stripped: %q", noTarget.Token)
	}
	if noTarget.Token != "nobody" {
		t.Fatalf("unexpected token %q", noTarget.Token)
	}
}

func TestResolveTargetsUnknownMention(t *testing.T) {
	_, err := ResolveTargets([]string{"<@999>"}, nil, nil)
	var noTarget *NoValidTargetError
	if !errors.As(err, &noTarget) {
		t.Fatalf("expected NoValidTargetError, got %v", err)
	}
}
