package storage

import (
	"context"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestModerationSettingsDefaults(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	defaults := ModerationSettings{GuildID: "g1", Language: "en-us"}
	settings, err := store.GetModerationSettings(ctx, "g1", defaults)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.Language != "en-us" || settings.SendPunishmentViaDm {
		t.Fatalf("expected defaults back, got %+v", settings)
	}
}

func TestUpsertModerationSettings(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	settings := ModerationSettings{
		GuildID:                   "g1",
		Language:                  "pt-br",
		SendPunishmentViaDm:       true,
		SendPunishmentToPunishLog: true,
		PunishLogChannelID:        "c1",
		PunishLogMessage:          "{STAFF_NAME} punished {USER_NAME}",
	}
	if err := store.UpsertModerationSettings(ctx, settings); err != nil {
		t.Fatalf("upsert settings: %v", err)
	}

	settings.PunishLogChannelID = "c2"
	if err := store.UpsertModerationSettings(ctx, settings); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetModerationSettings(ctx, "g1", ModerationSettings{GuildID: "g1"})
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.Language != "pt-br" || !got.SendPunishmentViaDm || got.PunishLogChannelID != "c2" {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestWarnActions(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, action := range []WarnAction{
		{GuildID: "g1", Count: 3, Action: "mute"},
		{GuildID: "g1", Count: 1, Action: "warn"},
		{GuildID: "g2", Count: 5, Action: "ban"},
	} {
		if err := store.UpsertWarnAction(ctx, action); err != nil {
			t.Fatalf("upsert warn action: %v", err)
		}
	}

	actions, err := store.ListWarnActions(ctx, "g1")
	if err != nil {
		t.Fatalf("list warn actions: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Count != 1 || actions[1].Count != 3 {
		t.Fatalf("actions should be ordered by count: %+v", actions)
	}
}

func TestPunishmentMessageFallback(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	got, err := store.GetPunishmentMessage(ctx, "g1", "mute", "fallback template")
	if err != nil {
		t.Fatalf("get punishment message: %v", err)
	}
	if got != "fallback template" {
		t.Fatalf("expected fallback, got %q", got)
	}

	if err := store.SetPunishmentMessage(ctx, "g1", "mute", "mute template"); err != nil {
		t.Fatalf("set punishment message: %v", err)
	}
	got, err = store.GetPunishmentMessage(ctx, "g1", "mute", "fallback template")
	if err != nil {
		t.Fatalf("get punishment message: %v", err)
	}
	if got != "mute template" {
		t.Fatalf("expected per-action template, got %q", got)
	}

	// Other actions still fall back.
	got, err = store.GetPunishmentMessage(ctx, "g1", "unmute", "fallback template")
	if err != nil || got != "fallback template" {
		t.Fatalf("expected fallback for other action, got %q %v", got, err)
	}
}

func TestQuickPunishment(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	quick, err := store.GetQuickPunishment(ctx, "u1")
	if err != nil {
		t.Fatalf("get quick punishment: %v", err)
	}
	if quick {
		t.Fatalf("default should be false")
	}

	if err := store.SetQuickPunishment(ctx, "u1", true); err != nil {
		t.Fatalf("set quick punishment: %v", err)
	}
	quick, err = store.GetQuickPunishment(ctx, "u1")
	if err != nil || !quick {
		t.Fatalf("expected true, got %v %v", quick, err)
	}

	if err := store.SetQuickPunishment(ctx, "u1", false); err != nil {
		t.Fatalf("unset quick punishment: %v", err)
	}
	quick, _ = store.GetQuickPunishment(ctx, "u1")
	if quick {
		t.Fatalf("expected false after unset")
	}
}
