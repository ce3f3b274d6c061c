package audit

import (
	"context"
	"testing"
	"time"

	"wardenbot/internal/storage"

	"go.uber.org/zap"
)

func TestLogPersistsAndNotifies(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	auditLogger := NewLogger(store, zap.NewNop())

	var notified []storage.AuditLog
	auditLogger.SetNotifier(func(ctx context.Context, entry storage.AuditLog) {
		notified = append(notified, entry)
	})

	ctx := context.Background()
	auditLogger.Log(ctx, LevelInfo, "g1", "staff", "target", "mute", "spam")

	logs, err := store.ListAuditLogs(ctx, "g1", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one entry, got %d", len(logs))
	}
	entry := logs[0]
	if entry.Action != "mute" || entry.ModeratorID != "staff" || entry.TargetID != "target" || entry.Level != LevelInfo {
		t.Fatalf("unexpected entry %+v", entry)
	}

	if len(notified) != 1 || notified[0].Action != "mute" {
		t.Fatalf("notifier not invoked: %+v", notified)
	}
}
