package audit

import (
	"context"
	"time"

	"wardenbot/internal/storage"

	"go.uber.org/zap"
)

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
	LevelCrit = "CRIT"
)

// Logger records moderation actions durably and through zap, with an optional
// notifier for forwarding entries elsewhere (e.g. a log channel).
type Logger struct {
	store  *storage.Store
	logger *zap.Logger
	notify func(context.Context, storage.AuditLog)
}

func NewLogger(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

func (l *Logger) SetNotifier(notify func(context.Context, storage.AuditLog)) {
	l.notify = notify
}

func (l *Logger) Log(ctx context.Context, level, guildID, moderatorID, targetID, action, reason string) {
	entry := storage.AuditLog{
		GuildID:     guildID,
		ModeratorID: moderatorID,
		TargetID:    targetID,
		Level:       level,
		Action:      action,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
	if l.store != nil {
		_ = l.store.AddAuditLog(ctx, entry)
	}
	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("audit",
		zap.String("level", level),
		zap.String("guild_id", guildID),
		zap.String("moderator_id", moderatorID),
		zap.String("target_id", targetID),
		zap.String("action", action),
		zap.String("reason", reason))
}
