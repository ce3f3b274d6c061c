package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sqlx.DB
}

// ModerationSettings is the per-guild moderation configuration. A guild
// without a row gets the zero-value defaults; missing configuration is not
// an error.
type ModerationSettings struct {
	GuildID                   string `db:"guild_id"`
	Language                  string `db:"language"`
	SendPunishmentViaDm       bool   `db:"send_punishment_via_dm"`
	SendPunishmentToPunishLog bool   `db:"send_punishment_to_punish_log"`
	PunishLogChannelID        string `db:"punish_log_channel_id"`
	PunishLogMessage          string `db:"punish_log_message"`
}

// WarnAction maps an accumulated warn count to the punishment it escalates to.
type WarnAction struct {
	GuildID string `db:"guild_id"`
	Count   int    `db:"warn_count"`
	Action  string `db:"punishment_action"`
}

type AuditLog struct {
	ID          int64     `db:"id"`
	GuildID     string    `db:"guild_id"`
	ModeratorID string    `db:"moderator_id"`
	TargetID    string    `db:"target_id"`
	Level       string    `db:"level"`
	Action      string    `db:"action"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"-"`
}

func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

func (s *Store) GetModerationSettings(ctx context.Context, guildID string, defaults ModerationSettings) (ModerationSettings, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT language, send_punishment_via_dm, send_punishment_to_punish_log,
		punish_log_channel_id, punish_log_message
		FROM moderation_settings WHERE guild_id = ?`, guildID)

	result := defaults
	result.GuildID = guildID

	var viaDm, toLog int
	err := row.Scan(
		&result.Language,
		&viaDm,
		&toLog,
		&result.PunishLogChannelID,
		&result.PunishLogMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return ModerationSettings{}, err
	}
	result.SendPunishmentViaDm = viaDm == 1
	result.SendPunishmentToPunishLog = toLog == 1
	if result.Language == "" {
		result.Language = defaults.Language
	}
	return result, nil
}

func (s *Store) UpsertModerationSettings(ctx context.Context, settings ModerationSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderation_settings (
			guild_id, language, send_punishment_via_dm,
			send_punishment_to_punish_log, punish_log_channel_id, punish_log_message
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			language = excluded.language,
			send_punishment_via_dm = excluded.send_punishment_via_dm,
			send_punishment_to_punish_log = excluded.send_punishment_to_punish_log,
			punish_log_channel_id = excluded.punish_log_channel_id,
			punish_log_message = excluded.punish_log_message
	`,
		settings.GuildID,
		settings.Language,
		boolToInt(settings.SendPunishmentViaDm),
		boolToInt(settings.SendPunishmentToPunishLog),
		settings.PunishLogChannelID,
		settings.PunishLogMessage,
	)
	return err
}

// ListWarnActions returns the warn escalation rules ordered by the warn count
// required to trigger them.
func (s *Store) ListWarnActions(ctx context.Context, guildID string) ([]WarnAction, error) {
	var actions []WarnAction
	err := s.db.SelectContext(ctx, &actions, `
		SELECT guild_id, warn_count, punishment_action
		FROM warn_actions
		WHERE guild_id = ?
		ORDER BY warn_count ASC
	`, guildID)
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func (s *Store) UpsertWarnAction(ctx context.Context, action WarnAction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warn_actions (guild_id, warn_count, punishment_action)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, warn_count) DO UPDATE SET
			punishment_action = excluded.punishment_action
	`, action.GuildID, action.Count, action.Action)
	return err
}

// GetPunishmentMessage returns the punish-log template for a specific action,
// falling back to the guild-wide message when no override exists.
func (s *Store) GetPunishmentMessage(ctx context.Context, guildID, action, fallback string) (string, error) {
	var message string
	err := s.db.GetContext(ctx, &message, `
		SELECT punish_log_message FROM punishment_messages
		WHERE guild_id = ? AND punishment_action = ?
	`, guildID, action)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fallback, nil
		}
		return "", err
	}
	return message, nil
}

func (s *Store) SetPunishmentMessage(ctx context.Context, guildID, action, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO punishment_messages (guild_id, punishment_action, punish_log_message)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, punishment_action) DO UPDATE SET
			punish_log_message = excluded.punish_log_message
	`, guildID, action, message)
	return err
}

func (s *Store) GetQuickPunishment(ctx context.Context, userID string) (bool, error) {
	var quick int
	err := s.db.GetContext(ctx, &quick, `
		SELECT quick_punishment FROM user_preferences WHERE user_id = ?
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return quick == 1, nil
}

func (s *Store) SetQuickPunishment(ctx context.Context, userID string, enabled bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, quick_punishment)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			quick_punishment = excluded.quick_punishment
	`, userID, boolToInt(enabled))
	return err
}

func (s *Store) AddAuditLog(ctx context.Context, log AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (guild_id, moderator_id, target_id, level, action, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.GuildID, log.ModeratorID, log.TargetID, log.Level, log.Action, log.Reason, log.CreatedAt.Unix())
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, guildID string, since time.Time) ([]AuditLog, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, guild_id, moderator_id, target_id, level, action, reason, created_at
		FROM audit_logs
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var log AuditLog
		var created int64
		if err := rows.Scan(&log.ID, &log.GuildID, &log.ModeratorID, &log.TargetID, &log.Level, &log.Action, &log.Reason, &created); err != nil {
			return nil, err
		}
		log.CreatedAt = time.Unix(created, 0)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
