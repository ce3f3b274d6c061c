package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// MuteRecord is the durable source of truth for an active mute. The in-memory
// removal timer is derived from it, never the other way around.
type MuteRecord struct {
	GuildID    string `db:"guild_id"`
	UserID     string `db:"user_id"`
	PunishedBy string `db:"punished_by"`
	Reason     string `db:"reason"`
	ReceivedAt time.Time
	ExpiresAt  *time.Time
}

func (s *Store) UpsertMute(ctx context.Context, record MuteRecord) error {
	var expires any
	if record.ExpiresAt != nil {
		expires = record.ExpiresAt.Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mutes (guild_id, user_id, punished_by, reason, received_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			punished_by = excluded.punished_by,
			reason = excluded.reason,
			received_at = excluded.received_at,
			expires_at = excluded.expires_at
	`, record.GuildID, record.UserID, record.PunishedBy, record.Reason, record.ReceivedAt.Unix(), expires)
	return err
}

// GetMute returns the mute for (guildID, userID), or (nil, nil) when the user
// is not muted.
func (s *Store) GetMute(ctx context.Context, guildID, userID string) (*MuteRecord, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT guild_id, user_id, punished_by, reason, received_at, expires_at
		FROM mutes
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	record, err := scanMute(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (s *Store) DeleteMute(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM mutes WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	return err
}

// ListTemporaryMutes returns every mute with an expiry, for re-arming removal
// timers after a restart.
func (s *Store) ListTemporaryMutes(ctx context.Context) ([]MuteRecord, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT guild_id, user_id, punished_by, reason, received_at, expires_at
		FROM mutes
		WHERE expires_at IS NOT NULL
		ORDER BY expires_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MuteRecord
	for rows.Next() {
		record, err := scanMute(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMute(row scannable) (*MuteRecord, error) {
	var record MuteRecord
	var received int64
	var expires sql.NullInt64
	err := row.Scan(&record.GuildID, &record.UserID, &record.PunishedBy, &record.Reason, &received, &expires)
	if err != nil {
		return nil, err
	}
	record.ReceivedAt = time.Unix(received, 0)
	if expires.Valid {
		value := time.Unix(expires.Int64, 0)
		record.ExpiresAt = &value
	}
	return &record, nil
}
