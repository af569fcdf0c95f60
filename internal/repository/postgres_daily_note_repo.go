package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cycle/internal/model"
)

// PostgresDailyNoteRepo はPostgreSQLを使用した日々の記録リポジトリ。
type PostgresDailyNoteRepo struct {
	db *sql.DB
}

// NewPostgresDailyNoteRepo はPostgresDailyNoteRepoを生成する。
func NewPostgresDailyNoteRepo(db *sql.DB) *PostgresDailyNoteRepo {
	return &PostgresDailyNoteRepo{db: db}
}

// Upsert は(user_id, note_date)単位で記録をUPSERTする。
// nilフィールドはCOALESCEで既存値を維持する。
func (r *PostgresDailyNoteRepo) Upsert(ctx context.Context, note *model.DailyNote) (*model.DailyNote, error) {
	saved := &model.DailyNote{}
	var mood, energy, sleep sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO daily_notes (user_id, note_date, mood, energy_level, sleep_quality)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, note_date) DO UPDATE SET
		   mood = COALESCE(EXCLUDED.mood, daily_notes.mood),
		   energy_level = COALESCE(EXCLUDED.energy_level, daily_notes.energy_level),
		   sleep_quality = COALESCE(EXCLUDED.sleep_quality, daily_notes.sleep_quality),
		   updated_at = now()
		 RETURNING id, user_id, note_date, mood, energy_level, sleep_quality`,
		note.UserID, note.NoteDate.Format(model.DateLayout),
		nullString(note.Mood), nullString(note.EnergyLevel), nullString(note.SleepQuality),
	).Scan(&saved.ID, &saved.UserID, &saved.NoteDate, &mood, &energy, &sleep)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily note: %w", err)
	}

	saved.Mood = stringPtr(mood)
	saved.EnergyLevel = stringPtr(energy)
	saved.SleepQuality = stringPtr(sleep)
	return saved, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// compile-time interface check
var _ DailyNoteRepository = (*PostgresDailyNoteRepo)(nil)
