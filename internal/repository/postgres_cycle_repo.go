package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cycle/internal/model"
)

// recomputeLengthsSQL は開始日の昇順に並べた次の周期との日数差をcycle_lengthに書き込む。
// 最新の周期は次がないためNULLになる。値が変わらない行は更新しない。
const recomputeLengthsSQL = `
UPDATE cycles c
SET cycle_length = s.len
FROM (
	SELECT id, LEAD(start_date) OVER (PARTITION BY user_id ORDER BY start_date, id) - start_date AS len
	FROM cycles
	%s
) s
WHERE c.id = s.id AND c.cycle_length IS DISTINCT FROM s.len`

// PostgresCycleRepo はPostgreSQLを使用した周期リポジトリ。
type PostgresCycleRepo struct {
	db *sql.DB
}

// NewPostgresCycleRepo はPostgresCycleRepoを生成する。
func NewPostgresCycleRepo(db *sql.DB) *PostgresCycleRepo {
	return &PostgresCycleRepo{db: db}
}

// CreateAndRecompute は周期を作成し、同じユーザーの周期日数を再計算する。
func (r *PostgresCycleRepo) CreateAndRecompute(ctx context.Context, cycle *model.Cycle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO cycles (user_id, start_date)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, start_date) DO NOTHING
		 RETURNING id, created_at`,
		cycle.UserID, cycle.StartDate.Format(model.DateLayout),
	).Scan(&cycle.ID, &cycle.CreatedAt)
	if err == sql.ErrNoRows {
		return ErrDuplicateCycle
	}
	if err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(recomputeLengthsSQL, "WHERE user_id = $1"), cycle.UserID); err != nil {
		return fmt.Errorf("failed to recompute cycle lengths: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListRecentByUserID はユーザーの周期を開始日の新しい順に最大limit件返す。
func (r *PostgresCycleRepo) ListRecentByUserID(ctx context.Context, userID int64, limit int) ([]*model.Cycle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, start_date, cycle_length, created_at
		 FROM cycles
		 WHERE user_id = $1
		 ORDER BY start_date DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	cycles := []*model.Cycle{}
	for rows.Next() {
		c := &model.Cycle{}
		var length sql.NullInt64
		if err := rows.Scan(&c.ID, &c.UserID, &c.StartDate, &length, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		if length.Valid {
			n := int(length.Int64)
			c.CycleLength = &n
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycles: %w", err)
	}

	return cycles, nil
}

// RecomputeAllLengths は全ユーザーの周期日数を再計算し、更新件数を返す。
func (r *PostgresCycleRepo) RecomputeAllLengths(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(recomputeLengthsSQL, ""))
	if err != nil {
		return 0, fmt.Errorf("failed to recompute all cycle lengths: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var (
	_ CycleRepository       = (*PostgresCycleRepo)(nil)
	_ CycleLengthBackfiller = (*PostgresCycleRepo)(nil)
)
