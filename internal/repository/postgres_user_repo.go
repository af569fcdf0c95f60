package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cycle/internal/model"
	"github.com/lib/pq"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを目的タグ付きで取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	var usageMode string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, birth_year, usage_mode, partner_code, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.BirthYear, &usageMode, &user.PartnerCode, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	user.UsageMode = model.UsageMode(usageMode)

	rows, err := r.db.QueryContext(ctx,
		`SELECT goal_type FROM user_goals WHERE user_id = $1 ORDER BY sort_order, goal_type`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user goals: %w", err)
	}
	defer rows.Close()

	user.Goals = []model.GoalTag{}
	for rows.Next() {
		var goal string
		if err := rows.Scan(&goal); err != nil {
			return nil, fmt.Errorf("failed to scan user goal: %w", err)
		}
		user.Goals = append(user.Goals, model.GoalTag(goal))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user goals: %w", err)
	}

	return user, nil
}

// CreateWithGoals はユーザーと目的タグを同一トランザクションで作成する。
func (r *PostgresUserRepo) CreateWithGoals(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (birth_year, usage_mode, partner_code)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		user.BirthYear, string(user.UsageMode), user.PartnerCode,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	// 重複は最初の位置だけ残し、選択順を sort_order に保存する
	goals := make([]string, 0, len(user.Goals))
	seen := make(map[model.GoalTag]bool, len(user.Goals))
	for _, g := range user.Goals {
		if seen[g] {
			continue
		}
		seen[g] = true
		goals = append(goals, string(g))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_goals (user_id, goal_type, sort_order)
		 SELECT $1, g.goal_type, g.ord
		 FROM unnest($2::text[]) WITH ORDINALITY AS g(goal_type, ord)
		 ON CONFLICT (user_id, goal_type) DO NOTHING`,
		user.ID, pq.Array(goals),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user goals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Exists は指定IDのユーザーが存在するかを返す。
func (r *PostgresUserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
