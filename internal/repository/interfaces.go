// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/cycle/internal/model"
)

// ErrDuplicateCycle は同じユーザーに同じ開始日の周期が既にある場合に返す。
var ErrDuplicateCycle = errors.New("cycle with the same start date already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを目的タグ付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// CreateWithGoals はユーザーと目的タグを同一トランザクションで作成する。
	// 採番されたIDと作成日時をuserに書き戻す。重複する目的タグは無視する。
	CreateWithGoals(ctx context.Context, user *model.User) error

	// Exists は指定IDのユーザーが存在するかを返す。
	Exists(ctx context.Context, id int64) (bool, error)
}

// CycleRepository は周期記録の永続化インターフェース。
type CycleRepository interface {
	// CreateAndRecompute は周期を作成し、同じユーザーの周期日数を同一トランザクションで再計算する。
	// 採番されたIDと作成日時をcycleに書き戻す。同じ開始日が既にあれば ErrDuplicateCycle を返す。
	CreateAndRecompute(ctx context.Context, cycle *model.Cycle) error

	// ListRecentByUserID はユーザーの周期を開始日の新しい順に最大limit件返す。
	ListRecentByUserID(ctx context.Context, userID int64, limit int) ([]*model.Cycle, error)
}

// CycleLengthBackfiller は全ユーザーの周期日数を再計算するバッチ用インターフェース。
type CycleLengthBackfiller interface {
	// RecomputeAllLengths は値が変わる行のみ更新し、更新件数を返す。
	RecomputeAllLengths(ctx context.Context) (int64, error)
}

// DailyNoteRepository は日々の記録の永続化インターフェース。
type DailyNoteRepository interface {
	// Upsert は(user_id, note_date)単位で記録をUPSERTする。
	// nilフィールドは変更せず、既存の値を維持する部分更新を行う。
	Upsert(ctx context.Context, note *model.DailyNote) (*model.DailyNote, error)
}

// ArticleRepository は記事の読み取りインターフェース。
type ArticleRepository interface {
	// ListRecent は記事を作成日時の新しい順に返す。
	ListRecent(ctx context.Context) ([]*model.Article, error)
}
