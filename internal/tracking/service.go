// Package tracking は周期開始日と日々の体調記録のドメインロジックを提供する。
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/cycle/internal/model"
	"github.com/hitoshi/cycle/internal/repository"
	"github.com/hitoshi/cycle/internal/security"
)

// UserChecker はユーザーの存在確認インターフェース。
type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// NoteInput は日々の記録の保存入力。未指定の項目はnil。
type NoteInput struct {
	UserID       int64
	NoteDate     string
	Mood         *string
	EnergyLevel  *string
	SleepQuality *string
}

// Service は周期と日々の記録のサービス層。
type Service struct {
	users        UserChecker
	cycleRepo    repository.CycleRepository
	noteRepo     repository.DailyNoteRepository
	sanitizer    security.TextSanitizerService
	historyLimit int
}

// NewService はServiceの新しいインスタンスを生成する。
// historyLimit は get_cycles で返す最大件数。
func NewService(
	users UserChecker,
	cycleRepo repository.CycleRepository,
	noteRepo repository.DailyNoteRepository,
	sanitizer security.TextSanitizerService,
	historyLimit int,
) *Service {
	return &Service{
		users:        users,
		cycleRepo:    cycleRepo,
		noteRepo:     noteRepo,
		sanitizer:    sanitizer,
		historyLimit: historyLimit,
	}
}

// ListCycles はユーザーの周期履歴を開始日の新しい順に返す。
// 記録のないユーザーには空スライスを返す。
func (s *Service) ListCycles(ctx context.Context, userID int64) ([]*model.Cycle, error) {
	if userID <= 0 {
		return nil, model.NewInvalidUserIDError()
	}
	cycles, err := s.cycleRepo.ListRecentByUserID(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	return cycles, nil
}

// AddCycle は周期開始日を記録し、周期日数を再計算する。
func (s *Service) AddCycle(ctx context.Context, userID int64, startDate string) (*model.Cycle, error) {
	if userID <= 0 {
		return nil, model.NewInvalidUserIDError()
	}
	start, err := time.Parse(model.DateLayout, startDate)
	if err != nil {
		return nil, model.NewInvalidDateError("start_date", startDate)
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	cycle := &model.Cycle{UserID: userID, StartDate: start}
	if err := s.cycleRepo.CreateAndRecompute(ctx, cycle); err != nil {
		if errors.Is(err, repository.ErrDuplicateCycle) {
			return nil, model.NewDuplicateCycleError(startDate)
		}
		return nil, fmt.Errorf("failed to add cycle: %w", err)
	}

	slog.Info("cycle added",
		slog.Int64("user_id", userID),
		slog.Int64("cycle_id", cycle.ID),
		slog.String("start_date", startDate),
	)
	return cycle, nil
}

// SaveNote は日々の記録を保存する。
// 記録値はサニタイズ後に空でなく64文字以内である必要がある。
func (s *Service) SaveNote(ctx context.Context, in NoteInput) (*model.DailyNote, error) {
	if in.UserID <= 0 {
		return nil, model.NewInvalidUserIDError()
	}
	noteDate, err := time.Parse(model.DateLayout, in.NoteDate)
	if err != nil {
		return nil, model.NewInvalidDateError("note_date", in.NoteDate)
	}

	note := &model.DailyNote{UserID: in.UserID, NoteDate: noteDate}
	fields := []struct {
		field model.NoteField
		src   *string
		dst   **string
	}{
		{model.NoteFieldMood, in.Mood, &note.Mood},
		{model.NoteFieldEnergyLevel, in.EnergyLevel, &note.EnergyLevel},
		{model.NoteFieldSleepQuality, in.SleepQuality, &note.SleepQuality},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v := s.sanitizer.Sanitize(*f.src)
		if v == "" || utf8.RuneCountInString(v) > model.MaxNoteValueLength {
			return nil, model.NewInvalidNoteValueError(f.field)
		}
		*f.dst = &v
	}
	if note.Empty() {
		return nil, model.NewEmptyNoteError()
	}

	if err := s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	saved, err := s.noteRepo.Upsert(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to save daily note: %w", err)
	}

	slog.Info("daily note saved",
		slog.Int64("user_id", in.UserID),
		slog.Int64("note_id", saved.ID),
		slog.String("note_date", in.NoteDate),
	)
	return saved, nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !ok {
		return model.NewUserNotFoundError()
	}
	return nil
}
