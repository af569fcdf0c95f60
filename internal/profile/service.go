// Package profile はプロフィール（利用者）の作成と参照のドメインロジックを提供する。
package profile

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/hitoshi/cycle/internal/model"
	"github.com/hitoshi/cycle/internal/repository"
)

// partnerCodeBytes はパートナーコードの乱数バイト数。base64url で11文字になる。
const partnerCodeBytes = 8

// CreateInput はプロフィール作成の入力値。
type CreateInput struct {
	BirthYear int
	UsageMode string
	Goals     []string
}

// Service はプロフィール管理のサービス層。
type Service struct {
	userRepo    repository.UserRepository
	newCodeFunc func() (string, error)
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{
		userRepo:    userRepo,
		newCodeFunc: generatePartnerCode,
	}
}

// Create は入力値を検証し、ユーザーと目的タグを作成する。
// 検証エラーは *model.APIError で返す。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	if !model.ValidBirthYear(in.BirthYear) {
		return nil, model.NewInvalidBirthYearError(in.BirthYear)
	}

	mode := model.UsageMode(in.UsageMode)
	if !mode.Valid() {
		return nil, model.NewInvalidUsageModeError(in.UsageMode)
	}

	if len(in.Goals) == 0 {
		return nil, model.NewInvalidGoalError("")
	}
	goals := make([]model.GoalTag, 0, len(in.Goals))
	for _, g := range in.Goals {
		tag := model.GoalTag(g)
		if !tag.Valid() {
			return nil, model.NewInvalidGoalError(g)
		}
		goals = append(goals, tag)
	}

	code, err := s.newCodeFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to generate partner code: %w", err)
	}

	user := &model.User{
		BirthYear:   in.BirthYear,
		UsageMode:   mode,
		PartnerCode: code,
		Goals:       goals,
	}
	if err := s.userRepo.CreateWithGoals(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.Int64("user_id", user.ID),
		slog.String("usage_mode", string(user.UsageMode)),
		slog.Int("goals_count", len(user.Goals)),
	)

	return user, nil
}

// Get は指定IDのユーザーを返す。存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, model.NewInvalidUserIDError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func generatePartnerCode() (string, error) {
	b := make([]byte, partnerCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
