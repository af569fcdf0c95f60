package handler

import (
	"context"

	"github.com/hitoshi/cycle/internal/article"
	"github.com/hitoshi/cycle/internal/model"
	"github.com/hitoshi/cycle/internal/profile"
	"github.com/hitoshi/cycle/internal/tracking"
)

// ProfileServiceAdapter は profile.Service を ProfileServiceInterface に適合させるアダプタ。
type ProfileServiceAdapter struct {
	svc *profile.Service
}

// NewProfileServiceAdapter はProfileServiceAdapterを生成する。
func NewProfileServiceAdapter(svc *profile.Service) *ProfileServiceAdapter {
	return &ProfileServiceAdapter{svc: svc}
}

// CreateUser はプロフィールを作成し、採番されたuser_idを返す。
func (a *ProfileServiceAdapter) CreateUser(ctx context.Context, req createUserRequest) (int64, error) {
	u, err := a.svc.Create(ctx, profile.CreateInput{
		BirthYear: req.BirthYear,
		UsageMode: req.UsageMode,
		Goals:     req.Goals,
	})
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// GetUser はプロフィールをhandlerレスポンス型で返す。
func (a *ProfileServiceAdapter) GetUser(ctx context.Context, userID int64) (*userResponse, error) {
	u, err := a.svc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// TrackingServiceAdapter は tracking.Service を TrackingServiceInterface に適合させるアダプタ。
type TrackingServiceAdapter struct {
	svc *tracking.Service
}

// NewTrackingServiceAdapter はTrackingServiceAdapterを生成する。
func NewTrackingServiceAdapter(svc *tracking.Service) *TrackingServiceAdapter {
	return &TrackingServiceAdapter{svc: svc}
}

// ListCycles は周期履歴をhandlerレスポンス型で返す。
func (a *TrackingServiceAdapter) ListCycles(ctx context.Context, userID int64) ([]cycleResponse, error) {
	cycles, err := a.svc.ListCycles(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]cycleResponse, len(cycles))
	for i, c := range cycles {
		results[i] = toCycleResponse(c)
	}
	return results, nil
}

// AddCycle は周期開始日を記録し、cycle_idを返す。
func (a *TrackingServiceAdapter) AddCycle(ctx context.Context, userID int64, startDate string) (int64, error) {
	c, err := a.svc.AddCycle(ctx, userID, startDate)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

// SaveDailyNote は日々の記録を保存し、note_idを返す。
func (a *TrackingServiceAdapter) SaveDailyNote(ctx context.Context, req saveDailyNoteRequest) (int64, error) {
	n, err := a.svc.SaveNote(ctx, tracking.NoteInput{
		UserID:       req.UserID,
		NoteDate:     req.NoteDate,
		Mood:         req.Mood,
		EnergyLevel:  req.EnergyLevel,
		SleepQuality: req.SleepQuality,
	})
	if err != nil {
		return 0, err
	}
	return n.ID, nil
}

// ArticleServiceAdapter は article.Service を ArticleServiceInterface に適合させるアダプタ。
type ArticleServiceAdapter struct {
	svc *article.Service
}

// NewArticleServiceAdapter はArticleServiceAdapterを生成する。
func NewArticleServiceAdapter(svc *article.Service) *ArticleServiceAdapter {
	return &ArticleServiceAdapter{svc: svc}
}

// ListArticles は記事一覧をhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) ListArticles(ctx context.Context) ([]articleResponse, error) {
	articles, err := a.svc.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]articleResponse, len(articles))
	for i, art := range articles {
		results[i] = articleResponse{
			ID:          art.ID,
			Title:       art.Title,
			Category:    art.Category,
			ReadingTime: art.ReadingTime,
			CreatedAt:   art.CreatedAt,
		}
	}
	return results, nil
}

// toUserResponse はドメインのUserをhandlerのレスポンス型に変換する。
func toUserResponse(u *model.User) userResponse {
	goals := make([]string, len(u.Goals))
	for i, g := range u.Goals {
		goals[i] = string(g)
	}
	return userResponse{
		ID:          u.ID,
		BirthYear:   u.BirthYear,
		UsageMode:   string(u.UsageMode),
		PartnerCode: u.PartnerCode,
		Goals:       goals,
		CreatedAt:   u.CreatedAt,
	}
}

// toCycleResponse はドメインのCycleをhandlerのレスポンス型に変換する。
func toCycleResponse(c *model.Cycle) cycleResponse {
	return cycleResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		StartDate:   c.StartDate.Format(model.DateLayout),
		CycleLength: c.CycleLength,
		CreatedAt:   c.CreatedAt,
	}
}
