// Package article は参照用記事の一覧取得を提供する。
package article

import (
	"context"
	"fmt"

	"github.com/hitoshi/cycle/internal/model"
	"github.com/hitoshi/cycle/internal/repository"
)

// Service は記事一覧のサービス層。
type Service struct {
	repo repository.ArticleRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ArticleRepository) *Service {
	return &Service{repo: repo}
}

// List は記事を新しい順に返す。記事がない場合は空スライスを返す。
func (s *Service) List(ctx context.Context) ([]*model.Article, error) {
	articles, err := s.repo.ListRecent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	if articles == nil {
		articles = []*model.Article{}
	}
	return articles, nil
}
