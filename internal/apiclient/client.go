// Package apiclient は周期記録APIのHTTPクライアントを提供する。
// 全リクエストは単一エンドポイントに action クエリパラメータを付けて送る。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/cycle/internal/model"
)

// maxResponseBytes はレスポンスボディの読み取り上限。
const maxResponseBytes = 1 << 20

// CreateUserRequest は create_user のリクエストボディ。
type CreateUserRequest struct {
	BirthYear int      `json:"birth_year"`
	UsageMode string   `json:"usage_mode"`
	Goals     []string `json:"goals"`
}

// DailyNoteRequest は save_daily_note のリクエストボディ。
// 1回の保存ではいずれか1項目だけを設定する。
type DailyNoteRequest struct {
	UserID       int64   `json:"user_id"`
	NoteDate     string  `json:"note_date"`
	Mood         *string `json:"mood,omitempty"`
	EnergyLevel  *string `json:"energy_level,omitempty"`
	SleepQuality *string `json:"sleep_quality,omitempty"`
}

// Profile は get_user のレスポンス。
type Profile struct {
	ID          int64     `json:"id"`
	BirthYear   int       `json:"birth_year"`
	UsageMode   string    `json:"usage_mode"`
	PartnerCode string    `json:"partner_code"`
	Goals       []string  `json:"goals"`
	CreatedAt   time.Time `json:"created_at"`
}

// Cycle は get_cycles のレスポンス要素。
type Cycle struct {
	ID          int64  `json:"id"`
	StartDate   string `json:"start_date"`
	CycleLength *int   `json:"cycle_length,omitempty"`
}

// Article は get_articles のレスポンス要素。
type Article struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	ReadingTime string `json:"reading_time"`
}

// apiErrorBody はサーバーの統一エラーフォーマット。
type apiErrorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// Client は周期記録APIのクライアント。
// 呼び出しごとのタイムアウトは呼び出し元のcontextで指定する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewClient はClientの新しいインスタンスを生成する。
// endpoint は action を付ける前のURL（例: http://localhost:8080/api/cycle）。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
	}
}

// CreateUser はプロフィールを作成し、採番されたuser_idを返す。
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (int64, error) {
	var resp struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodPost, "create_user", nil, req, &resp); err != nil {
		return 0, err
	}
	if resp.UserID <= 0 {
		return 0, fmt.Errorf("create_user のレスポンスに user_id が含まれていません")
	}
	return resp.UserID, nil
}

// GetUser はプロフィールを取得する。
func (c *Client) GetUser(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "get_user", userQuery(userID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetCycles は周期履歴を新しい順に取得する。
func (c *Client) GetCycles(ctx context.Context, userID int64) ([]Cycle, error) {
	var cycles []Cycle
	if err := c.do(ctx, http.MethodGet, "get_cycles", userQuery(userID), nil, &cycles); err != nil {
		return nil, err
	}
	return cycles, nil
}

// GetArticles は記事一覧を取得する。
func (c *Client) GetArticles(ctx context.Context) ([]Article, error) {
	var articles []Article
	if err := c.do(ctx, http.MethodGet, "get_articles", nil, nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// AddCycle は周期開始日（YYYY-MM-DD）を記録する。レスポンスボディは読み捨てる。
func (c *Client) AddCycle(ctx context.Context, userID int64, startDate string) error {
	body := struct {
		UserID    int64  `json:"user_id"`
		StartDate string `json:"start_date"`
	}{userID, startDate}
	return c.do(ctx, http.MethodPost, "add_cycle", nil, body, nil)
}

// SaveDailyNote は日々の記録を保存する。レスポンスボディは読み捨てる。
func (c *Client) SaveDailyNote(ctx context.Context, req DailyNoteRequest) error {
	return c.do(ctx, http.MethodPost, "save_daily_note", nil, req, nil)
}

func userQuery(userID int64) url.Values {
	return url.Values{"user_id": []string{strconv.FormatInt(userID, 10)}}
}

// do は1回のAPI呼び出しを実行する。
// 2xx以外のステータスで統一エラーフォーマットのボディがあれば *model.APIError を返す。
func (c *Client) do(ctx context.Context, method, action string, query url.Values, in, out any) error {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("action", action)
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	reqURL.RawQuery = q.Encode()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("APIの呼び出しに失敗しました",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s の呼び出しに失敗しました: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("APIがエラーステータスを返しました",
			slog.String("action", action),
			slog.Int("http_status", resp.StatusCode),
		)
		var eb apiErrorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Code != "" {
			return &model.APIError{
				Code:     eb.Code,
				Message:  eb.Message,
				Category: eb.Category,
				Action:   eb.Action,
			}
		}
		return fmt.Errorf("%s がステータス %d を返しました", action, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("APIレスポンスのパースに失敗しました",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return nil
}
