package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/hitoshi/cycle/internal/metrics"
	"github.com/hitoshi/cycle/internal/model"
)

// maxRequestBodyBytes はPOSTボディの上限サイズ。
const maxRequestBodyBytes = 64 << 10

// 受け付けるaction名。
const (
	ActionCreateUser    = "create_user"
	ActionGetUser       = "get_user"
	ActionGetCycles     = "get_cycles"
	ActionAddCycle      = "add_cycle"
	ActionSaveDailyNote = "save_daily_note"
	ActionGetArticles   = "get_articles"
)

// ProfileServiceInterface はプロフィール関連actionが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// CreateUser はプロフィールを作成し、採番されたuser_idを返す。
	CreateUser(ctx context.Context, req createUserRequest) (int64, error)
	// GetUser はプロフィールを目的タグ付きで返す。
	GetUser(ctx context.Context, userID int64) (*userResponse, error)
}

// TrackingServiceInterface は周期・日々の記録関連actionが必要とするサービスインターフェース。
type TrackingServiceInterface interface {
	// ListCycles は周期履歴を新しい順に返す。
	ListCycles(ctx context.Context, userID int64) ([]cycleResponse, error)
	// AddCycle は周期開始日を記録し、cycle_idを返す。
	AddCycle(ctx context.Context, userID int64, startDate string) (int64, error)
	// SaveDailyNote は日々の記録を保存し、note_idを返す。
	SaveDailyNote(ctx context.Context, req saveDailyNoteRequest) (int64, error)
}

// ArticleServiceInterface は記事一覧actionが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	ListArticles(ctx context.Context) ([]articleResponse, error)
}

// createUserRequest は create_user のリクエストボディ。
type createUserRequest struct {
	BirthYear int      `json:"birth_year"`
	UsageMode string   `json:"usage_mode"`
	Goals     []string `json:"goals"`
}

// addCycleRequest は add_cycle のリクエストボディ。
type addCycleRequest struct {
	UserID    int64  `json:"user_id"`
	StartDate string `json:"start_date"`
}

// saveDailyNoteRequest は save_daily_note のリクエストボディ。
// 指定されなかった項目はnilのまま。
type saveDailyNoteRequest struct {
	UserID       int64   `json:"user_id"`
	NoteDate     string  `json:"note_date"`
	Mood         *string `json:"mood,omitempty"`
	EnergyLevel  *string `json:"energy_level,omitempty"`
	SleepQuality *string `json:"sleep_quality,omitempty"`
}

// userResponse はプロフィールのAPIレスポンス。
type userResponse struct {
	ID          int64     `json:"id"`
	BirthYear   int       `json:"birth_year"`
	UsageMode   string    `json:"usage_mode"`
	PartnerCode string    `json:"partner_code"`
	Goals       []string  `json:"goals"`
	CreatedAt   time.Time `json:"created_at"`
}

// cycleResponse は周期記録のAPIレスポンス。cycle_lengthは未確定ならnull。
type cycleResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	StartDate   string    `json:"start_date"`
	CycleLength *int      `json:"cycle_length"`
	CreatedAt   time.Time `json:"created_at"`
}

// articleResponse は記事のAPIレスポンス。
type articleResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	ReadingTime string    `json:"reading_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// actionRoute はactionごとの許可メソッドと処理関数。
type actionRoute struct {
	method  string
	handler http.HandlerFunc
}

// CycleHandler は ?action= で処理を振り分ける単一エンドポイントのHTTPハンドラー。
type CycleHandler struct {
	profiles ProfileServiceInterface
	tracking TrackingServiceInterface
	articles ArticleServiceInterface
	metrics  metrics.MetricsCollector
	routes   map[string]actionRoute
}

// NewCycleHandler はCycleHandlerを生成する。collectorがnilの場合はドメインメトリクスを記録しない。
func NewCycleHandler(
	profiles ProfileServiceInterface,
	tracking TrackingServiceInterface,
	articles ArticleServiceInterface,
	collector metrics.MetricsCollector,
) *CycleHandler {
	h := &CycleHandler{
		profiles: profiles,
		tracking: tracking,
		articles: articles,
		metrics:  collector,
	}
	h.routes = map[string]actionRoute{
		ActionCreateUser:    {http.MethodPost, h.CreateUser},
		ActionGetUser:       {http.MethodGet, h.GetUser},
		ActionGetCycles:     {http.MethodGet, h.GetCycles},
		ActionAddCycle:      {http.MethodPost, h.AddCycle},
		ActionSaveDailyNote: {http.MethodPost, h.SaveDailyNote},
		ActionGetArticles:   {http.MethodGet, h.GetArticles},
	}
	return h
}

// Actions は受け付けるaction名を昇順で返す。
func (h *CycleHandler) Actions() []string {
	names := make([]string, 0, len(h.routes))
	for name := range h.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch はactionクエリパラメータとHTTPメソッドで処理を振り分ける。
// 未知のaction、またはメソッドが一致しない場合は400 INVALID_ACTIONを返す。
func (h *CycleHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	route, ok := h.routes[action]
	if !ok || r.Method != route.method {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidActionError(action))
		return
	}
	route.handler(w, r)
}

// CreateUser はプロフィールを作成する。
// POST ?action=create_user
func (h *CycleHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, err := h.profiles.CreateUser(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordUserCreated()
	}

	writeJSON(w, http.StatusOK, map[string]int64{"user_id": userID})
}

// GetUser はプロフィールを返す。
// GET ?action=get_user&user_id=
func (h *CycleHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	user, err := h.profiles.GetUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetCycles は周期履歴を返す。
// GET ?action=get_cycles&user_id=
func (h *CycleHandler) GetCycles(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	cycles, err := h.tracking.ListCycles(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if cycles == nil {
		cycles = []cycleResponse{}
	}

	writeJSON(w, http.StatusOK, cycles)
}

// AddCycle は周期開始日を記録する。
// POST ?action=add_cycle
func (h *CycleHandler) AddCycle(w http.ResponseWriter, r *http.Request) {
	var req addCycleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cycleID, err := h.tracking.AddCycle(r.Context(), req.UserID, req.StartDate)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCycleAdded()
	}

	writeJSON(w, http.StatusOK, map[string]int64{"cycle_id": cycleID})
}

// SaveDailyNote は日々の記録を保存する。
// POST ?action=save_daily_note
func (h *CycleHandler) SaveDailyNote(w http.ResponseWriter, r *http.Request) {
	var req saveDailyNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	noteID, err := h.tracking.SaveDailyNote(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if h.metrics != nil {
		for field, v := range map[model.NoteField]*string{
			model.NoteFieldMood:         req.Mood,
			model.NoteFieldEnergyLevel:  req.EnergyLevel,
			model.NoteFieldSleepQuality: req.SleepQuality,
		} {
			if v != nil {
				h.metrics.RecordNoteSaved(string(field))
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]int64{"note_id": noteID})
}

// GetArticles は記事一覧を返す。
// GET ?action=get_articles
func (h *CycleHandler) GetArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.ListArticles(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if articles == nil {
		articles = []articleResponse{}
	}

	writeJSON(w, http.StatusOK, articles)
}

// decodeBody はJSONボディをvに読み込む。失敗時は400を書き込みfalseを返す。
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return false
	}
	return true
}

// queryUserID はuser_idクエリパラメータを正の整数として読む。失敗時は400を書き込みfalseを返す。
func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUserIDError())
		return 0, false
	}
	return userID, true
}
