// Package tui は端末クライアントの画面とイベント処理を提供する。
// Model がセッションの唯一の所有者で、API呼び出しは tea.Cmd として非同期に実行し、
// 結果はメッセージとして Update に戻してから状態に反映する。
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hitoshi/cycle/internal/apiclient"
	"github.com/hitoshi/cycle/internal/kvstore"
	"github.com/hitoshi/cycle/internal/model"
	"github.com/hitoshi/cycle/internal/session"
)

// API は画面が必要とするバックエンド呼び出し。*apiclient.Client が満たす。
type API interface {
	CreateUser(ctx context.Context, req apiclient.CreateUserRequest) (int64, error)
	GetUser(ctx context.Context, userID int64) (*apiclient.Profile, error)
	GetCycles(ctx context.Context, userID int64) ([]apiclient.Cycle, error)
	GetArticles(ctx context.Context) ([]apiclient.Article, error)
	AddCycle(ctx context.Context, userID int64, startDate string) error
	SaveDailyNote(ctx context.Context, req apiclient.DailyNoteRequest) error
}

// Options はModelの生成パラメータ。
type Options struct {
	API    API
	Store  kvstore.Store
	Logger *slog.Logger

	// CallTimeout は1回のAPI呼び出しに許す最大時間。
	CallTimeout time.Duration
	// SplashDelay はスプラッシュ画面の表示時間。0以下なら2.5秒。
	SplashDelay time.Duration
	// ToastDuration は通知の表示時間。
	ToastDuration time.Duration
	// Now は現在時刻。nilならtime.Now。
	Now func() time.Time
}

const (
	defaultCallTimeout   = 10 * time.Second
	defaultSplashDelay   = 2500 * time.Millisecond
	defaultToastDuration = 3 * time.Second
)

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

// Model は端末クライアントのbubbletea Model。
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	api           API
	store         kvstore.Store
	logger        *slog.Logger
	callTimeout   time.Duration
	splashDelay   time.Duration
	toastDuration time.Duration
	now           func() time.Time

	sess *session.Session
	keys keyMap
	help help.Model

	width  int
	height int

	splashGen int

	modeCursor int
	yearCursor int
	goalCursor int
	creating   bool

	articlesRequested bool
	profileRequested  bool

	noteFieldCursor  int
	noteChoiceCursor int
	partnerInput     textinput.Model

	toast     string
	toastKind toastKind
	toastGen  int
}

// New はModelを生成する。保存済みのuser_idがあればオンボーディングを省略する。
// ctx はアプリケーション終了時にキャンセルされ、実行中のAPI呼び出しも中断する。
func New(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)

	m := &Model{
		ctx:           ctx,
		cancel:        cancel,
		api:           opts.API,
		store:         opts.Store,
		logger:        opts.Logger,
		callTimeout:   opts.CallTimeout,
		splashDelay:   opts.SplashDelay,
		toastDuration: opts.ToastDuration,
		now:           opts.Now,
		sess:          session.New(),
		keys:          defaultKeyMap(),
		help:          help.New(),
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.callTimeout <= 0 {
		m.callTimeout = defaultCallTimeout
	}
	if m.splashDelay <= 0 {
		m.splashDelay = defaultSplashDelay
	}
	if m.toastDuration <= 0 {
		m.toastDuration = defaultToastDuration
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.sess.SetSelectedDate(m.now())

	ti := textinput.New()
	ti.Placeholder = "パートナーコードを入力"
	ti.CharLimit = 32
	m.partnerInput = ti

	m.resume()
	return m
}

// resume は保存済みのuser_idを読み込む。読み込みに失敗した場合はオンボーディングから始める。
func (m *Model) resume() {
	if m.store == nil {
		return
	}
	raw, ok, err := m.store.Get(kvstore.UserIDKey)
	if err != nil {
		m.logger.Warn("保存済みuser_idの読み込みに失敗しました", slog.String("error", err.Error()))
		return
	}
	if !ok {
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.logger.Warn("保存済みuser_idが不正です", slog.String("value", raw))
		return
	}
	if err := m.sess.Resume(id); err != nil {
		m.logger.Warn("セッションの再開に失敗しました", slog.String("error", err.Error()))
		return
	}
	m.logger.Info("保存済みのプロフィールで再開しました", slog.Int64("user_id", id))
}

// Session は現在のセッション状態を返す。
func (m *Model) Session() *session.Session {
	return m.sess
}

// Init はスプラッシュのタイマーを開始する。再開時はメイン画面の読み込みを始める。
func (m *Model) Init() tea.Cmd {
	if m.sess.Screen() == session.ScreenMain {
		return m.enterMain()
	}
	return m.armSplash()
}

// armSplash はsplash画面の1回限りのタイマーを設定する。
// 世代番号が一致しないタイマーは破棄する。
func (m *Model) armSplash() tea.Cmd {
	m.splashGen++
	gen := m.splashGen
	return tea.Tick(m.splashDelay, func(time.Time) tea.Msg {
		return splashTickMsg{gen: gen}
	})
}

// leaveSplash はsplashを抜け、未発火のタイマーを無効化する。
func (m *Model) leaveSplash() {
	if err := m.sess.SplashElapsed(); err != nil {
		return
	}
	m.splashGen++
}

// Update はメッセージを処理する。
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		return m, m.handleKey(msg)

	case splashTickMsg:
		if msg.gen != m.splashGen || m.sess.Screen() != session.ScreenSplash {
			return m, nil
		}
		m.leaveSplash()
		return m, nil

	case userCreatedMsg:
		return m, m.onUserCreated(msg)
	case cyclesLoadedMsg:
		return m, m.onCyclesLoaded(msg)
	case articlesLoadedMsg:
		return m, m.onArticlesLoaded(msg)
	case cycleAddedMsg:
		return m, m.onCycleAdded(msg)
	case noteSavedMsg:
		return m, m.onNoteSaved(msg)
	case profileLoadedMsg:
		return m, m.onProfileLoaded(msg)

	case toastExpiredMsg:
		if msg.gen == m.toastGen {
			m.toast = ""
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	m.cancel()
	return tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.sess.Screen() {
	case session.ScreenSplash:
		return m.handleSplashKey(msg)
	case session.ScreenMenu:
		return m.handleMenuKey(msg)
	case session.ScreenBirthdate:
		return m.handleBirthdateKey(msg)
	case session.ScreenGoals:
		return m.handleGoalsKey(msg)
	case session.ScreenMain:
		return m.handleMainKey(msg)
	}
	return nil
}

func (m *Model) handleSplashKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Confirm):
		m.leaveSplash()
	}
	return nil
}

var modeOptions = []model.UsageMode{model.UsageModeSelf, model.UsageModePartner}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.modeCursor = clamp(m.modeCursor-1, len(modeOptions))
	case key.Matches(msg, m.keys.Down):
		m.modeCursor = clamp(m.modeCursor+1, len(modeOptions))
	case key.Matches(msg, m.keys.Confirm):
		if err := m.sess.ChooseMode(modeOptions[m.modeCursor]); err != nil {
			m.logger.Warn("利用形態の選択に失敗しました", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (m *Model) handleBirthdateKey(msg tea.KeyMsg) tea.Cmd {
	years := session.BirthYearOptions()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.yearCursor = clamp(m.yearCursor-1, len(years))
	case key.Matches(msg, m.keys.Down):
		m.yearCursor = clamp(m.yearCursor+1, len(years))
	case key.Matches(msg, m.keys.Select):
		if err := m.sess.SelectBirthYear(years[m.yearCursor]); err != nil {
			m.logger.Warn("生まれ年の選択に失敗しました", slog.String("error", err.Error()))
		}
	case key.Matches(msg, m.keys.Confirm):
		// 未選択の間は「次へ」が無効
		if err := m.sess.ConfirmBirthYear(); err != nil && !errors.Is(err, session.ErrBirthYearRequired) {
			m.logger.Warn("生まれ年の確定に失敗しました", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (m *Model) handleGoalsKey(msg tea.KeyMsg) tea.Cmd {
	opts := session.GoalOptions()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.goalCursor = clamp(m.goalCursor-1, len(opts))
	case key.Matches(msg, m.keys.Down):
		m.goalCursor = clamp(m.goalCursor+1, len(opts))
	case key.Matches(msg, m.keys.Select):
		if err := m.sess.ToggleGoal(opts[m.goalCursor].Tag); err != nil {
			m.logger.Warn("目的の切り替えに失敗しました", slog.String("error", err.Error()))
		}
	case key.Matches(msg, m.keys.Confirm):
		return m.startProfileCreation()
	}
	return nil
}

func (m *Model) handleMainKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	}

	// パートナータブでは入力欄がキーを受け取る
	if m.sess.Tab() == session.TabPartner {
		return m.handlePartnerKey(msg)
	}
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}
	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(session.AllTabs) {
		return m.selectTab(session.AllTabs[n-1])
	}

	switch m.sess.Tab() {
	case session.TabCalendar:
		return m.handleCalendarKey(msg)
	case session.TabToday:
		return m.handleTodayKey(msg)
	case session.TabArticles, session.TabMessages, session.TabProfile:
		return nil
	}
	return nil
}

func (m *Model) handleCalendarKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.sess.ShiftSelectedDate(-1)
	case key.Matches(msg, m.keys.Right):
		m.sess.ShiftSelectedDate(1)
	case key.Matches(msg, m.keys.Up):
		m.sess.ShiftSelectedDate(-7)
	case key.Matches(msg, m.keys.Down):
		m.sess.ShiftSelectedDate(7)
	case key.Matches(msg, m.keys.Mark), key.Matches(msg, m.keys.Confirm):
		return m.addCycle(m.sess.SelectedDate())
	}
	return nil
}

func (m *Model) handleTodayKey(msg tea.KeyMsg) tea.Cmd {
	fields := session.NoteFields()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.noteFieldCursor = clamp(m.noteFieldCursor-1, len(fields))
		m.noteChoiceCursor = 0
	case key.Matches(msg, m.keys.Down):
		m.noteFieldCursor = clamp(m.noteFieldCursor+1, len(fields))
		m.noteChoiceCursor = 0
	case key.Matches(msg, m.keys.Left):
		choices := session.NoteChoices(fields[m.noteFieldCursor])
		m.noteChoiceCursor = clamp(m.noteChoiceCursor-1, len(choices))
	case key.Matches(msg, m.keys.Right):
		choices := session.NoteChoices(fields[m.noteFieldCursor])
		m.noteChoiceCursor = clamp(m.noteChoiceCursor+1, len(choices))
	case key.Matches(msg, m.keys.Mark):
		return m.addCycle(m.now())
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Select):
		field := fields[m.noteFieldCursor]
		choices := session.NoteChoices(field)
		return m.saveNote(field, choices[m.noteChoiceCursor].Value)
	}
	return nil
}

func (m *Model) handlePartnerKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Confirm) {
		if m.partnerInput.Value() == "" {
			return nil
		}
		m.partnerInput.Reset()
		// 連携機能は未提供
		return m.showToast(toastInfo, "パートナー連携は準備中です")
	}
	var cmd tea.Cmd
	m.partnerInput, cmd = m.partnerInput.Update(msg)
	return cmd
}

func (m *Model) switchTab(delta int) tea.Cmd {
	n := len(session.AllTabs)
	next := session.Tab((int(m.sess.Tab()) + delta + n) % n)
	return m.selectTab(next)
}

func (m *Model) selectTab(t session.Tab) tea.Cmd {
	if err := m.sess.SelectTab(t); err != nil {
		m.logger.Warn("タブの切り替えに失敗しました", slog.String("error", err.Error()))
		return nil
	}
	if t == session.TabPartner {
		m.partnerInput.Focus()
	} else {
		m.partnerInput.Blur()
	}
	if t == session.TabProfile || t == session.TabPartner {
		return m.loadProfile()
	}
	return nil
}

// showToast は通知を表示し、一定時間後に消す。
func (m *Model) showToast(kind toastKind, text string) tea.Cmd {
	m.toast = text
	m.toastKind = kind
	m.toastGen++
	gen := m.toastGen
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{gen: gen}
	})
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
