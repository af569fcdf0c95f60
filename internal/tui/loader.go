package tui

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hitoshi/cycle/internal/apiclient"
	"github.com/hitoshi/cycle/internal/kvstore"
	"github.com/hitoshi/cycle/internal/model"
	"github.com/hitoshi/cycle/internal/session"
)

type splashTickMsg struct{ gen int }

type toastExpiredMsg struct{ gen int }

type userCreatedMsg struct {
	userID int64
	err    error
}

type cyclesLoadedMsg struct {
	cycles []apiclient.Cycle
	err    error
}

type articlesLoadedMsg struct {
	articles []apiclient.Article
	err      error
}

type cycleAddedMsg struct {
	startDate string
	err       error
}

type noteSavedMsg struct {
	field model.NoteField
	value string
	err   error
}

type profileLoadedMsg struct {
	profile *apiclient.Profile
	err     error
}

// callCtx は1回のAPI呼び出し用のcontextを返す。Modelの終了でキャンセルされる。
func (m *Model) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.callTimeout)
}

// startProfileCreation はgoals画面からプロフィール作成を開始する。
// 目的が未選択、または作成中の場合は何もしない。
func (m *Model) startProfileCreation() tea.Cmd {
	if m.creating || !m.sess.CanStart() {
		return nil
	}
	draft, err := m.sess.ProfileRequest()
	if err != nil {
		m.logger.Warn("プロフィール作成の準備に失敗しました", slog.String("error", err.Error()))
		return nil
	}
	m.creating = true

	req := apiclient.CreateUserRequest{
		BirthYear: draft.BirthYear,
		UsageMode: string(draft.UsageMode),
		Goals:     make([]string, 0, len(draft.Goals)),
	}
	for _, g := range draft.Goals {
		req.Goals = append(req.Goals, string(g))
	}

	api := m.api
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		id, err := api.CreateUser(ctx, req)
		return userCreatedMsg{userID: id, err: err}
	}
}

func (m *Model) onUserCreated(msg userCreatedMsg) tea.Cmd {
	m.creating = false
	if msg.err != nil {
		m.logger.Error("プロフィールの作成に失敗しました", slog.String("error", msg.err.Error()))
		return m.showToast(toastError, errorText("プロフィールの作成に失敗しました", msg.err))
	}
	if err := m.sess.CompleteProfile(msg.userID); err != nil {
		m.logger.Error("セッションへのuser_id反映に失敗しました",
			slog.Int64("user_id", msg.userID), slog.String("error", err.Error()))
		return m.showToast(toastError, "プロフィールの作成に失敗しました")
	}
	if m.store != nil {
		if err := m.store.Set(kvstore.UserIDKey, strconv.FormatInt(msg.userID, 10)); err != nil {
			// 保存できなくても今回のセッションは継続する
			m.logger.Error("user_idの保存に失敗しました",
				slog.Int64("user_id", msg.userID), slog.String("error", err.Error()))
		}
	}
	m.logger.Info("プロフィールを作成しました", slog.Int64("user_id", msg.userID))

	return tea.Batch(
		m.showToast(toastSuccess, "プロフィールを作成しました"),
		m.enterMain(),
	)
}

// enterMain はmain画面に入ったときの読み込みを開始する。
// 周期履歴はuser_idの確定時に、記事は画面に入ったときに1回だけ取得する。
func (m *Model) enterMain() tea.Cmd {
	cmds := []tea.Cmd{m.loadCycles()}
	if !m.articlesRequested {
		m.articlesRequested = true
		cmds = append(cmds, m.loadArticles())
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadCycles() tea.Cmd {
	userID, err := m.sess.RequireUser()
	if err != nil {
		return nil
	}
	api := m.api
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		cycles, err := api.GetCycles(ctx, userID)
		return cyclesLoadedMsg{cycles: cycles, err: err}
	}
}

// onCyclesLoaded は取得結果で周期履歴を置き換える。
// 応答時点の画面やタブには依存しない。
func (m *Model) onCyclesLoaded(msg cyclesLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error("周期履歴の取得に失敗しました", slog.String("error", msg.err.Error()))
		return m.showToast(toastError, errorText("周期履歴の取得に失敗しました", msg.err))
	}
	entries := make([]session.CycleEntry, 0, len(msg.cycles))
	for _, c := range msg.cycles {
		entries = append(entries, session.CycleEntry{StartDate: c.StartDate, CycleLength: c.CycleLength})
	}
	m.sess.ReplaceCycles(entries)
	return nil
}

func (m *Model) loadArticles() tea.Cmd {
	api := m.api
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		articles, err := api.GetArticles(ctx)
		return articlesLoadedMsg{articles: articles, err: err}
	}
}

// onArticlesLoaded は取得結果で記事一覧を置き換える。失敗時は固定の記事を表示する。
func (m *Model) onArticlesLoaded(msg articlesLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error("記事の取得に失敗しました", slog.String("error", msg.err.Error()))
		m.sess.ReplaceArticles(nil)
		return m.showToast(toastError, errorText("記事の取得に失敗しました", msg.err))
	}
	articles := make([]session.Article, 0, len(msg.articles))
	for _, a := range msg.articles {
		articles = append(articles, session.Article{Title: a.Title, Category: a.Category, ReadingTime: a.ReadingTime})
	}
	m.sess.ReplaceArticles(articles)
	return nil
}

// addCycle は指定日を周期開始日として記録する。
func (m *Model) addCycle(day time.Time) tea.Cmd {
	userID, startDate, err := m.sess.CycleRequestOn(day)
	if err != nil {
		m.logger.Warn("周期開始日を記録できません", slog.String("error", err.Error()))
		return nil
	}
	api := m.api
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		err := api.AddCycle(ctx, userID, startDate)
		return cycleAddedMsg{startDate: startDate, err: err}
	}
}

// onCycleAdded は記録の成功時に周期履歴を1回だけ再取得する。ローカルには追加しない。
func (m *Model) onCycleAdded(msg cycleAddedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error("周期開始日の記録に失敗しました",
			slog.String("start_date", msg.startDate), slog.String("error", msg.err.Error()))
		return m.showToast(toastError, errorText("記録に失敗しました", msg.err))
	}
	return tea.Batch(
		m.showToast(toastSuccess, msg.startDate+" を生理開始日として記録しました"),
		m.loadCycles(),
	)
}

// saveNote は今日の体調を1項目だけ保存する。
func (m *Model) saveNote(field model.NoteField, value string) tea.Cmd {
	userID, noteDate, err := m.sess.NoteRequest(field, m.now())
	if err != nil {
		m.logger.Warn("体調を記録できません", slog.String("error", err.Error()))
		return nil
	}
	req := apiclient.DailyNoteRequest{UserID: userID, NoteDate: noteDate}
	v := value
	switch field {
	case model.NoteFieldMood:
		req.Mood = &v
	case model.NoteFieldEnergyLevel:
		req.EnergyLevel = &v
	case model.NoteFieldSleepQuality:
		req.SleepQuality = &v
	}

	api := m.api
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		err := api.SaveDailyNote(ctx, req)
		return noteSavedMsg{field: field, value: value, err: err}
	}
}

func (m *Model) onNoteSaved(msg noteSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error("体調の記録に失敗しました",
			slog.String("field", string(msg.field)), slog.String("error", msg.err.Error()))
		return m.showToast(toastError, errorText("記録に失敗しました", msg.err))
	}
	m.sess.NoteSaved(msg.field, msg.value)
	return m.showToast(toastSuccess, session.NoteFieldLabel(msg.field)+"を記録しました")
}

// loadProfile はプロフィールを未取得の場合だけ取得する。失敗した場合は次に開いたときに再試行する。
func (m *Model) loadProfile() tea.Cmd {
	if m.profileRequested || m.sess.Profile() != nil {
		return nil
	}
	userID, err := m.sess.RequireUser()
	if err != nil {
		return nil
	}
	m.profileRequested = true

	api := m.api
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		p, err := api.GetUser(ctx, userID)
		return profileLoadedMsg{profile: p, err: err}
	}
}

func (m *Model) onProfileLoaded(msg profileLoadedMsg) tea.Cmd {
	m.profileRequested = false
	if msg.err != nil {
		m.logger.Error("プロフィールの取得に失敗しました", slog.String("error", msg.err.Error()))
		return m.showToast(toastError, errorText("プロフィールの取得に失敗しました", msg.err))
	}
	if msg.profile == nil {
		return nil
	}
	p := session.Profile{
		BirthYear:   msg.profile.BirthYear,
		UsageMode:   model.UsageMode(msg.profile.UsageMode),
		PartnerCode: msg.profile.PartnerCode,
	}
	for _, g := range msg.profile.Goals {
		p.Goals = append(p.Goals, model.GoalTag(g))
	}
	m.sess.SetProfile(p)
	return nil
}

// errorText はサーバーのエラーメッセージがあればそれを添えた通知文を返す。
func errorText(prefix string, err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return prefix + ": " + apiErr.Message
	}
	return prefix
}
