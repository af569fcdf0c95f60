package session

import (
	"fmt"
	"time"

	"github.com/hitoshi/cycle/internal/model"
)

// Tab は選択中のタブを返す。
func (s *Session) Tab() Tab { return s.tab }

// SelectTab はタブを切り替える。main画面でのみ有効。
func (s *Session) SelectTab(t Tab) error {
	if err := s.require(ScreenMain); err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTab, t)
	}
	s.tab = t
	return nil
}

// SelectedDate はカレンダーで選択中の日付を返す。
func (s *Session) SelectedDate() time.Time { return s.selectedDate }

// ShiftSelectedDate は選択中の日付をdays日ずらす。
func (s *Session) ShiftSelectedDate(days int) {
	s.selectedDate = s.selectedDate.AddDate(0, 0, days)
}

// SetSelectedDate は選択中の日付を設定する。時刻部分は切り捨てる。
func (s *Session) SetSelectedDate(d time.Time) {
	s.selectedDate = today(d)
}

// Cycles は周期履歴を返す。
func (s *Session) Cycles() []CycleEntry {
	return append([]CycleEntry(nil), s.cycles...)
}

// ReplaceCycles は周期履歴を丸ごと置き換える。
func (s *Session) ReplaceCycles(cycles []CycleEntry) {
	s.cycles = append([]CycleEntry(nil), cycles...)
}

// Articles は表示する記事を返す。
func (s *Session) Articles() []Article {
	return append([]Article(nil), s.articles...)
}

// ReplaceArticles は記事を丸ごと置き換える。空の場合は固定の3件を表示する。
func (s *Session) ReplaceArticles(articles []Article) {
	if len(articles) == 0 {
		s.articles = FallbackArticles()
		return
	}
	s.articles = append([]Article(nil), articles...)
}

// CurrentMood は表示中の気分を返す。未記録なら空文字。
func (s *Session) CurrentMood() string { return s.currentMood }

// Profile はサーバーから取得したプロフィールを返す。未取得ならnil。
func (s *Session) Profile() *Profile { return s.profile }

// SetProfile はサーバーから取得したプロフィールを保持する。
func (s *Session) SetProfile(p Profile) {
	p.Goals = append([]model.GoalTag(nil), p.Goals...)
	s.profile = &p
}

// CycleRequest は選択中の日付を開始日とする周期記録の内容を返す。
func (s *Session) CycleRequest() (userID int64, startDate string, err error) {
	return s.CycleRequestOn(s.selectedDate)
}

// CycleRequestOn は指定日を開始日とする周期記録の内容を返す。選択中の日付は変えない。
func (s *Session) CycleRequestOn(day time.Time) (userID int64, startDate string, err error) {
	userID, err = s.RequireUser()
	if err != nil {
		return 0, "", err
	}
	if day.IsZero() {
		return 0, "", fmt.Errorf("session: no date selected")
	}
	return userID, today(day).Format(model.DateLayout), nil
}

// NoteRequest は今日の体調記録の内容を返す。
func (s *Session) NoteRequest(field model.NoteField, now time.Time) (userID int64, noteDate string, err error) {
	userID, err = s.RequireUser()
	if err != nil {
		return 0, "", err
	}
	if !field.Valid() {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidNoteField, field)
	}
	return userID, now.Format(model.DateLayout), nil
}

// NoteSaved は体調記録の保存成功を反映する。気分の場合のみ表示中の気分を更新する。
func (s *Session) NoteSaved(field model.NoteField, value string) {
	if field == model.NoteFieldMood {
		s.currentMood = value
	}
}
