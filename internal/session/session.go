// Package session は端末クライアントのセッション状態と、
// オンボーディング（splash → menu → birthdate → goals → main）の状態遷移を提供する。
//
// 遷移は前進のみで、ガード条件を満たさない操作はエラーを返し状態を変更しない。
// Session は単一の所有者（アプリケーションのコントローラー）からのみ操作する前提で、ロックを持たない。
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/cycle/internal/model"
)

// 遷移ガードのエラー。
var (
	ErrInvalidTransition = errors.New("session: transition not allowed from current screen")
	ErrInvalidMode       = errors.New("session: invalid usage mode")
	ErrInvalidBirthYear  = errors.New("session: birth year out of range")
	ErrBirthYearRequired = errors.New("session: birth year not selected")
	ErrInvalidGoal       = errors.New("session: unknown goal")
	ErrNoGoals           = errors.New("session: no goal selected")
	ErrInvalidUserID     = errors.New("session: invalid user id")
	ErrUserIDAlreadySet  = errors.New("session: user id already set")
	ErrNoUser            = errors.New("session: no user")
	ErrInvalidTab        = errors.New("session: unknown tab")
	ErrInvalidNoteField  = errors.New("session: unknown note field")
)

// ProfileDraft はプロフィール作成リクエストの内容。
type ProfileDraft struct {
	BirthYear int
	UsageMode model.UsageMode
	Goals     []model.GoalTag
}

// CycleEntry は周期履歴の1件。CycleLength は未確定ならnil。
type CycleEntry struct {
	StartDate   string
	CycleLength *int
}

// Profile はプロフィールタブに表示するサーバー側のプロフィール。
type Profile struct {
	BirthYear   int
	UsageMode   model.UsageMode
	PartnerCode string
	Goals       []model.GoalTag
}

// Session は1回の起動におけるクライアントの状態。
type Session struct {
	screen    Screen
	mode      model.UsageMode
	birthYear *int
	goals     []model.GoalTag
	userID    *int64

	tab          Tab
	selectedDate time.Time
	cycles       []CycleEntry
	articles     []Article
	currentMood  string
	profile      *Profile
}

// New はsplash画面から始まるSessionを生成する。
func New() *Session {
	return &Session{
		screen:       ScreenSplash,
		tab:          TabCalendar,
		selectedDate: today(time.Now()),
	}
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func (s *Session) require(screen Screen) error {
	if s.screen != screen {
		return fmt.Errorf("%w: at %s, need %s", ErrInvalidTransition, s.screen, screen)
	}
	return nil
}

// Screen は現在の画面を返す。
func (s *Session) Screen() Screen { return s.screen }

// Mode は選択された利用形態を返す。未選択なら空文字。
func (s *Session) Mode() model.UsageMode { return s.mode }

// BirthYear は選択された生まれ年を返す。
func (s *Session) BirthYear() (int, bool) {
	if s.birthYear == nil {
		return 0, false
	}
	return *s.birthYear, true
}

// Goals は選択された目的を選択順で返す。
func (s *Session) Goals() []model.GoalTag {
	return append([]model.GoalTag(nil), s.goals...)
}

// HasGoal は目的が選択されているかを返す。
func (s *Session) HasGoal(g model.GoalTag) bool {
	return s.goalIndex(g) >= 0
}

func (s *Session) goalIndex(g model.GoalTag) int {
	for i, t := range s.goals {
		if t == g {
			return i
		}
	}
	return -1
}

// UserID はプロフィール作成後のuser_idを返す。
func (s *Session) UserID() (int64, bool) {
	if s.userID == nil {
		return 0, false
	}
	return *s.userID, true
}

// SplashElapsed はsplashの表示時間経過でmenuへ進める。
func (s *Session) SplashElapsed() error {
	if err := s.require(ScreenSplash); err != nil {
		return err
	}
	s.screen = ScreenMenu
	return nil
}

// ChooseMode は利用形態を記録してbirthdateへ進める。
func (s *Session) ChooseMode(m model.UsageMode) error {
	if err := s.require(ScreenMenu); err != nil {
		return err
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}
	s.mode = m
	s.screen = ScreenBirthdate
	return nil
}

// SelectBirthYear は生まれ年を選択する。画面は変わらない。
func (s *Session) SelectBirthYear(year int) error {
	if err := s.require(ScreenBirthdate); err != nil {
		return err
	}
	if !model.ValidBirthYear(year) {
		return fmt.Errorf("%w: %d", ErrInvalidBirthYear, year)
	}
	s.birthYear = &year
	return nil
}

// ConfirmBirthYear は生まれ年が選択済みならgoalsへ進める。
func (s *Session) ConfirmBirthYear() error {
	if err := s.require(ScreenBirthdate); err != nil {
		return err
	}
	if s.birthYear == nil {
		return ErrBirthYearRequired
	}
	s.screen = ScreenGoals
	return nil
}

// ToggleGoal は目的の選択状態を反転する。2回呼ぶと元に戻る。
func (s *Session) ToggleGoal(g model.GoalTag) error {
	if err := s.require(ScreenGoals); err != nil {
		return err
	}
	if !g.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidGoal, g)
	}
	if i := s.goalIndex(g); i >= 0 {
		s.goals = append(s.goals[:i:i], s.goals[i+1:]...)
		return nil
	}
	s.goals = append(s.goals, g)
	return nil
}

// CanStart はgoals画面で開始操作が可能かを返す。
func (s *Session) CanStart() bool {
	return s.screen == ScreenGoals && len(s.goals) > 0
}

// ProfileRequest はプロフィール作成リクエストの内容を返す。画面は変わらない。
// 目的が1つも選択されていない場合はErrNoGoals。
func (s *Session) ProfileRequest() (ProfileDraft, error) {
	if err := s.require(ScreenGoals); err != nil {
		return ProfileDraft{}, err
	}
	if len(s.goals) == 0 {
		return ProfileDraft{}, ErrNoGoals
	}
	if s.birthYear == nil {
		return ProfileDraft{}, ErrBirthYearRequired
	}
	return ProfileDraft{
		BirthYear: *s.birthYear,
		UsageMode: s.mode,
		Goals:     s.Goals(),
	}, nil
}

// CompleteProfile はプロフィール作成の成功を反映し、mainへ進める。
// user_idは1回だけ設定でき、以後は変更できない。
func (s *Session) CompleteProfile(userID int64) error {
	if err := s.require(ScreenGoals); err != nil {
		return err
	}
	return s.enterMain(userID)
}

// Resume は保存済みのuser_idでオンボーディングを省略してmainへ進める。
func (s *Session) Resume(userID int64) error {
	if s.screen == ScreenMain {
		return fmt.Errorf("%w: already at %s", ErrInvalidTransition, s.screen)
	}
	return s.enterMain(userID)
}

func (s *Session) enterMain(userID int64) error {
	if s.userID != nil {
		return ErrUserIDAlreadySet
	}
	if userID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUserID, userID)
	}
	s.userID = &userID
	s.screen = ScreenMain
	return nil
}

// RequireUser はuser_idを返す。未設定ならErrNoUser。
func (s *Session) RequireUser() (int64, error) {
	if s.userID == nil {
		return 0, ErrNoUser
	}
	return *s.userID, nil
}
