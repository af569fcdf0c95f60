package session

// Screen はオンボーディングの段階、またはメイン画面を表す。
type Screen int

const (
	ScreenSplash Screen = iota
	ScreenMenu
	ScreenBirthdate
	ScreenGoals
	ScreenMain
)

// String は画面名を返す。
func (s Screen) String() string {
	switch s {
	case ScreenSplash:
		return "splash"
	case ScreenMenu:
		return "menu"
	case ScreenBirthdate:
		return "birthdate"
	case ScreenGoals:
		return "goals"
	case ScreenMain:
		return "main"
	}
	return "unknown"
}

// Tab はメイン画面のタブを表す。
type Tab int

const (
	TabCalendar Tab = iota
	TabToday
	TabArticles
	TabMessages
	TabPartner
	TabProfile
)

// AllTabs はタブバーの表示順に並べた全タブ。
var AllTabs = []Tab{TabCalendar, TabToday, TabArticles, TabMessages, TabPartner, TabProfile}

// String はタブ名を返す。
func (t Tab) String() string {
	switch t {
	case TabCalendar:
		return "calendar"
	case TabToday:
		return "today"
	case TabArticles:
		return "articles"
	case TabMessages:
		return "messages"
	case TabPartner:
		return "partner"
	case TabProfile:
		return "profile"
	}
	return "unknown"
}

// Label はタブバーに表示する名前を返す。
func (t Tab) Label() string {
	switch t {
	case TabCalendar:
		return "カレンダー"
	case TabToday:
		return "今日"
	case TabArticles:
		return "記事"
	case TabMessages:
		return "メッセージ"
	case TabPartner:
		return "パートナー"
	case TabProfile:
		return "プロフィール"
	}
	return "?"
}

// Valid は定義済みのタブかどうかを返す。
func (t Tab) Valid() bool {
	return t >= TabCalendar && t <= TabProfile
}
