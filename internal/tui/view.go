package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hitoshi/cycle/internal/model"
	"github.com/hitoshi/cycle/internal/session"
)

var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorSubtext = lipgloss.Color("#7f849c")
	colorAccent  = lipgloss.Color("#f5c2e7")
	colorBlue    = lipgloss.Color("#89b4fa")
	colorGreen   = lipgloss.Color("#a6e3a1")
	colorRed     = lipgloss.Color("#f38ba8")
	colorSurface = lipgloss.Color("#313244")

	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	textStyle     = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorSubtext)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	activeTab     = lipgloss.NewStyle().Foreground(colorAccent).Background(colorSurface).Bold(true).Padding(0, 1)
	inactiveTab   = lipgloss.NewStyle().Foreground(colorSubtext).Padding(0, 1)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface).Padding(0, 1)
)

// 周期日と周期フェーズは固定の表示値。
const (
	placeholderCycleDay = 15
	placeholderPhase    = "卵胞期"
)

// View は現在の画面を描画する。
func (m *Model) View() string {
	var body string
	switch m.sess.Screen() {
	case session.ScreenSplash:
		body = m.viewSplash()
	case session.ScreenMenu:
		body = m.viewMenu()
	case session.ScreenBirthdate:
		body = m.viewBirthdate()
	case session.ScreenGoals:
		body = m.viewGoals()
	case session.ScreenMain:
		body = m.viewMain()
	}

	parts := []string{body}
	if t := m.viewToast(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m *Model) viewSplash() string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Cycle"),
		mutedStyle.Render("あなたのリズムに寄り添う周期記録"),
	))
}

func (m *Model) viewMenu() string {
	labels := map[model.UsageMode]string{
		model.UsageModeSelf:    "自分の周期を記録する",
		model.UsageModePartner: "パートナーの周期を見守る",
	}
	lines := []string{titleStyle.Render("使い方を選んでください"), ""}
	for i, mode := range modeOptions {
		lines = append(lines, m.cursorLine(i == m.modeCursor, false, labels[mode]))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewBirthdate() string {
	years := session.BirthYearOptions()
	selected, ok := m.sess.BirthYear()

	lines := []string{titleStyle.Render("生まれ年を選んでください"), ""}
	// カーソル周辺の数行だけを表示する
	const window = 7
	start := m.yearCursor - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(years) {
		end = len(years)
		start = max(0, end-window)
	}
	for i := start; i < end; i++ {
		lines = append(lines, m.cursorLine(i == m.yearCursor, ok && years[i] == selected, fmt.Sprintf("%d年", years[i])))
	}
	lines = append(lines, "")
	if ok {
		lines = append(lines, textStyle.Render(fmt.Sprintf("選択中: %d年  enterで次へ", selected)))
	} else {
		lines = append(lines, mutedStyle.Render("spaceで選択してください"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewGoals() string {
	lines := []string{titleStyle.Render("利用目的を選んでください（複数可）"), ""}
	for i, opt := range session.GoalOptions() {
		mark := "[ ] "
		if m.sess.HasGoal(opt.Tag) {
			mark = "[x] "
		}
		lines = append(lines, m.cursorLine(i == m.goalCursor, m.sess.HasGoal(opt.Tag), mark+opt.Label))
	}
	lines = append(lines, "")
	switch {
	case m.creating:
		lines = append(lines, mutedStyle.Render("プロフィールを作成しています..."))
	case m.sess.CanStart():
		lines = append(lines, textStyle.Render("enterではじめる"))
	default:
		lines = append(lines, mutedStyle.Render("1つ以上選択してください"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) cursorLine(cursor, selected bool, label string) string {
	prefix := "  "
	if cursor {
		prefix = cursorStyle.Render("> ")
	}
	style := textStyle
	if selected {
		style = selectedStyle
	}
	return prefix + style.Render(label)
}

func (m *Model) viewMain() string {
	var content string
	switch m.sess.Tab() {
	case session.TabCalendar:
		content = m.viewCalendar()
	case session.TabToday:
		content = m.viewToday()
	case session.TabArticles:
		content = m.viewArticles()
	case session.TabMessages:
		content = mutedStyle.Render("メッセージはまだありません。")
	case session.TabPartner:
		content = m.viewPartner()
	case session.TabProfile:
		content = m.viewProfile()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), "", content)
}

func (m *Model) viewTabs() string {
	tabs := make([]string, 0, len(session.AllTabs))
	for i, t := range session.AllTabs {
		label := fmt.Sprintf("%d %s", i+1, t.Label())
		if t == m.sess.Tab() {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, inactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) viewCalendar() string {
	sel := m.sess.SelectedDate()
	starts := make(map[string]bool)
	for _, c := range m.sess.Cycles() {
		starts[c.StartDate] = true
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(sel.Format("2006年1月")) + "\n")
	b.WriteString(mutedStyle.Render(" 日  月  火  水  木  金  土") + "\n")

	first := time.Date(sel.Year(), sel.Month(), 1, 0, 0, 0, 0, sel.Location())
	b.WriteString(strings.Repeat("    ", int(first.Weekday())))
	for d := first; d.Month() == sel.Month(); d = d.AddDate(0, 0, 1) {
		cell := fmt.Sprintf("%3d ", d.Day())
		switch {
		case d.Day() == sel.Day():
			cell = cursorStyle.Render(fmt.Sprintf("[%2d]", d.Day()))
		case starts[d.Format(model.DateLayout)]:
			cell = lipgloss.NewStyle().Foreground(colorRed).Render(fmt.Sprintf("%3d*", d.Day()))
		}
		b.WriteString(cell)
		if d.Weekday() == time.Saturday {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(fmt.Sprintf("周期 %d日目・%s", placeholderCycleDay, placeholderPhase)) + "\n\n")
	b.WriteString(m.viewHistory())
	return b.String()
}

func (m *Model) viewHistory() string {
	cycles := m.sess.Cycles()
	if len(cycles) == 0 {
		return mutedStyle.Render("まだ記録がありません。mで選択中の日を生理開始日として記録します。")
	}
	lines := []string{titleStyle.Render("周期の履歴")}
	for _, c := range cycles {
		length := "記録中"
		if c.CycleLength != nil {
			length = fmt.Sprintf("%d日", *c.CycleLength)
		}
		lines = append(lines, textStyle.Render(fmt.Sprintf("%s  %s", c.StartDate, length)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewToday() string {
	lines := []string{titleStyle.Render(m.now().Format("1月2日") + "の体調"), ""}
	mood := m.sess.CurrentMood()
	if mood == "" {
		lines = append(lines, mutedStyle.Render("今日の気分: 未記録"))
	} else {
		lines = append(lines, textStyle.Render("今日の気分: "+session.NoteValueLabel(model.NoteFieldMood, mood)))
	}
	lines = append(lines, "")

	for i, f := range session.NoteFields() {
		choices := session.NoteChoices(f)
		cells := make([]string, 0, len(choices))
		for j, c := range choices {
			if i == m.noteFieldCursor && j == m.noteChoiceCursor {
				cells = append(cells, cursorStyle.Render("["+c.Label+"]"))
			} else {
				cells = append(cells, textStyle.Render(" "+c.Label+" "))
			}
		}
		prefix := "  "
		if i == m.noteFieldCursor {
			prefix = cursorStyle.Render("> ")
		}
		lines = append(lines, prefix+mutedStyle.Render(session.NoteFieldLabel(f)+": ")+strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewArticles() string {
	articles := m.sess.Articles()
	if len(articles) == 0 {
		return mutedStyle.Render("記事を読み込んでいます...")
	}
	lines := []string{titleStyle.Render("おすすめの記事"), ""}
	for _, a := range articles {
		lines = append(lines,
			textStyle.Render(a.Title),
			mutedStyle.Render(fmt.Sprintf("  %s・%s", a.Category, a.ReadingTime)),
		)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewPartner() string {
	code := "取得中..."
	if p := m.sess.Profile(); p != nil {
		code = p.PartnerCode
	}
	return strings.Join([]string{
		titleStyle.Render("パートナー連携"),
		"",
		textStyle.Render("あなたの招待コード: " + code),
		"",
		m.partnerInput.View(),
	}, "\n")
}

func (m *Model) viewProfile() string {
	p := m.sess.Profile()
	if p == nil {
		return mutedStyle.Render("プロフィールを読み込んでいます...")
	}
	goals := make([]string, 0, len(p.Goals))
	for _, g := range p.Goals {
		goals = append(goals, session.GoalLabel(g))
	}
	mode := "自分で記録"
	if p.UsageMode == model.UsageModePartner {
		mode = "パートナーとして見守る"
	}
	return strings.Join([]string{
		titleStyle.Render("プロフィール"),
		"",
		textStyle.Render(fmt.Sprintf("生まれ年: %d年", p.BirthYear)),
		textStyle.Render("利用形態: " + mode),
		textStyle.Render("目的: " + strings.Join(goals, "、")),
	}, "\n")
}

func (m *Model) viewToast() string {
	if m.toast == "" {
		return ""
	}
	color := colorBlue
	switch m.toastKind {
	case toastSuccess:
		color = colorGreen
	case toastError:
		color = colorRed
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(m.toast)
}
