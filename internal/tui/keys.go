package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Confirm key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Mark    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "上へ")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "下へ")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "前へ")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "次へ")),
		Select:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "選択")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "決定")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "次のタブ")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "前のタブ")),
		Mark:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "生理開始を記録")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "終了")),
	}
}

// ShortHelp はフッターに表示するキー一覧。
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Confirm, k.NextTab, k.Mark, k.Quit}
}

// FullHelp は help.Model の全表示用。
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.Confirm, k.Mark},
		{k.NextTab, k.PrevTab, k.Quit},
	}
}
