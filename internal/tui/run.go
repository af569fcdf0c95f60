package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run は端末クライアントを起動し、終了するまでブロックする。
// ctx がキャンセルされた場合は画面を閉じて nil を返す。
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run terminal client: %w", err)
	}
	return nil
}
