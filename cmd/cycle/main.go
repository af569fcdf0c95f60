// Command cycle は周期記録APIサーバー・ワーカー・端末クライアントを起動する。
//
//	cycle [serve|worker|migrate|healthcheck|client]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/cycle/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
