package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
