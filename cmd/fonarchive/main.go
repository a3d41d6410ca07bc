package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, newRootCommand()); err != nil {
		stop()
		os.Exit(1)
	}
}
