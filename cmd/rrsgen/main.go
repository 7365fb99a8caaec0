package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KatjaLuckLab/DMI-predictor/cmd/rrsgen/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
