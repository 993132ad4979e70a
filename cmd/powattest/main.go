package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"powattest/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := app.Execute(ctx); err != nil {
		log.Fatalf("powattest: %v", err)
	}
}
