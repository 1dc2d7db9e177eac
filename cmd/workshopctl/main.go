package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"workshop-backend/internal/console"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load(".env")

	fs := pflag.NewFlagSet("workshopctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	server := fs.String("server", envOr("WORKSHOP_API_URL", "http://localhost:8080/api"), "workshop API base URL")
	adminKey := fs.String("admin-key", os.Getenv("ADMIN_API_KEY"), "value sent as X-Admin-Key")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := console.New(console.NewClient(*server, *adminKey), os.Stdin, os.Stdout, os.Stderr)
	code := c.Run(ctx, fs.Args())
	stop()
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
