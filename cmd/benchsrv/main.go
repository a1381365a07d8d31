package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/ipcbench/internal/logging"
	"github.com/danmuck/ipcbench/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a toml config file")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := loadServerConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchsrv: %v\n", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchsrv: %v\n", err)
		os.Exit(1)
	}
	if err := srv.Listen(); err != nil {
		fmt.Fprintf(os.Stderr, "benchsrv: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "benchsrv: %v\n", err)
		os.Exit(1)
	}
}
