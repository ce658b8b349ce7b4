// Package main starts the canvas HTTP service process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	canvascmd "github.com/GusEh06/pixel-battle-lite/internal/cmd/canvas"
	"github.com/GusEh06/pixel-battle-lite/internal/platform/config"
)

func main() {
	cfg, err := canvascmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[CANVAS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := canvascmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
