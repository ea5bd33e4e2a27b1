// Package main is the entry point for the lockflow CLI
package main

import (
	"github.com/jrschumacher/lockflow/cmd"
	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	cmd.Execute(cfg)
}
