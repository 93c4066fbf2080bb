package main

import (
	"context"
	"expvar"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gowvp/sense/internal/app"
	"github.com/gowvp/sense/internal/conf"
	"github.com/ixugo/goddd/pkg/system"
)

// 编译期注入
var (
	buildVersion = "dev"
	gitBranch    = ""
	gitHash      = ""
)

func main() {
	var confPath string
	flag.StringVar(&confPath, "conf", filepath.Join(system.Getwd(), "configs", "config.toml"), "配置文件路径")
	flag.Parse()

	cfg, err := conf.SetupConfig(confPath)
	if err != nil {
		slog.Error("load config", "path", confPath, "err", err)
		os.Exit(1)
	}
	cfg.BuildVersion = buildVersion

	setupLog(cfg.Debug)
	expvar.NewString("git_branch").Set(gitBranch)
	expvar.NewString("git_hash").Set(gitHash)

	stop, err := app.Run(cfg)
	if err != nil {
		slog.Error("server start", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()
	slog.Info("shutting down")
	stop()
}

func setupLog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}
