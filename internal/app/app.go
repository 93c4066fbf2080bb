// Package app 组装依赖并拉起 HTTP 服务
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gowvp/sense/internal/conf"
)

// Run 启动服务，返回优雅停止函数
func Run(bc *conf.Bootstrap) (func(), error) {
	handler, cleanup, err := wireApp(bc)
	if err != nil {
		return nil, err
	}

	svr := &http.Server{
		Addr:              fmt.Sprintf(":%d", bc.Server.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http server start", "addr", svr.Addr)
		if err := svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server exit", "err", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svr.Shutdown(ctx); err != nil {
			slog.Error("http server shutdown", "err", err)
		}
		cleanup()
	}, nil
}
