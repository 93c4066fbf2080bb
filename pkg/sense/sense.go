// Package sense 计数流水线（SenseVision 分析服务）HTTP + WebSocket 客户端
package sense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Config struct {
	URL string // 形如 http://127.0.0.1:8000
}

type Engine struct {
	cfg Config
	cli *http.Client
}

func NewEngine() Engine {
	return Engine{
		cli: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        30,
				MaxIdleConnsPerHost: 30,
				MaxConnsPerHost:     100,
			},
		},
	}
}

func (e Engine) SetConfig(cfg Config) Engine {
	e.cfg = cfg
	return e
}

// post 发送 POST 请求到流水线 API
func (e *Engine) post(ctx context.Context, path string, data any, out any) error {
	body, _ := json.Marshal(data)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sense: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, out)
}

// put 发送 PUT 请求到流水线 API
func (e *Engine) put(ctx context.Context, path string, data any, out any) error {
	body, _ := json.Marshal(data)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.cfg.URL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sense: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, out)
}

// get 发送 GET 请求到流水线 API
func (e *Engine) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.URL+path, nil)
	if err != nil {
		return fmt.Errorf("sense: create request failed: %w", err)
	}
	return e.do(req, out)
}

// delete 发送 DELETE 请求到流水线 API
func (e *Engine) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, e.cfg.URL+path, nil)
	if err != nil {
		return fmt.Errorf("sense: create request failed: %w", err)
	}
	return e.do(req, nil)
}

func (e *Engine) do(req *http.Request, out any) error {
	resp, err := e.cli.Do(req)
	if err != nil {
		return fmt.Errorf("sense: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sense: unexpected status code %d: %s", resp.StatusCode, string(body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
