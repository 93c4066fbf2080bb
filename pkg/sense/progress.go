package sense

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventType 实时通道的事件种类
type EventType string

const (
	EventProgress EventType = "progress"
	EventResults  EventType = "results"
)

// Event 进度通道的带标签事件
type Event struct {
	Type     EventType
	Progress float64     // type == progress 时有效
	Results  *JobResults // type == results 时有效
}

// JobResults 终态结果，每个会话最多一条
type JobResults struct {
	Counts    json.RawMessage `json:"counts"`     // 计数结果，按远端结构透传
	ReportURL string          `json:"report_url"` // 报表下载地址
}

// EventStream 会话级进度通道，results 事件后不再有任何事件
type EventStream interface {
	// Events 事件流，通道关闭即结束
	Events() <-chan Event
	// Err 通道非正常结束（未收到 results 且非主动 Close）时非空
	Err() error
	// Close 幂等关闭
	Close() error
}

// Stream gorilla/websocket 实现的进度通道
type Stream struct {
	conn      *websocket.Conn
	events    chan Event
	closeOnce sync.Once
	closed    chan struct{}

	mu  sync.Mutex
	err error
}

var _ EventStream = (*Stream)(nil)

// DialProgress 按 client_id 打开会话级实时通道，只消费服务端推送
func (e *Engine) DialProgress(ctx context.Context, clientID string) (*Stream, error) {
	if clientID == "" {
		return nil, fmt.Errorf("sense: client_id is required")
	}
	u, err := url.Parse(e.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("sense: bad pipeline url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/progress/" + clientID

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("sense: dial progress channel failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	s := Stream{
		conn:   conn,
		events: make(chan Event, 8),
		closed: make(chan struct{}),
	}
	go s.readLoop(clientID)
	return &s, nil
}

// readLoop 解码服务端 JSON 消息，未识别的标签按可恢复空操作处理
func (s *Stream) readLoop(clientID string) {
	defer close(s.events)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
				// 主动关闭，不算错误
			default:
				s.setErr(fmt.Errorf("sense: progress channel closed: %w", err))
			}
			return
		}

		var msg struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("progress message decode failed", "client_id", clientID, "err", err)
			continue
		}

		switch EventType(msg.Type) {
		case EventProgress:
			var v float64
			if err := json.Unmarshal(msg.Value, &v); err != nil {
				slog.Warn("progress value decode failed", "client_id", clientID, "err", err)
				continue
			}
			s.emit(Event{Type: EventProgress, Progress: v})
		case EventResults:
			var v JobResults
			if err := json.Unmarshal(msg.Value, &v); err != nil {
				s.setErr(fmt.Errorf("sense: results decode failed: %w", err))
				return
			}
			s.emit(Event{Type: EventResults, Results: &v})
		default:
			slog.Debug("unknown progress event, ignored", "client_id", clientID, "type", msg.Type)
		}
	}
}

func (s *Stream) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// Events implements [EventStream].
func (s *Stream) Events() <-chan Event { return s.events }

// Err implements [EventStream].
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func closeDeadline() time.Time { return time.Now().Add(time.Second) }

// Close implements [EventStream].
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), closeDeadline())
		_ = s.conn.Close()
	})
	return nil
}
