package session

import (
	"encoding/json"

	"github.com/gowvp/sense/internal/core/annotation"
)

// Stage 会话阶段，严格线性推进
type Stage string

const (
	StageInitial    Stage = "initial"
	StageUploading  Stage = "uploading"
	StageDrawing    Stage = "drawing"
	StageProcessing Stage = "processing"
	StageFinished   Stage = "finished"
	StageError      Stage = "error"
)

// JobSession 一个视频的处理生命周期，同一时刻最多一个
// client_id 由客户端生成，实时通道按它路由事件，全局唯一
type JobSession struct {
	VideoID       string               `json:"video_id"`
	ClientID      string               `json:"client_id"`
	Stage         Stage                `json:"stage"`
	Progress      int                  `json:"progress"`
	FirstFrameURL string               `json:"first_frame_url"`
	StreamURL     string               `json:"stream_url,omitempty"`
	DownloadURL   string               `json:"download_url,omitempty"`
	Counts        json.RawMessage      `json:"counts,omitempty"`
	ReportURL     string               `json:"report_url,omitempty"`
	Message       string               `json:"message,omitempty"` // 最近一次错误提示
	Snapshot      *annotation.Snapshot `json:"-"`
}

// Event 推送给操作端的实时事件，与远端通道协议同构
type Event struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}
