package session

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/gowvp/sense/internal/core/annotation"
	"github.com/gowvp/sense/pkg/sense"
	"github.com/ixugo/goddd/pkg/reason"
)

// Core 驱动单个操作会话的状态机
//
// 并发模型：所有修改都持锁进行；异步续体（上传、提交、通道事件）
// 在派发时记录代数，应用结果前校验代数是否仍是当前代，
// 不一致则丢弃（按过期作废，而非真正取消）
type Core struct {
	mu     sync.Mutex
	epoch  uint64
	cur    JobSession
	stream sense.EventStream

	pipeline Pipeline
	rec      Recorder
	log      *slog.Logger

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

func NewCore(pipeline Pipeline, rec Recorder) *Core {
	return &Core{
		cur:      JobSession{Stage: StageInitial},
		pipeline: pipeline,
		rec:      rec,
		log:      slog.With("module", "session"),
		subs:     make(map[chan Event]struct{}),
	}
}

// Session 当前会话的副本（快照深拷贝，避免共享可变点序列）
func (c *Core) Session() JobSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.cur
	if c.cur.Snapshot != nil {
		out.Snapshot = c.cur.Snapshot.Clone()
	}
	return out
}

// Upload 上传视频并推进到标注阶段
// 仅初始状态可上传，处理中再次上传属于未定义行为，必须拒绝
func (c *Core) Upload(ctx context.Context, filename string, r io.Reader) (JobSession, error) {
	c.mu.Lock()
	if c.cur.Stage != StageInitial {
		stage := c.cur.Stage
		c.mu.Unlock()
		return JobSession{}, reason.ErrBadRequest.Withf("当前会话处于 %s 阶段，请先重置再上传", stage)
	}
	c.cur.Stage = StageUploading
	ep := c.epoch
	c.mu.Unlock()
	c.publish(Event{Type: "stage", Value: StageUploading})

	out, err := c.pipeline.UploadVideo(ctx, filename, r)

	c.mu.Lock()
	if ep != c.epoch {
		c.mu.Unlock()
		c.log.InfoContext(ctx, "upload result discarded, session reset while uploading")
		return JobSession{}, reason.ErrBadRequest.SetMsg("会话已重置，上传结果已丢弃")
	}
	if err != nil {
		c.cur.Stage = StageInitial
		c.cur.Message = "上传失败"
		c.mu.Unlock()
		c.publish(Event{Type: "stage", Value: StageInitial})
		return JobSession{}, reason.ErrServer.Withf("upload err[%s]", err.Error())
	}

	c.cur = JobSession{
		VideoID:       out.VideoID,
		ClientID:      uuid.NewString(),
		Stage:         StageDrawing,
		FirstFrameURL: out.FirstFrameURL,
		Snapshot:      annotation.NewSnapshot(),
	}
	session := c.cur
	c.mu.Unlock()

	if err := c.rec.VideoUploaded(ctx, session.VideoID, session.FirstFrameURL); err != nil {
		c.log.ErrorContext(ctx, "record uploaded video failed", "video_id", session.VideoID, "err", err)
	}
	c.publish(Event{Type: "stage", Value: StageDrawing})
	return session, nil
}

// drawingSnapshot 标注阶段才允许改动边界线
func (c *Core) drawingSnapshot() (*annotation.Snapshot, error) {
	if c.cur.Stage != StageDrawing || c.cur.Snapshot == nil {
		return nil, reason.ErrBadRequest.Withf("当前会话处于 %s 阶段，不能编辑边界线", c.cur.Stage)
	}
	return c.cur.Snapshot, nil
}

// AppendPoint 向具名边界线追加一个原始分辨率坐标点
func (c *Core) AppendPoint(name annotation.BoundaryName, p annotation.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.drawingSnapshot()
	if err != nil {
		return err
	}
	if err := s.Append(name, p); err != nil {
		return reason.ErrBadRequest.SetMsg(err.Error())
	}
	return nil
}

// ClearBoundary 清空具名边界线
func (c *Core) ClearBoundary(name annotation.BoundaryName) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.drawingSnapshot()
	if err != nil {
		return err
	}
	if err := s.Clear(name); err != nil {
		return reason.ErrBadRequest.SetMsg(err.Error())
	}
	return nil
}

// ToggleOrientation 翻转入口线 IN/OUT
func (c *Core) ToggleOrientation() (annotation.Orientation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.drawingSnapshot()
	if err != nil {
		return "", err
	}
	s.ToggleOrientation()
	return s.Orientation, nil
}

// SideLabels 入口线两侧 IN/OUT 标签锚点
func (c *Core) SideLabels() (*annotation.SideLabels, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.drawingSnapshot()
	if err != nil {
		return nil, err
	}
	labels, err := s.ComputeSideLabels()
	if err != nil {
		return nil, reason.ErrBadRequest.SetMsg(err.Error())
	}
	return labels, nil
}

// StartProcessingInput 提交处理所需的参考帧分辨率
type StartProcessingInput struct {
	Width  int `json:"width" binding:"required"`  // 参考帧原始宽度
	Height int `json:"height" binding:"required"` // 参考帧原始高度
}

// StartProcessing 校验通过后提交处理任务并打开实时通道
// 校验失败不发生任何网络请求，阶段保持不变
func (c *Core) StartProcessing(ctx context.Context, in *StartProcessingInput) (JobSession, error) {
	c.mu.Lock()
	if c.cur.Stage != StageDrawing {
		stage := c.cur.Stage
		c.mu.Unlock()
		return JobSession{}, reason.ErrBadRequest.Withf("当前会话处于 %s 阶段，不能提交处理", stage)
	}
	if !c.cur.Snapshot.IsSubmittable() {
		c.mu.Unlock()
		return JobSession{}, reason.ErrBadRequest.SetMsg("入口线与过路线都至少需要两个点")
	}

	snapshot := c.cur.Snapshot.Clone()
	videoID, clientID := c.cur.VideoID, c.cur.ClientID
	ep := c.epoch
	c.cur.Stage = StageProcessing
	c.cur.Progress = 0
	c.mu.Unlock()
	c.publish(Event{Type: "stage", Value: StageProcessing})

	// 先开通道再提交任务，避免早期进度事件丢失
	stream, err := c.pipeline.DialProgress(ctx, clientID)
	if err != nil {
		c.rollbackToDrawing(ep, "实时通道建立失败")
		return JobSession{}, reason.ErrServer.Withf("dial progress err[%s]", err.Error())
	}

	lines := snapshot.Lines()
	handle, err := c.pipeline.SubmitJob(ctx, &sense.JobRequest{
		VideoID:           videoID,
		ClientID:          clientID,
		EntrantLinePoints: lines.Entrant,
		PasserbyLine:      lines.Passerby,
		FrameDimensions:   sense.FrameDimensions{Width: in.Width, Height: in.Height},
		InSide:            lines.InSide,
	})
	if err != nil {
		_ = stream.Close()
		c.rollbackToDrawing(ep, "任务提交失败")
		return JobSession{}, reason.ErrServer.Withf("submit job err[%s]", err.Error())
	}

	c.mu.Lock()
	if ep != c.epoch {
		c.mu.Unlock()
		_ = stream.Close()
		c.log.InfoContext(ctx, "job handle discarded, session reset while submitting", "video_id", videoID)
		return JobSession{}, reason.ErrBadRequest.SetMsg("会话已重置，任务结果已丢弃")
	}
	c.cur.StreamURL = handle.StreamURL
	c.cur.DownloadURL = handle.DownloadURL
	c.stream = stream
	session := c.cur
	c.mu.Unlock()

	if err := c.rec.VideoProcessing(ctx, videoID); err != nil {
		c.log.ErrorContext(ctx, "record processing failed", "video_id", videoID, "err", err)
	}

	go c.consume(ep, videoID, stream)
	return session, nil
}

// rollbackToDrawing 提交链路失败时退回标注阶段（无需重新上传）
func (c *Core) rollbackToDrawing(ep uint64, msg string) {
	c.mu.Lock()
	if ep == c.epoch && c.cur.Stage == StageProcessing {
		c.cur.Stage = StageDrawing
		c.cur.Message = msg
	}
	c.mu.Unlock()
	c.publish(Event{Type: "stage", Value: StageDrawing})
}

// consume 消费实时通道事件直至结束
// results 事件最多一条，收到后关闭通道并进入完成态；
// 未收到 results 通道就断开，按通道错误处理而不是静默完成
func (c *Core) consume(ep uint64, videoID string, stream sense.EventStream) {
	ctx := context.Background()
	var resultsSeen bool

	for ev := range stream.Events() {
		switch ev.Type {
		case sense.EventProgress:
			v := clampProgress(ev.Progress)
			c.mu.Lock()
			if ep != c.epoch {
				c.mu.Unlock()
				_ = stream.Close()
				return
			}
			c.cur.Progress = v
			c.mu.Unlock()
			c.publish(Event{Type: "progress", Value: v})

		case sense.EventResults:
			resultsSeen = true
			_ = stream.Close()

			c.mu.Lock()
			if ep != c.epoch {
				c.mu.Unlock()
				return
			}
			c.cur.Stage = StageFinished
			c.cur.Progress = 100
			c.cur.Counts = ev.Results.Counts
			c.cur.ReportURL = ev.Results.ReportURL
			downloadURL := c.cur.DownloadURL
			c.stream = nil
			c.mu.Unlock()

			if err := c.rec.VideoDone(ctx, videoID, ev.Results.Counts, ev.Results.ReportURL, downloadURL); err != nil {
				c.log.Error("record done failed", "video_id", videoID, "err", err)
			}
			c.publish(Event{Type: "results", Value: ev.Results})
			c.publish(Event{Type: "stage", Value: StageFinished})
		}
	}

	if resultsSeen {
		return
	}

	c.mu.Lock()
	if ep != c.epoch || c.cur.Stage != StageProcessing {
		c.mu.Unlock()
		return
	}
	c.cur.Stage = StageError
	c.cur.Message = "实时通道中断，未收到处理结果"
	if err := stream.Err(); err != nil {
		c.log.Error("progress channel broken", "video_id", videoID, "err", err)
	}
	c.stream = nil
	c.mu.Unlock()

	if err := c.rec.VideoFailed(ctx, videoID); err != nil {
		c.log.Error("record failed status err", "video_id", videoID, "err", err)
	}
	c.publish(Event{Type: "stage", Value: StageError})
}

// AckError 操作员确认错误后退回标注阶段重试，无需重新上传
func (c *Core) AckError() (JobSession, error) {
	c.mu.Lock()
	if c.cur.Stage != StageError {
		stage := c.cur.Stage
		c.mu.Unlock()
		return JobSession{}, reason.ErrBadRequest.Withf("当前会话处于 %s 阶段，无错误可确认", stage)
	}
	c.cur.Stage = StageDrawing
	c.cur.Message = ""
	c.cur.Progress = 0
	session := c.cur
	c.mu.Unlock()
	c.publish(Event{Type: "stage", Value: StageDrawing})
	return session, nil
}

// Reset 丢弃当前会话回到初始态，不删除远端产物
// 代数自增使所有在途续体的结果过期作废
func (c *Core) Reset() JobSession {
	c.mu.Lock()
	c.epoch++
	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
	c.cur = JobSession{Stage: StageInitial}
	session := c.cur
	c.mu.Unlock()
	c.publish(Event{Type: "stage", Value: StageInitial})
	return session
}

// Subscribe 订阅会话事件，返回取消函数；慢消费者的事件会被丢弃
func (c *Core) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	c.subMu.Lock()
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()
	return ch, func() {
		c.subMu.Lock()
		delete(c.subs, ch)
		c.subMu.Unlock()
	}
}

func (c *Core) publish(ev Event) {
	c.subMu.Lock()
	for ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	c.subMu.Unlock()
}

// clampProgress 越界进度值钳制到 0..100
func clampProgress(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
