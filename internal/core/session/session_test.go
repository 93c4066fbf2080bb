package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gowvp/sense/internal/core/annotation"
	"github.com/gowvp/sense/pkg/sense"
)

type fakeStream struct {
	events chan sense.Event
	err    error
	closes atomic.Int32
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan sense.Event, 16)}
}

func (f *fakeStream) Events() <-chan sense.Event { return f.events }
func (f *fakeStream) Err() error                 { return f.err }
func (f *fakeStream) Close() error {
	f.closes.Add(1)
	return nil
}

type fakePipeline struct {
	uploadErr error
	submitErr error
	dialErr   error
	stream    *fakeStream
	submitted *sense.JobRequest
}

func (f *fakePipeline) UploadVideo(_ context.Context, _ string, _ io.Reader) (*sense.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &sense.UploadResult{VideoID: "v1", FirstFrameURL: "/static/frames/v1_frame.jpg"}, nil
}

func (f *fakePipeline) SubmitJob(_ context.Context, in *sense.JobRequest) (*sense.JobHandle, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = in
	return &sense.JobHandle{StreamURL: "/video-stream/v1", DownloadURL: "/static/output_videos/v1_processed.mp4"}, nil
}

func (f *fakePipeline) DialProgress(_ context.Context, _ string) (sense.EventStream, error) {
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return f.stream, nil
}

type fakeRecorder struct{}

func (fakeRecorder) VideoUploaded(context.Context, string, string) error       { return nil }
func (fakeRecorder) VideoProcessing(context.Context, string) error             { return nil }
func (fakeRecorder) VideoDone(context.Context, string, []byte, string, string) error { return nil }
func (fakeRecorder) VideoFailed(context.Context, string) error                 { return nil }

func drawReadyCore(t *testing.T, p *fakePipeline) *Core {
	t.Helper()
	c := NewCore(p, fakeRecorder{})
	if _, err := c.Upload(context.Background(), "a.mp4", nil); err != nil {
		t.Fatal(err)
	}
	for _, pt := range []annotation.Point{{X: 0, Y: 0}, {X: 100, Y: 0}} {
		if err := c.AppendPoint(annotation.BoundaryEntry, pt); err != nil {
			t.Fatal(err)
		}
	}
	for _, pt := range []annotation.Point{{X: 0, Y: 80}, {X: 100, Y: 80}} {
		if err := c.AppendPoint(annotation.BoundaryCrossing, pt); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func waitStage(t *testing.T, c *Core, want Stage) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Session().Stage == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stage = %s, want %s", c.Session().Stage, want)
}

func TestUploadAdvancesToDrawing(t *testing.T) {
	c := NewCore(&fakePipeline{}, fakeRecorder{})
	s, err := c.Upload(context.Background(), "a.mp4", nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Stage != StageDrawing || s.VideoID != "v1" {
		t.Fatalf("session = %+v", s)
	}
	if s.ClientID == "" {
		t.Fatal("client id must be generated at upload success")
	}

	// 非初始态禁止再次上传
	if _, err := c.Upload(context.Background(), "b.mp4", nil); err == nil {
		t.Fatal("upload outside initial stage must be rejected")
	}
}

func TestUploadFailureFallsBackToInitial(t *testing.T) {
	c := NewCore(&fakePipeline{uploadErr: errors.New("boom")}, fakeRecorder{})
	if _, err := c.Upload(context.Background(), "a.mp4", nil); err == nil {
		t.Fatal("expected transport error")
	}
	if got := c.Session().Stage; got != StageInitial {
		t.Fatalf("stage = %s, want initial", got)
	}
}

func TestStartProcessingGuard(t *testing.T) {
	p := &fakePipeline{stream: newFakeStream()}
	c := NewCore(p, fakeRecorder{})
	if _, err := c.Upload(context.Background(), "a.mp4", nil); err != nil {
		t.Fatal(err)
	}
	// 只画了一条线
	_ = c.AppendPoint(annotation.BoundaryEntry, annotation.Point{X: 0, Y: 0})
	_ = c.AppendPoint(annotation.BoundaryEntry, annotation.Point{X: 10, Y: 0})

	_, err := c.StartProcessing(context.Background(), &StartProcessingInput{Width: 1920, Height: 1080})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if got := c.Session().Stage; got != StageDrawing {
		t.Fatalf("validation failure must not change stage, got %s", got)
	}
	if p.submitted != nil {
		t.Fatal("validation failure must never reach the network")
	}
}

func TestProcessingHappyPath(t *testing.T) {
	stream := newFakeStream()
	p := &fakePipeline{stream: stream}
	c := drawReadyCore(t, p)

	s, err := c.StartProcessing(context.Background(), &StartProcessingInput{Width: 1920, Height: 1080})
	if err != nil {
		t.Fatal(err)
	}
	if s.Stage != StageProcessing {
		t.Fatalf("stage = %s", s.Stage)
	}
	if p.submitted.InSide != annotation.InSidePrimary {
		t.Fatalf("in_side = %s, want %s", p.submitted.InSide, annotation.InSidePrimary)
	}

	// 重复、乱序的进度值都要幂等接受
	for _, v := range []float64{10, 10, 55, 40, 100} {
		stream.events <- sense.Event{Type: sense.EventProgress, Progress: v}
	}
	stream.events <- sense.Event{
		Type:    sense.EventResults,
		Results: &sense.JobResults{Counts: json.RawMessage(`{"entrantes":{"Total":3}}`), ReportURL: "/static/reports/v1_report.xlsx"},
	}
	close(stream.events)

	waitStage(t, c, StageFinished)
	got := c.Session()
	if got.Progress != 100 {
		t.Fatalf("progress = %d, want 100", got.Progress)
	}
	if got.ReportURL != "/static/reports/v1_report.xlsx" {
		t.Fatalf("report url = %s", got.ReportURL)
	}
	if n := stream.closes.Load(); n != 1 {
		t.Fatalf("channel must be closed exactly once after results, got %d", n)
	}
}

func TestResultsWithoutProgress(t *testing.T) {
	stream := newFakeStream()
	c := drawReadyCore(t, &fakePipeline{stream: stream})
	if _, err := c.StartProcessing(context.Background(), &StartProcessingInput{Width: 640, Height: 360}); err != nil {
		t.Fatal(err)
	}

	stream.events <- sense.Event{Type: sense.EventResults, Results: &sense.JobResults{}}
	close(stream.events)
	waitStage(t, c, StageFinished)
}

func TestChannelDropMovesToError(t *testing.T) {
	stream := newFakeStream()
	stream.err = errors.New("connection reset")
	c := drawReadyCore(t, &fakePipeline{stream: stream})
	if _, err := c.StartProcessing(context.Background(), &StartProcessingInput{Width: 640, Height: 360}); err != nil {
		t.Fatal(err)
	}

	stream.events <- sense.Event{Type: sense.EventProgress, Progress: 42}
	close(stream.events)
	waitStage(t, c, StageError)

	// 确认错误后退回标注阶段，无需重新上传
	s, err := c.AckError()
	if err != nil {
		t.Fatal(err)
	}
	if s.Stage != StageDrawing || s.VideoID != "v1" {
		t.Fatalf("session = %+v", s)
	}
}

func TestSubmitFailureFallsBackToDrawing(t *testing.T) {
	stream := newFakeStream()
	c := drawReadyCore(t, &fakePipeline{stream: stream, submitErr: errors.New("503")})
	if _, err := c.StartProcessing(context.Background(), &StartProcessingInput{Width: 640, Height: 360}); err == nil {
		t.Fatal("expected transport error")
	}
	if got := c.Session().Stage; got != StageDrawing {
		t.Fatalf("stage = %s, want drawing", got)
	}
	if n := stream.closes.Load(); n != 1 {
		t.Fatalf("dial side of the channel must be released, closes = %d", n)
	}
}

func TestResetDiscardsStaleEvents(t *testing.T) {
	stream := newFakeStream()
	c := drawReadyCore(t, &fakePipeline{stream: stream})
	if _, err := c.StartProcessing(context.Background(), &StartProcessingInput{Width: 640, Height: 360}); err != nil {
		t.Fatal(err)
	}

	c.Reset()
	if got := c.Session().Stage; got != StageInitial {
		t.Fatalf("stage = %s, want initial", got)
	}

	// 迟到的事件必须被按过期丢弃
	stream.events <- sense.Event{Type: sense.EventProgress, Progress: 80}
	stream.events <- sense.Event{Type: sense.EventResults, Results: &sense.JobResults{}}
	close(stream.events)

	time.Sleep(50 * time.Millisecond)
	got := c.Session()
	if got.Stage != StageInitial || got.Progress != 0 {
		t.Fatalf("stale events applied: %+v", got)
	}
}

func TestProgressClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0}, {0, 0}, {49.6, 50}, {100, 100}, {150, 100},
	}
	for _, tt := range tests {
		if got := clampProgress(tt.in); got != tt.want {
			t.Fatalf("clampProgress(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
