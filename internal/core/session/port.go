package session

import (
	"context"
	"io"

	"github.com/gowvp/sense/pkg/sense"
)

// Pipeline 会话依赖的计数流水线能力
// 接口在核心定义，避免循环依赖；pkg/sense 的 Engine 经适配实现
type Pipeline interface {
	UploadVideo(ctx context.Context, filename string, r io.Reader) (*sense.UploadResult, error)
	SubmitJob(ctx context.Context, in *sense.JobRequest) (*sense.JobHandle, error)
	DialProgress(ctx context.Context, clientID string) (sense.EventStream, error)
}

// Recorder 会话阶段变化写入历史记录
type Recorder interface {
	VideoUploaded(ctx context.Context, videoID, firstFrameURL string) error
	VideoProcessing(ctx context.Context, videoID string) error
	VideoDone(ctx context.Context, videoID string, results []byte, reportURL, downloadURL string) error
	VideoFailed(ctx context.Context, videoID string) error
}

type enginePipeline struct {
	eng *sense.Engine
}

// NewEnginePipeline 适配 [sense.Engine] 到 Pipeline
func NewEnginePipeline(eng *sense.Engine) Pipeline {
	return enginePipeline{eng: eng}
}

func (p enginePipeline) UploadVideo(ctx context.Context, filename string, r io.Reader) (*sense.UploadResult, error) {
	return p.eng.UploadVideo(ctx, filename, r)
}

func (p enginePipeline) SubmitJob(ctx context.Context, in *sense.JobRequest) (*sense.JobHandle, error) {
	return p.eng.SubmitJob(ctx, in)
}

func (p enginePipeline) DialProgress(ctx context.Context, clientID string) (sense.EventStream, error) {
	s, err := p.eng.DialProgress(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s, nil
}
