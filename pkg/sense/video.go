package sense

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gowvp/sense/internal/core/annotation"
)

// UploadResult 上传成功后流水线返回的定位信息
type UploadResult struct {
	VideoID       string `json:"video_id"`        // 流水线侧视频 ID
	FirstFrameURL string `json:"first_frame_url"` // 参考帧（首帧）地址
}

// FrameDimensions 标注时参考帧的原始分辨率
type FrameDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// JobRequest 提交处理任务，client_id 用于路由实时进度事件
type JobRequest struct {
	VideoID           string             `json:"video_id"`
	ClientID          string             `json:"client_id"`
	EntrantLinePoints []annotation.Point `json:"entrant_line_points"`
	PasserbyLine      []annotation.Point `json:"passerby_line_points"`
	FrameDimensions   FrameDimensions    `json:"frame_dimensions"`
	InSide            string             `json:"in_side"`
}

// JobHandle 任务受理后返回的可视化与产物地址
type JobHandle struct {
	StreamURL   string `json:"stream_url"`   // 处理过程 MJPEG 预览
	DownloadURL string `json:"download_url"` // 处理完成后的视频产物
}

// UploadVideo 以 multipart 上传视频，返回视频 ID 与参考帧地址
func (e *Engine) UploadVideo(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("video_file", filename)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL+"/upload-video/", pr)
	if err != nil {
		return nil, fmt.Errorf("sense: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := e.do(req, &out); err != nil {
		return nil, err
	}
	if out.VideoID == "" {
		return nil, fmt.Errorf("sense: upload returned empty video_id")
	}
	return &out, nil
}

// SubmitJob 提交处理任务，进度事件经 DialProgress 打开的通道推送
func (e *Engine) SubmitJob(ctx context.Context, in *JobRequest) (*JobHandle, error) {
	var out JobHandle
	if err := e.post(ctx, "/process-video/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVideo 删除流水线侧的视频与产物
func (e *Engine) DeleteVideo(ctx context.Context, videoID string) error {
	return e.delete(ctx, "/videos/"+videoID)
}

// DownloadURL 强制下载地址（响应带 attachment 头）
func (e *Engine) DownloadURL(videoID string) string {
	return e.cfg.URL + "/download-video/" + videoID
}
