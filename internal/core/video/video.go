package video

import (
	"context"
	"log/slog"

	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
)

// Storer data persistence
type Storer interface {
	Video() VideoStorer
}

// VideoStorer Instantiation interface
type VideoStorer interface {
	Find(context.Context, *[]*Video, orm.Pager, ...orm.QueryOption) (int64, error)
	Get(context.Context, *Video, ...orm.QueryOption) error
	Add(context.Context, *Video) error
	Edit(context.Context, *Video, func(*Video), ...orm.QueryOption) error
	Del(context.Context, *Video, ...orm.QueryOption) error
}

// Pipeline 历史记录域依赖的流水线能力
type Pipeline interface {
	DeleteVideo(ctx context.Context, videoID string) error
	DownloadURL(videoID string) string
}

// Core business domain
type Core struct {
	store    Storer
	pipeline Pipeline
	log      *slog.Logger
}

// NewCore create business domain
func NewCore(store Storer, pipeline Pipeline) Core {
	return Core{
		store:    store,
		pipeline: pipeline,
		log:      slog.With("module", "video"),
	}
}

// FindVideos 分页查询历史记录
func (c Core) FindVideos(ctx context.Context, in *FindVideoInput) ([]*Video, int64, error) {
	query := orm.NewQuery(1).OrderBy("created_at DESC")
	if in.Status != "" {
		query.Where("status = ?", in.Status)
	}

	items := make([]*Video, 0, in.Limit())
	total, err := c.store.Video().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// GetVideo Query a single object
func (c Core) GetVideo(ctx context.Context, id string) (*Video, error) {
	var out Video
	if err := c.store.Video().Get(ctx, &out, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Get id[%s] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Get id[%s] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// DelVideo 删除历史记录，远端产物一并清理
func (c Core) DelVideo(ctx context.Context, id string) (*Video, error) {
	if err := c.pipeline.DeleteVideo(ctx, id); err != nil {
		return nil, reason.ErrServer.Withf("delete remote err[%s]", err.Error())
	}
	var out Video
	if err := c.store.Video().Del(ctx, &out, orm.Where("id=?", id)); err != nil {
		return nil, reason.ErrDB.Withf(`Del id[%s] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// DownloadURL 处理产物的下载地址
func (c Core) DownloadURL(id string) string {
	return c.pipeline.DownloadURL(id)
}

// VideoUploaded 会话上传成功后落一条记录
func (c Core) VideoUploaded(ctx context.Context, videoID, firstFrameURL string) error {
	if err := c.store.Video().Add(ctx, &Video{
		ID:            videoID,
		Status:        StatusUploaded,
		FirstFrameURL: firstFrameURL,
	}); err != nil {
		return reason.ErrDB.Withf(`Add id[%s] err[%s]`, videoID, err.Error())
	}
	return nil
}

// VideoProcessing 会话提交处理后推进状态
func (c Core) VideoProcessing(ctx context.Context, videoID string) error {
	return c.setStatus(ctx, videoID, func(v *Video) {
		v.Status = StatusProcessing
	})
}

// VideoDone 处理完成，补上产物地址与统计结果
func (c Core) VideoDone(ctx context.Context, videoID string, counts []byte, reportURL, downloadURL string) error {
	return c.setStatus(ctx, videoID, func(v *Video) {
		v.Status = StatusDone
		v.Counts = counts
		v.ReportURL = reportURL
		v.DownloadURL = downloadURL
	})
}

// VideoFailed 处理失败
func (c Core) VideoFailed(ctx context.Context, videoID string) error {
	return c.setStatus(ctx, videoID, func(v *Video) {
		v.Status = StatusError
	})
}

func (c Core) setStatus(ctx context.Context, videoID string, changeFn func(*Video)) error {
	var out Video
	if err := c.store.Video().Edit(ctx, &out, changeFn, orm.Where("id=?", videoID)); err != nil {
		return reason.ErrDB.Withf(`Edit id[%s] err[%s]`, videoID, err.Error())
	}
	return nil
}
