package video

import (
	"encoding/json"

	"github.com/ixugo/goddd/pkg/orm"
)

// 视频处理状态
const (
	StatusUploaded   = "uploaded"   // 已上传，待标注提交
	StatusProcessing = "processing" // 处理中
	StatusDone       = "done"       // 处理完成
	StatusError      = "error"      // 处理失败
)

// Video 一次视频分析的历史记录
// ID 即流水线侧的 video_id，产物地址都由流水线签发
type Video struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	Status        string          `gorm:"column:status" json:"status"`
	FirstFrameURL string          `gorm:"column:first_frame_url" json:"first_frame_url"`
	DownloadURL   string          `gorm:"column:download_url" json:"download_url,omitempty"`
	ReportURL     string          `gorm:"column:report_url" json:"report_url,omitempty"`
	Counts        json.RawMessage `gorm:"column:counts;type:text" json:"counts,omitempty"`
	CreatedAt     orm.Time        `json:"created_at"`
	UpdatedAt     orm.Time        `json:"updated_at"`
}

func (*Video) TableName() string {
	return "videos"
}
