package device

import (
	"github.com/gowvp/sense/internal/core/annotation"
	"github.com/ixugo/goddd/pkg/web"
)

type FindDeviceInput struct {
	web.PagerFilter
	Name         string `form:"name"`         // 设备名模糊筛选
	Manufacturer string `form:"manufacturer"` // 厂商精确筛选
}

type ConnectDeviceInput struct {
	IPAddress string `json:"ip_address" binding:"required"`
	Port      int    `json:"port"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// ConfigView 配置编辑页的工作副本
type ConfigView struct {
	Name                string                 `json:"name"`
	Username            string                 `json:"username"`
	Manufacturer        string                 `json:"manufacturer"`
	ProcessingStartTime string                 `json:"processing_start_time"` // HH:MM
	ProcessingEndTime   string                 `json:"processing_end_time"`   // HH:MM
	LinesConfig         annotation.LinesConfig `json:"lines_config"`
	SnapshotURL         string                 `json:"snapshot_url,omitempty"` // 参考帧快照，取不到时为空
}

type SaveConfigInput struct {
	Name                string                 `json:"name"`
	ProcessingStartTime string                 `json:"processing_start_time" binding:"required"` // HH:MM
	ProcessingEndTime   string                 `json:"processing_end_time" binding:"required"`   // HH:MM
	LinesConfig         annotation.LinesConfig `json:"lines_config"`
}
