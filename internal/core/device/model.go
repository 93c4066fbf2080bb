package device

import (
	"github.com/gowvp/sense/internal/core/annotation"
	"github.com/ixugo/goddd/pkg/orm"
)

// 默认处理时段
const (
	DefaultScheduleStart = "08:00"
	DefaultScheduleEnd   = "18:00"
)

// Device 已接入的计数摄像机及其工作配置副本
// 配置以流水线侧为准，本地保存副本用于列表展示与断网兜底
type Device struct {
	ID                  string                 `gorm:"primaryKey" json:"id"`
	ClientID            string                 `gorm:"column:client_id;uniqueIndex" json:"client_id"` // 流水线侧设备标识
	Name                string                 `gorm:"column:name" json:"name"`
	Manufacturer        string                 `gorm:"column:manufacturer" json:"manufacturer"`
	IPAddress           string                 `gorm:"column:ip_address" json:"ip_address"`
	Port                int                    `gorm:"column:port" json:"port"`
	Username            string                 `gorm:"column:username" json:"username"`
	Password            string                 `gorm:"column:password" json:"-"`
	RTSPURL             string                 `gorm:"column:rtsp_url" json:"rtsp_url"`
	IsConfigured        bool                   `gorm:"column:is_configured" json:"is_configured"`
	ProcessingStartTime string                 `gorm:"column:processing_start_time" json:"processing_start_time"` // HH:MM
	ProcessingEndTime   string                 `gorm:"column:processing_end_time" json:"processing_end_time"`     // HH:MM
	LinesConfig         annotation.LinesConfig `gorm:"column:lines_config;serializer:json" json:"lines_config"`
	CreatedAt           orm.Time               `json:"created_at"`
	UpdatedAt           orm.Time               `json:"updated_at"`
}

func (*Device) TableName() string {
	return "devices"
}

// Schedule 设备的处理时段，未配置时回落到默认时段
func (d *Device) Schedule() ScheduleWindow {
	w := ScheduleWindow{Start: d.ProcessingStartTime, End: d.ProcessingEndTime}
	if w.Start == "" {
		w.Start = DefaultScheduleStart
	}
	if w.End == "" {
		w.End = DefaultScheduleEnd
	}
	return w
}

// ScheduleWindow 每日处理时段，HH:MM 闭开区间 [Start, End)
type ScheduleWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains 判断 HH:MM 时刻是否落在时段内
// 字符串按字典序比较，HH:MM 定长格式下与时间序一致
func (w ScheduleWindow) Contains(hhmm string) bool {
	if w.Start <= w.End {
		return hhmm >= w.Start && hhmm < w.End
	}
	// 跨午夜时段，如 22:00 ~ 06:00
	return hhmm >= w.Start || hhmm < w.End
}
