package data

import (
	"context"
	"log/slog"

	"github.com/gowvp/sense/internal/core/device"
	"gorm.io/gorm"
)

// MigrateDeviceSchedule 给早期版本接入的设备补默认处理时段
// 旧版本 devices 表没有时段字段，建列后旧行为空串，统一回填默认值
func MigrateDeviceSchedule(db *gorm.DB) error {
	ctx := context.Background()
	if !db.Migrator().HasTable(&device.Device{}) {
		return nil
	}

	res := db.WithContext(ctx).Model(&device.Device{}).
		Where("is_configured = ? AND (processing_start_time = '' OR processing_end_time = '')", true).
		Updates(map[string]any{
			"processing_start_time": device.DefaultScheduleStart,
			"processing_end_time":   device.DefaultScheduleEnd,
		})
	if res.Error != nil {
		slog.Error("回填设备默认处理时段失败", "err", res.Error)
		return res.Error
	}
	if res.RowsAffected > 0 {
		slog.Info("设备默认处理时段回填完成", "rows", res.RowsAffected)
	}
	return nil
}
