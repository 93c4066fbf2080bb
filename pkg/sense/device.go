package sense

import (
	"context"

	"github.com/gowvp/sense/internal/core/annotation"
)

// ScanDevices 委托流水线扫描局域网 RTSP 端口，返回疑似摄像头 IP 列表
func (e *Engine) ScanDevices(ctx context.Context) ([]string, error) {
	var out []string
	if err := e.get(ctx, "/devices/scan", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectRequest 探测并接入摄像头（RTSP 协商在流水线侧完成）
type ConnectRequest struct {
	IPAddress string `json:"ip_address"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Port      int    `json:"port"`
}

// ConnectResult 接入成功后流水线返回的设备信息
type ConnectResult struct {
	ClientID     string `json:"client_id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	IPAddress    string `json:"ip_address"`
	Port         int    `json:"port"`
	RTSPURL      string `json:"rtsp_url"`
}

// ConnectDevice 测试凭据并接入摄像头
func (e *Engine) ConnectDevice(ctx context.Context, in *ConnectRequest) (*ConnectResult, error) {
	var out ConnectResult
	if err := e.post(ctx, "/devices/autodiscover", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeviceConfig 推送到流水线的完整设备配置
// 整体替换语义：缺失的字段会被远端视为清空，调用方必须带上全部元数据
type DeviceConfig struct {
	Name                string                 `json:"name"`
	Username            string                 `json:"username"`
	Password            string                 `json:"password"`
	Manufacturer        string                 `json:"manufacturer"`
	ProcessingStartTime string                 `json:"processing_start_time"`
	ProcessingEndTime   string                 `json:"processing_end_time"`
	LinesConfig         annotation.LinesConfig `json:"lines_config"`
}

// PushDeviceConfig 整体替换设备配置（含标注线与作息窗口）
func (e *Engine) PushDeviceConfig(ctx context.Context, clientID string, cfg *DeviceConfig) error {
	return e.put(ctx, "/devices/"+clientID+"/config", cfg, nil)
}

// DeleteDevice 删除流水线侧的设备
func (e *Engine) DeleteDevice(ctx context.Context, clientID string) error {
	return e.delete(ctx, "/devices/"+clientID)
}

// SnapshotResult 设备参考帧定位
type SnapshotResult struct {
	URL string `json:"url"`
}

// GetSnapshot 抓取设备当前画面的静态参考帧，用于标注
func (e *Engine) GetSnapshot(ctx context.Context, clientID string) (*SnapshotResult, error) {
	var out SnapshotResult
	if err := e.get(ctx, "/devices/"+clientID+"/snapshot", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LiveStats 实时计数样本，不落库，每次轮询整体覆盖
type LiveStats struct {
	Status     string     `json:"status"` // online / stopped / offline / error
	Data       LiveCounts `json:"data"`
	ServerTime string     `json:"server_time"`
	Message    string     `json:"message"`
	LastUpdate string     `json:"last_update"`
}

// LiveCounts 按类别汇总的实时计数
type LiveCounts struct {
	TotalGeral map[string]int `json:"total_geral"`
	Entrantes  map[string]int `json:"entrantes"`
	Passantes  map[string]int `json:"passantes"`
}

// GetLiveStats 拉取设备实时计数样本
func (e *Engine) GetLiveStats(ctx context.Context, clientID string) (*LiveStats, error) {
	var out LiveStats
	if err := e.get(ctx, "/devices/"+clientID+"/live_stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
