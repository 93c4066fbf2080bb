package device

import (
	"context"
	"log/slog"

	"github.com/gowvp/sense/internal/core/annotation"
	"github.com/gowvp/sense/pkg/sense"
	"github.com/ixugo/goddd/domain/uniqueid"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/jinzhu/copier"
)

const idPrefixDevice = "cam"

// Storer data persistence
type Storer interface {
	Device() DeviceStorer
}

// DeviceStorer Instantiation interface
type DeviceStorer interface {
	Find(context.Context, *[]*Device, orm.Pager, ...orm.QueryOption) (int64, error)
	Get(context.Context, *Device, ...orm.QueryOption) error
	Add(context.Context, *Device) error
	Edit(context.Context, *Device, func(*Device), ...orm.QueryOption) error
	Del(context.Context, *Device, ...orm.QueryOption) error
}

// Pipeline 设备域依赖的流水线能力
type Pipeline interface {
	ScanDevices(ctx context.Context) ([]string, error)
	ConnectDevice(ctx context.Context, in *sense.ConnectRequest) (*sense.ConnectResult, error)
	PushDeviceConfig(ctx context.Context, clientID string, cfg *sense.DeviceConfig) error
	DeleteDevice(ctx context.Context, clientID string) error
	GetSnapshot(ctx context.Context, clientID string) (*sense.SnapshotResult, error)
}

// Core business domain
type Core struct {
	store    Storer
	pipeline Pipeline
	uni      uniqueid.Core
	log      *slog.Logger
}

// NewCore create business domain
func NewCore(store Storer, pipeline Pipeline, uni uniqueid.Core) Core {
	return Core{
		store:    store,
		pipeline: pipeline,
		uni:      uni,
		log:      slog.With("module", "device"),
	}
}

// FindDevices 分页查询已接入设备
func (c Core) FindDevices(ctx context.Context, in *FindDeviceInput) ([]*Device, int64, error) {
	query := orm.NewQuery(2).OrderBy("created_at DESC")
	if in.Name != "" {
		query.Where("name LIKE ?", "%"+in.Name+"%")
	}
	if in.Manufacturer != "" {
		query.Where("manufacturer = ?", in.Manufacturer)
	}

	items := make([]*Device, 0, in.Limit())
	total, err := c.store.Device().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// GetDevice Query a single object
func (c Core) GetDevice(ctx context.Context, id string) (*Device, error) {
	var out Device
	if err := c.store.Device().Get(ctx, &out, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Get id[%s] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Get id[%s] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// ScanDevices 扫描网段内在线的摄像机地址
func (c Core) ScanDevices(ctx context.Context) ([]string, error) {
	ips, err := c.pipeline.ScanDevices(ctx)
	if err != nil {
		return nil, reason.ErrServer.Withf("scan err[%s]", err.Error())
	}
	return ips, nil
}

// ConnectDevice 凭证试连接入设备，成功后落地本地副本
func (c Core) ConnectDevice(ctx context.Context, in *ConnectDeviceInput) (*Device, error) {
	out, err := c.pipeline.ConnectDevice(ctx, &sense.ConnectRequest{
		IPAddress: in.IPAddress,
		Port:      in.Port,
		Username:  in.Username,
		Password:  in.Password,
	})
	if err != nil {
		return nil, reason.ErrServer.Withf("connect err[%s]", err.Error())
	}

	// 重复接入同一设备时复用已有记录
	var dev Device
	err = c.store.Device().Get(ctx, &dev, orm.Where("client_id=?", out.ClientID))
	if err == nil {
		if err := c.store.Device().Edit(ctx, &dev, func(d *Device) {
			d.IPAddress = in.IPAddress
			d.Port = in.Port
			d.Username = in.Username
			d.Password = in.Password
			d.RTSPURL = out.RTSPURL
			d.Manufacturer = out.Manufacturer
		}, orm.Where("id=?", dev.ID)); err != nil {
			return nil, reason.ErrDB.Withf(`Edit id[%s] err[%s]`, dev.ID, err.Error())
		}
		return &dev, nil
	}
	if !orm.IsErrRecordNotFound(err) {
		return nil, reason.ErrDB.Withf(`Get client_id[%s] err[%s]`, out.ClientID, err.Error())
	}

	dev = Device{
		ID:           c.uni.UniqueID(idPrefixDevice),
		ClientID:     out.ClientID,
		Name:         out.Name,
		Manufacturer: out.Manufacturer,
		IPAddress:    in.IPAddress,
		Port:         in.Port,
		Username:     in.Username,
		Password:     in.Password,
		RTSPURL:      out.RTSPURL,
	}
	if dev.Name == "" {
		dev.Name = in.IPAddress
	}
	if err := c.store.Device().Add(ctx, &dev); err != nil {
		return nil, reason.ErrDB.Withf(`Add err[%s]`, err.Error())
	}
	return &dev, nil
}

// DelDevice 删除设备，先通知流水线再删本地副本
func (c Core) DelDevice(ctx context.Context, id string) (*Device, error) {
	dev, err := c.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.pipeline.DeleteDevice(ctx, dev.ClientID); err != nil {
		return nil, reason.ErrServer.Withf("delete remote err[%s]", err.Error())
	}
	var out Device
	if err := c.store.Device().Del(ctx, &out, orm.Where("id=?", id)); err != nil {
		return nil, reason.ErrDB.Withf(`Del id[%s] err[%s]`, id, err.Error())
	}
	return dev, nil
}

// LoadConfig 加载设备配置工作副本，附带一张参考帧快照
// 未配置过的设备给默认处理时段与空边界线
func (c Core) LoadConfig(ctx context.Context, id string) (*ConfigView, error) {
	dev, err := c.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	view := ConfigView{
		Name:                dev.Name,
		Username:            dev.Username,
		Manufacturer:        dev.Manufacturer,
		ProcessingStartTime: dev.ProcessingStartTime,
		ProcessingEndTime:   dev.ProcessingEndTime,
		LinesConfig:         dev.LinesConfig,
	}
	if !dev.IsConfigured {
		view.ProcessingStartTime = DefaultScheduleStart
		view.ProcessingEndTime = DefaultScheduleEnd
		view.LinesConfig = annotation.LinesConfig{InSide: annotation.InSidePrimary}
	}

	// 快照失败不阻塞配置编辑，没有底图也能改时段
	snap, err := c.pipeline.GetSnapshot(ctx, dev.ClientID)
	if err != nil {
		c.log.WarnContext(ctx, "snapshot unavailable", "device_id", id, "err", err)
	} else {
		view.SnapshotURL = snap.URL
	}
	return &view, nil
}

// SaveConfig 全量保存设备配置
//
// 流水线侧按完整文档替换，请求缺少的字段会清掉远端已有值，
// 所以这里必须把本地副本中未改动的字段一并带上
func (c Core) SaveConfig(ctx context.Context, id string, in *SaveConfigInput) (*Device, error) {
	dev, err := c.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg := sense.DeviceConfig{
		Name:                in.Name,
		Username:            dev.Username,
		Password:            dev.Password,
		Manufacturer:        dev.Manufacturer,
		ProcessingStartTime: in.ProcessingStartTime,
		ProcessingEndTime:   in.ProcessingEndTime,
		LinesConfig:         in.LinesConfig,
	}
	if cfg.Name == "" {
		cfg.Name = dev.Name
	}
	if cfg.LinesConfig.InSide == "" {
		cfg.LinesConfig.InSide = annotation.InSidePrimary
	}
	if err := c.pipeline.PushDeviceConfig(ctx, dev.ClientID, &cfg); err != nil {
		return nil, reason.ErrServer.Withf("push config err[%s]", err.Error())
	}

	var out Device
	if err := c.store.Device().Edit(ctx, &out, func(d *Device) {
		if err := copier.Copy(d, &cfg); err != nil {
			slog.ErrorContext(ctx, "Copy", "err", err)
		}
		d.IsConfigured = true
	}, orm.Where("id=?", id)); err != nil {
		return nil, reason.ErrDB.Withf(`Edit id[%s] err[%s]`, id, err.Error())
	}
	return &out, nil
}
