package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gowvp/sense/internal/core/device"
	"github.com/ixugo/goddd/pkg/web"
)

// DeviceAPI 为 http 提供业务方法
type DeviceAPI struct {
	deviceCore device.Core
}

func NewDeviceAPI(core device.Core) DeviceAPI {
	return DeviceAPI{deviceCore: core}
}

func registerDevice(g gin.IRouter, api DeviceAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/devices", handler...)
	group.GET("", web.WrapH(api.findDevices))
	group.GET("/scan", web.WrapH(api.scanDevices))
	group.POST("/connect", web.WrapH(api.connectDevice))
	group.GET("/:id", web.WrapH(api.getDevice))
	group.DELETE("/:id", web.WrapH(api.delDevice))
	group.GET("/:id/config", web.WrapH(api.getConfig))
	group.PUT("/:id/config", web.WrapH(api.saveConfig))
}

// findDevices 分页查询已接入设备
func (a DeviceAPI) findDevices(c *gin.Context, in *device.FindDeviceInput) (any, error) {
	items, total, err := a.deviceCore.FindDevices(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

// scanDevices 扫描网段内在线的摄像机地址
func (a DeviceAPI) scanDevices(c *gin.Context, _ *struct{}) (any, error) {
	ips, err := a.deviceCore.ScanDevices(c.Request.Context())
	return gin.H{"items": ips}, err
}

func (a DeviceAPI) connectDevice(c *gin.Context, in *device.ConnectDeviceInput) (*device.Device, error) {
	return a.deviceCore.ConnectDevice(c.Request.Context(), in)
}

func (a DeviceAPI) getDevice(c *gin.Context, _ *struct{}) (*device.Device, error) {
	return a.deviceCore.GetDevice(c.Request.Context(), c.Param("id"))
}

func (a DeviceAPI) delDevice(c *gin.Context, _ *struct{}) (*device.Device, error) {
	return a.deviceCore.DelDevice(c.Request.Context(), c.Param("id"))
}

// getConfig 加载配置工作副本，附参考帧快照
func (a DeviceAPI) getConfig(c *gin.Context, _ *struct{}) (*device.ConfigView, error) {
	return a.deviceCore.LoadConfig(c.Request.Context(), c.Param("id"))
}

// saveConfig 全量保存设备配置
func (a DeviceAPI) saveConfig(c *gin.Context, in *device.SaveConfigInput) (*device.Device, error) {
	return a.deviceCore.SaveConfig(c.Request.Context(), c.Param("id"), in)
}
