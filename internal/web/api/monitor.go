package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gowvp/sense/internal/core/device"
	"github.com/gowvp/sense/internal/core/monitor"
	"github.com/ixugo/goddd/pkg/web"
)

// MonitorAPI 为 http 提供业务方法
type MonitorAPI struct {
	monitorCore *monitor.Core
	deviceCore  device.Core
}

func NewMonitorAPI(core *monitor.Core, deviceCore device.Core) MonitorAPI {
	return MonitorAPI{monitorCore: core, deviceCore: deviceCore}
}

func registerMonitor(g gin.IRouter, api MonitorAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/monitor", handler...)
	group.GET("", web.WrapH(api.getMonitor))
	group.POST("/devices/:id", web.WrapH(api.openMonitor))
	group.DELETE("", web.WrapH(api.closeMonitor))
}

func (a MonitorAPI) getMonitor(_ *gin.Context, _ *struct{}) (monitor.Snapshot, error) {
	return a.monitorCore.Current(), nil
}

// openMonitor 切换监控目标，旧设备的轮询隐式关闭
func (a MonitorAPI) openMonitor(c *gin.Context, _ *struct{}) (monitor.Snapshot, error) {
	dev, err := a.deviceCore.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		return monitor.Snapshot{}, err
	}
	return a.monitorCore.Open(dev.ClientID)
}

func (a MonitorAPI) closeMonitor(_ *gin.Context, _ *struct{}) (any, error) {
	a.monitorCore.Close()
	return gin.H{"msg": "ok"}, nil
}
