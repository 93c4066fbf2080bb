package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/gowvp/sense/internal/conf"
	"github.com/gowvp/sense/internal/data"
	"github.com/gowvp/sense/internal/core/device"
	"github.com/gowvp/sense/internal/core/device/store/devicedb"
	"github.com/gowvp/sense/internal/core/monitor"
	"github.com/gowvp/sense/internal/core/session"
	"github.com/gowvp/sense/internal/core/video"
	"github.com/gowvp/sense/internal/core/video/store/videodb"
	"github.com/gowvp/sense/pkg/sense"
	"github.com/ixugo/goddd/domain/uniqueid"
	"github.com/ixugo/goddd/domain/uniqueid/store/uniqueiddb"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(Usecase), "*"),
	NewHTTPHandler,
	NewSenseEngine,
	NewUniqueID,
	NewDeviceStore, NewDeviceCore, NewDeviceAPI,
	NewVideoStore, NewVideoCore, NewVideoAPI,
	NewSessionCore, NewSessionAPI,
	NewMonitorCore, NewMonitorAPI,
)

type Usecase struct {
	Conf       *conf.Bootstrap
	DB         *gorm.DB
	UniqueID   uniqueid.Core
	SessionAPI SessionAPI
	VideoAPI   VideoAPI
	DeviceAPI  DeviceAPI
	MonitorAPI MonitorAPI
}

// NewHTTPHandler 生成Gin框架路由内容
func NewHTTPHandler(uc *Usecase) http.Handler {
	cfg := uc.Conf.Server
	if !uc.Conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	g := gin.New()
	if cfg.HTTP.PProf.Enabled {
		web.SetupPProf(g, &cfg.HTTP.PProf.AccessIps)
	}
	setupRouter(g, uc)
	return g
}

// NewSenseEngine 计数流水线客户端
func NewSenseEngine(c *conf.Bootstrap) *sense.Engine {
	eng := sense.NewEngine().SetConfig(sense.Config{URL: c.Pipeline.URL})
	return &eng
}

// NewUniqueID 唯一 id 生成器
func NewUniqueID(db *gorm.DB) uniqueid.Core {
	return uniqueid.NewCore(uniqueiddb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate()), 5)
}

func NewDeviceStore(db *gorm.DB) device.Storer {
	store := devicedb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
	// 建列之后再回填旧数据的默认时段
	if err := data.MigrateDeviceSchedule(db); err != nil {
		slog.Error("migrate device schedule", "err", err)
	}
	return store
}

func NewDeviceCore(store device.Storer, eng *sense.Engine, uni uniqueid.Core) device.Core {
	return device.NewCore(store, eng, uni)
}

func NewVideoStore(db *gorm.DB) video.Storer {
	return videodb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
}

func NewVideoCore(store video.Storer, eng *sense.Engine) video.Core {
	return video.NewCore(store, eng)
}

func NewSessionCore(eng *sense.Engine, videoCore video.Core) *session.Core {
	return session.NewCore(session.NewEnginePipeline(eng), videoCore)
}

func NewMonitorCore(eng *sense.Engine) *monitor.Core {
	return monitor.NewCore(eng)
}
