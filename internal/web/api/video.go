package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/sense/internal/core/video"
	"github.com/ixugo/goddd/pkg/web"
)

// VideoAPI 为 http 提供业务方法
type VideoAPI struct {
	videoCore video.Core
}

func NewVideoAPI(core video.Core) VideoAPI {
	return VideoAPI{videoCore: core}
}

func registerVideo(g gin.IRouter, api VideoAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/videos", handler...)
	group.GET("", web.WrapH(api.findVideos))
	group.GET("/:id", web.WrapH(api.getVideo))
	group.DELETE("/:id", web.WrapH(api.delVideo))
	group.GET("/:id/download", api.downloadVideo)
}

// findVideos 分页查询历史记录
func (a VideoAPI) findVideos(c *gin.Context, in *video.FindVideoInput) (any, error) {
	items, total, err := a.videoCore.FindVideos(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

func (a VideoAPI) getVideo(c *gin.Context, _ *struct{}) (*video.Video, error) {
	return a.videoCore.GetVideo(c.Request.Context(), c.Param("id"))
}

func (a VideoAPI) delVideo(c *gin.Context, _ *struct{}) (*video.Video, error) {
	return a.videoCore.DelVideo(c.Request.Context(), c.Param("id"))
}

// downloadVideo 重定向到流水线签发的下载地址
func (a VideoAPI) downloadVideo(c *gin.Context) {
	v, err := a.videoCore.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Fail(c, err)
		return
	}
	addr := v.DownloadURL
	if addr == "" {
		addr = a.videoCore.DownloadURL(v.ID)
	}
	c.Redirect(http.StatusTemporaryRedirect, addr)
}
