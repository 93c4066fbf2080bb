package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/gowvp/sense/internal/core/annotation"
	"github.com/gowvp/sense/internal/core/session"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
)

// SessionAPI 为 http 提供业务方法
type SessionAPI struct {
	core *session.Core
}

func NewSessionAPI(core *session.Core) SessionAPI {
	return SessionAPI{core: core}
}

func registerSession(g gin.IRouter, api SessionAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/sessions", handler...)
	group.GET("", web.WrapH(api.getSession))
	group.POST("/video", web.WrapH(api.uploadVideo))
	group.POST("/boundaries/:name/points", web.WrapH(api.appendPoint))
	group.DELETE("/boundaries/:name", web.WrapH(api.clearBoundary))
	group.POST("/orientation/toggle", web.WrapH(api.toggleOrientation))
	group.GET("/labels", web.WrapH(api.getSideLabels))
	group.POST("/process", web.WrapH(api.startProcessing))
	group.POST("/error/ack", web.WrapH(api.ackError))
	group.POST("/reset", web.WrapH(api.reset))
	// websocket 事件转发
	group.GET("/events", api.events)
}

func (a SessionAPI) getSession(_ *gin.Context, _ *struct{}) (session.JobSession, error) {
	return a.core.Session(), nil
}

// uploadVideo 表单上传视频，流式转发给流水线，不落本地磁盘
func (a SessionAPI) uploadVideo(c *gin.Context, _ *struct{}) (session.JobSession, error) {
	file, err := c.FormFile("video_file")
	if err != nil {
		return session.JobSession{}, reason.ErrBadRequest.SetMsg("缺少 video_file 文件字段")
	}
	f, err := file.Open()
	if err != nil {
		return session.JobSession{}, reason.ErrServer.Withf("open upload err[%s]", err.Error())
	}
	defer f.Close()

	return a.core.Upload(c.Request.Context(), file.Filename, f)
}

type appendPointInput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// 两者都传时，x/y 视作显示坐标，按视口换算为原始分辨率坐标
	Rect       *annotation.DisplayRect `json:"rect,omitempty"`
	Resolution *annotation.Resolution  `json:"resolution,omitempty"`
}

func (a SessionAPI) appendPoint(c *gin.Context, in *appendPointInput) (session.JobSession, error) {
	p := annotation.Point{X: in.X, Y: in.Y}
	if in.Rect != nil && in.Resolution != nil {
		var err error
		p, err = annotation.MapToNative(*in.Rect, *in.Resolution, in.X, in.Y)
		if err != nil {
			return session.JobSession{}, reason.ErrBadRequest.SetMsg(err.Error())
		}
	}
	name := annotation.BoundaryName(c.Param("name"))
	if err := a.core.AppendPoint(name, p); err != nil {
		return session.JobSession{}, err
	}
	return a.core.Session(), nil
}

func (a SessionAPI) clearBoundary(c *gin.Context, _ *struct{}) (session.JobSession, error) {
	name := annotation.BoundaryName(c.Param("name"))
	if err := a.core.ClearBoundary(name); err != nil {
		return session.JobSession{}, err
	}
	return a.core.Session(), nil
}

type toggleOrientationOutput struct {
	Orientation annotation.Orientation `json:"orientation"`
	InSide      string                 `json:"in_side"`
}

func (a SessionAPI) toggleOrientation(_ *gin.Context, _ *struct{}) (toggleOrientationOutput, error) {
	o, err := a.core.ToggleOrientation()
	if err != nil {
		return toggleOrientationOutput{}, err
	}
	return toggleOrientationOutput{Orientation: o, InSide: o.InSide()}, nil
}

func (a SessionAPI) getSideLabels(_ *gin.Context, _ *struct{}) (*annotation.SideLabels, error) {
	return a.core.SideLabels()
}

func (a SessionAPI) startProcessing(c *gin.Context, in *session.StartProcessingInput) (session.JobSession, error) {
	return a.core.StartProcessing(c.Request.Context(), in)
}

func (a SessionAPI) ackError(_ *gin.Context, _ *struct{}) (session.JobSession, error) {
	return a.core.AckError()
}

func (a SessionAPI) reset(_ *gin.Context, _ *struct{}) (session.JobSession, error) {
	return a.core.Reset(), nil
}

var sessionUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// events 把会话事件转发到操作端 websocket
// 连接建立先推一帧当前会话全量，之后增量推送
func (a SessionAPI) events(c *gin.Context) {
	conn, err := sessionUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "upgrade events conn", "err", err)
		return
	}
	defer conn.Close()

	ch, cancel := a.core.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(session.Event{Type: "session", Value: a.core.Session()}); err != nil {
		return
	}

	// 读协程只用来感知对端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
