package video

import "github.com/ixugo/goddd/pkg/web"

type FindVideoInput struct {
	web.PagerFilter
	Status string `form:"status"` // 处理状态筛选
}
