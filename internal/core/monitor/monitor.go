// Package monitor 设备实时统计轮询
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gowvp/sense/pkg/sense"
	"github.com/ixugo/goddd/pkg/reason"
)

// defaultInterval 固定轮询周期
const defaultInterval = 2000 * time.Millisecond

// StatsFetcher 按设备 client_id 拉取实时统计
type StatsFetcher interface {
	GetLiveStats(ctx context.Context, clientID string) (*sense.LiveStats, error)
}

// Snapshot 当前监控面板的只读视图
type Snapshot struct {
	ClientID  string           `json:"client_id"`
	Stats     *sense.LiveStats `json:"stats,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
	Message   string           `json:"message,omitempty"` // 最近一次拉取失败提示
}

// Core 单活跃设备的统计轮询器
//
// 同一时刻最多监控一个设备：切换设备隐式关闭上一个轮询；
// 响应按派发序号应用，迟到的旧响应不允许覆盖新数据
type Core struct {
	mu       sync.Mutex
	fetcher  StatsFetcher
	log      *slog.Logger
	interval time.Duration

	cancel  context.CancelFunc
	cur     Snapshot
	nextSeq uint64
	applied uint64
}

func NewCore(fetcher StatsFetcher) *Core {
	return &Core{
		fetcher:  fetcher,
		log:      slog.With("module", "monitor"),
		interval: defaultInterval,
	}
}

// Open 开始轮询指定设备，立即拉取一次，此后按固定周期拉取
// 已在监控其他设备时先隐式关闭旧轮询
func (c *Core) Open(clientID string) (Snapshot, error) {
	if clientID == "" {
		return Snapshot{}, reason.ErrBadRequest.SetMsg("client_id 不能为空")
	}

	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.cur = Snapshot{ClientID: clientID}
	c.nextSeq++
	c.applied = c.nextSeq // 旧设备的在途响应全部作废
	snap := c.cur
	c.mu.Unlock()

	go c.loop(ctx, clientID)
	return snap, nil
}

// Close 停止当前轮询并清空视图
func (c *Core) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.cur = Snapshot{}
	c.applied = c.nextSeq
	c.mu.Unlock()
}

// Current 最近一次成功应用的统计视图
func (c *Core) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *Core) loop(ctx context.Context, clientID string) {
	c.dispatch(ctx, clientID)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.dispatch(ctx, clientID)
		}
	}
}

// dispatch 派发一次拉取，慢响应不阻塞下个周期
func (c *Core) dispatch(ctx context.Context, clientID string) {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	go func() {
		stats, err := c.fetcher.GetLiveStats(ctx, clientID)
		c.apply(ctx, clientID, seq, stats, err)
	}()
}

// apply 仅接受比已应用序号更新的响应，迟到响应直接丢弃
func (c *Core) apply(ctx context.Context, clientID string, seq uint64, stats *sense.LiveStats, err error) {
	if ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied || c.cur.ClientID != clientID {
		return
	}
	c.applied = seq

	if err != nil {
		// 单次失败不终止轮询，留着旧数据继续显示
		c.cur.Message = err.Error()
		c.log.Warn("live stats fetch failed", "client_id", clientID, "err", err)
		return
	}
	c.cur.Stats = stats
	c.cur.FetchedAt = time.Now()
	c.cur.Message = ""
}
