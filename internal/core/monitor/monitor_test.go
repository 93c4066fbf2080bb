package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gowvp/sense/pkg/sense"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
	delay map[string]time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
		delay: make(map[string]time.Duration),
	}
}

func (f *fakeFetcher) GetLiveStats(_ context.Context, clientID string) (*sense.LiveStats, error) {
	f.mu.Lock()
	f.calls[clientID]++
	n := f.calls[clientID]
	fail := f.fail[clientID]
	delay := f.delay[clientID]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, errors.New("device offline")
	}
	return &sense.LiveStats{
		Status: "success",
		Data:   sense.LiveCounts{TotalGeral: map[string]int{"Total": n}},
	}, nil
}

func (f *fakeFetcher) count(clientID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[clientID]
}

func testCore(f StatsFetcher) *Core {
	c := NewCore(f)
	c.interval = 20 * time.Millisecond
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestOpenFetchesImmediatelyThenPeriodically(t *testing.T) {
	f := newFakeFetcher()
	c := testCore(f)
	defer c.Close()

	if _, err := c.Open("cam-1"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return c.Current().Stats != nil })
	waitFor(t, func() bool { return f.count("cam-1") >= 3 })

	snap := c.Current()
	if snap.ClientID != "cam-1" || snap.Stats.Data.TotalGeral["Total"] < 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestOpenRequiresClientID(t *testing.T) {
	c := testCore(newFakeFetcher())
	if _, err := c.Open(""); err == nil {
		t.Fatal("expected error for empty client_id")
	}
}

func TestSwitchDeviceClosesPreviousPoller(t *testing.T) {
	f := newFakeFetcher()
	c := testCore(f)
	defer c.Close()

	if _, err := c.Open("cam-a"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return f.count("cam-a") >= 2 })

	if _, err := c.Open("cam-b"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return c.Current().Stats != nil && c.Current().ClientID == "cam-b" })

	// 旧轮询必须停止
	before := f.count("cam-a")
	time.Sleep(100 * time.Millisecond)
	if after := f.count("cam-a"); after != before {
		t.Fatalf("previous poller still running: %d -> %d", before, after)
	}
	if got := c.Current().ClientID; got != "cam-b" {
		t.Fatalf("client_id = %s, want cam-b", got)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.delay["cam-slow"] = 150 * time.Millisecond
	c := testCore(f)
	defer c.Close()

	// 慢设备的响应还在途中就切到了新设备
	if _, err := c.Open("cam-slow"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := c.Open("cam-fast"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return c.Current().Stats != nil })
	time.Sleep(200 * time.Millisecond)
	if got := c.Current().ClientID; got != "cam-fast" {
		t.Fatalf("stale response overwrote the view: %s", got)
	}
}

func TestFetchErrorKeepsPolling(t *testing.T) {
	f := newFakeFetcher()
	f.fail["cam-x"] = true
	c := testCore(f)
	defer c.Close()

	if _, err := c.Open("cam-x"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return c.Current().Message != "" })
	waitFor(t, func() bool { return f.count("cam-x") >= 3 })

	// 恢复后下个周期就能拿到数据
	f.mu.Lock()
	f.fail["cam-x"] = false
	f.mu.Unlock()
	waitFor(t, func() bool {
		snap := c.Current()
		return snap.Stats != nil && snap.Message == ""
	})
}

func TestCloseStopsPolling(t *testing.T) {
	f := newFakeFetcher()
	c := testCore(f)

	if _, err := c.Open("cam-1"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return f.count("cam-1") >= 1 })
	c.Close()

	before := f.count("cam-1")
	time.Sleep(100 * time.Millisecond)
	if after := f.count("cam-1"); after != before {
		t.Fatalf("poller still running after close: %d -> %d", before, after)
	}
	if snap := c.Current(); snap.ClientID != "" || snap.Stats != nil {
		t.Fatalf("view not cleared: %+v", snap)
	}
}
