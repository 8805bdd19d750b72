package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/onnwee/chat-translator/telemetry"
	"github.com/onnwee/chat-translator/twitchapi"
)

type fakeLiveChecker struct {
	mu   sync.Mutex
	live bool
}

func (f *fakeLiveChecker) setLive(live bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live = live
}

func (f *fakeLiveChecker) GetStreams(ctx context.Context, login string) ([]twitchapi.StreamMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live {
		return nil, nil
	}
	return []twitchapi.StreamMeta{{Title: "Live Now", StartedAt: time.Now().UTC()}}, nil
}

// swapRunRelay replaces the relay starter for the duration of a test and
// returns counters for starts and stops.
func swapRunRelay(t *testing.T) (*atomic.Int32, *atomic.Int32) {
	t.Helper()
	var starts, stops atomic.Int32
	orig := runRelay
	runRelay = func(ctx context.Context, r *Relay) error {
		starts.Add(1)
		<-ctx.Done()
		stops.Add(1)
		return ctx.Err()
	}
	t.Cleanup(func() { runRelay = orig })
	return &starts, &stops
}

func TestAutoRelayConnectsWhileLive(t *testing.T) {
	telemetry.Init()
	starts, stops := swapRunRelay(t)
	checker := &fakeLiveChecker{}
	checker.setLive(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := &Relay{Channel: "testchannel"}
	go StartAutoRelay(ctx, relay, checker, 20*time.Millisecond)

	waitFor(t, func() bool { return starts.Load() == 1 })

	// Going offline must stop the relay.
	checker.setLive(false)
	waitFor(t, func() bool { return stops.Load() == 1 })

	// Back online starts it again.
	checker.setLive(true)
	waitFor(t, func() bool { return starts.Load() == 2 })

	cancel()
	waitFor(t, func() bool { return stops.Load() == 2 })
}

func TestAutoRelayStaysIdleWhileOffline(t *testing.T) {
	telemetry.Init()
	starts, _ := swapRunRelay(t)
	checker := &fakeLiveChecker{}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	relay := &Relay{Channel: "testchannel"}
	StartAutoRelay(ctx, relay, checker, 20*time.Millisecond)

	if starts.Load() != 0 {
		t.Errorf("relay started %d times for an offline channel, want 0", starts.Load())
	}
}

func TestAutoRelayEmptyChannelAborts(t *testing.T) {
	telemetry.Init()
	starts, _ := swapRunRelay(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	StartAutoRelay(ctx, &Relay{}, &fakeLiveChecker{}, 10*time.Millisecond)

	if starts.Load() != 0 {
		t.Errorf("relay started despite empty channel")
	}
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
	t.Fatalf("condition not met within deadline")
}
