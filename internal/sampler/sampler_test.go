package sampler

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/hub"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// fakeCollector scripts Collect results per call and records overlap.
type fakeCollector struct {
	kind payload.Kind
	fn   func(call int) (payload.Message, error)

	mu       sync.Mutex
	calls    int
	inFlight int
	overlap  bool
}

func (f *fakeCollector) Kind() payload.Kind { return f.kind }

func (f *fakeCollector) Collect(ctx context.Context) (payload.Message, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.inFlight++
	if f.inFlight > 1 {
		f.overlap = true
	}
	f.mu.Unlock()

	msg, err := f.fn(call)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return msg, err
}

func (f *fakeCollector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// versionedCollector adds a details revision to fakeCollector.
type versionedCollector struct {
	fakeCollector
	rev uint64
}

func (v *versionedCollector) DetailsRev() uint64 { return v.rev }

func memoryMessage(int) (payload.Message, error) {
	return &payload.Memory{}, nil
}

func TestLoopPublishesSequencedSnapshots(t *testing.T) {
	h := hub.New(payload.KindMemory, 4, logger.Noop())
	col := &fakeCollector{kind: payload.KindMemory, fn: memoryMessage}
	l := NewLoop(col, h, time.Second, time.Second, logger.Noop())

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	before := time.Now()
	for i := 0; i < 3; i++ {
		l.pass(context.Background())
	}

	for want := uint64(1); want <= 3; want++ {
		snap := <-sub.C()
		assert.Equal(t, want, snap.Seq())
		assert.Equal(t, payload.KindMemory, snap.Kind())
		assert.False(t, snap.Msg.Taken().Before(before))
	}
}

func TestLoopRepublishesLastSnapshotOnFailure(t *testing.T) {
	log := logger.NewBufferLogger()
	h := hub.New(payload.KindMemory, 4, logger.Noop())
	col := &fakeCollector{
		kind: payload.KindMemory,
		fn: func(call int) (payload.Message, error) {
			if call == 2 {
				return nil, stderrors.New("sensor exploded")
			}
			return &payload.Memory{}, nil
		},
	}
	l := NewLoop(col, h, time.Second, time.Second, log)

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	for i := 0; i < 3; i++ {
		l.pass(context.Background())
	}

	first := <-sub.C()
	require.Equal(t, uint64(1), first.Seq())

	// The failed pass re-delivers the previous snapshot, same sequence.
	replay := <-sub.C()
	assert.Same(t, first, replay)

	third := <-sub.C()
	assert.Equal(t, uint64(2), third.Seq(), "failed pass does not consume a sequence number")

	assert.True(t, log.HasLevel("warn"))
}

func TestLoopUnavailableLogsAtDebug(t *testing.T) {
	log := logger.NewBufferLogger()
	h := hub.New(payload.KindGPU, 4, logger.Noop())
	col := &fakeCollector{
		kind: payload.KindGPU,
		fn: func(int) (payload.Message, error) {
			return nil, errors.NewUnavailable("GPU", "no driver")
		},
	}
	l := NewLoop(col, h, time.Second, time.Second, log)

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	l.pass(context.Background())

	// Nothing was ever published, so there is nothing to replay.
	select {
	case snap := <-sub.C():
		t.Fatalf("unexpected delivery: %+v", snap)
	default:
	}

	assert.True(t, log.HasLevel("debug"))
	assert.False(t, log.HasLevel("warn"), "an absent sensor is not a warning")
}

func TestLoopStampsDetailsRev(t *testing.T) {
	h := hub.New(payload.KindCPU, 4, logger.Noop())
	col := &versionedCollector{
		fakeCollector: fakeCollector{
			kind: payload.KindCPU,
			fn: func(int) (payload.Message, error) {
				return &payload.CPU{}, nil
			},
		},
		rev: 7,
	}
	l := NewLoop(col, h, time.Second, time.Second, logger.Noop())

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	l.pass(context.Background())

	snap := <-sub.C()
	assert.Equal(t, uint64(7), snap.DetailsRev)
}

func TestLoopReschedulesRelativeToCompletion(t *testing.T) {
	h := hub.New(payload.KindMemory, 4, logger.Noop())
	col := &fakeCollector{
		kind: payload.KindMemory,
		fn: func(int) (payload.Message, error) {
			time.Sleep(25 * time.Millisecond)
			return &payload.Memory{}, nil
		},
	}
	l := NewLoop(col, h, 10*time.Millisecond, time.Second, logger.Noop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}

	calls := col.callCount()
	assert.False(t, col.overlap, "passes must never overlap")
	assert.GreaterOrEqual(t, calls, 3)
	// Each cycle costs collect (25ms) + interval (10ms); anything close to
	// 15 calls would mean the timer fired during passes.
	assert.LessOrEqual(t, calls, 8)

	after := col.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, col.callCount(), "a cancelled loop must stop sampling")
}
