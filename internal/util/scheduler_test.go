package util

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSchedulerTicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	s := NewScheduler("test",
		func() time.Duration { return 10 * time.Millisecond },
		func(ctx context.Context) { ticks.Add(1) },
		zap.NewNop(),
	)

	s.Start(context.Background())
	assert.True(t, s.Running())

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())

	// no tick fires after Stop returns
	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load())
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	var ticks atomic.Int32
	s := NewScheduler("test",
		func() time.Duration { return 10 * time.Millisecond },
		func(ctx context.Context) { ticks.Add(1) },
		zap.NewNop(),
	)

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx) // second Start must not spawn a second loop
	defer s.Stop()

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)

	before := ticks.Load()
	time.Sleep(35 * time.Millisecond)
	after := ticks.Load()
	assert.LessOrEqual(t, after-before, int32(5), "a duplicate loop would roughly double the tick rate")
}

func TestSchedulerParentCancelClearsRunning(t *testing.T) {
	var ticks atomic.Int32
	s := NewScheduler("test",
		func() time.Duration { return 10 * time.Millisecond },
		func(ctx context.Context) { ticks.Add(1) },
		zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.True(t, s.Running())

	cancel()
	assert.Eventually(t, func() bool { return !s.Running() }, time.Second, 5*time.Millisecond,
		"a loop killed by its parent context must not report running")

	// and the scheduler is reusable: a fresh Start spawns a new loop
	s.Start(context.Background())
	defer s.Stop()
	assert.True(t, s.Running())
	before := ticks.Load()
	assert.Eventually(t, func() bool { return ticks.Load() > before }, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler("test",
		func() time.Duration { return time.Minute },
		func(ctx context.Context) {},
		zap.NewNop(),
	)

	s.Stop() // must not panic or block
	assert.False(t, s.Running())
}

func TestSchedulerRestart(t *testing.T) {
	var ticks atomic.Int32
	s := NewScheduler("test",
		func() time.Duration { return 10 * time.Millisecond },
		func(ctx context.Context) { ticks.Add(1) },
		zap.NewNop(),
	)

	s.Restart(context.Background()) // restart on an idle scheduler just starts it
	defer s.Stop()
	assert.True(t, s.Running())

	s.Restart(context.Background())
	assert.True(t, s.Running())
	assert.Eventually(t, func() bool { return ticks.Load() >= 1 }, time.Second, 5*time.Millisecond)
}
