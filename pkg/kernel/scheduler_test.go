package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embeddedco/cortexkernel/pkg/config"
)

func newTestKernel(t *testing.T, maxThreads, stackSize int) *Kernel {
	t.Helper()
	cfg := config.Config{
		MaxThreads:       maxThreads,
		ThreadMemSize:    stackSize,
		KernelStackSize:  stackSize,
		Preemption:       true,
		SchedulerIRQFreq: 1000,
	}
	k := New(cfg, zap.NewNop().Sugar(), nil)
	k.Init()
	return k
}

func TestScheduleRoundRobinFairness(t *testing.T) {
	k := newTestKernel(t, 4, 64)

	// From slot 0 (current), spawn A and B.
	idA := k.table.threadSpawn(1, 0)
	idB := k.table.threadSpawn(1, 0)
	require.NotZero(t, idA)
	require.NotZero(t, idB)

	var order []uint32
	for i := 0; i < 4; i++ {
		k.mu.Lock()
		idx := k.schedule()
		order = append(order, k.table.Slot(idx).ID)
		k.mu.Unlock()
	}

	// Starting from slot 0, the successor-first round robin visits
	// A, B, slot 0, A again.
	assert.Equal(t, []uint32{idA, idB, 0, idA}, order)
}

func TestScheduleOneRunnableSlotDispatchesIt(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	k.mu.Lock()
	idx := k.schedule()
	k.mu.Unlock()
	assert.Equal(t, 0, idx)
}

func TestScheduleNoRunnableThreadPanics(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	k.table.Slot(0).State = StateBlocked
	assert.Panics(t, func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		k.schedule()
	})
}

func TestScheduleInvalidCurrentPanics(t *testing.T) {
	k := newTestKernel(t, 2, 64)
	k.current = Invalid
	assert.Panics(t, func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		k.schedule()
	})
}
