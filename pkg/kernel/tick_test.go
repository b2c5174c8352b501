package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepWakeScenario(t *testing.T) {
	k := newTestKernel(t, 2, 64)
	k.systimeMs.Store(100)

	slot := k.Current()
	slot.Regs.R0 = SyscallSleep
	slot.Regs.R1 = 50 // ms, CyclesPerMs == 1 at 1000 Hz

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	require.Equal(t, decisionReschedule, d)
	assert.Equal(t, StateSleeping, slot.State)
	assert.Equal(t, uint32(150), slot.SleepDeadline)
	assert.Equal(t, uint32(150), k.NextWakeMs())

	for i := 0; i < 50; i++ {
		k.Tick()
	}

	assert.Equal(t, StateRunnable, slot.State)
	assert.Equal(t, MaxWake, k.NextWakeMs())
}

func TestSleepZeroReturnsImmediately(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	slot := k.Current()
	slot.Regs.R0 = SyscallSleep
	slot.Regs.R1 = 0
	stateBefore := slot.State

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	assert.Equal(t, decisionResumeCurrent, d)
	assert.Equal(t, uint32(0), slot.Regs.R0)
	assert.Equal(t, stateBefore, slot.State)
}

func TestTickAdvancesSystime(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	before := k.SystimeMs()
	k.Tick()
	assert.Equal(t, before+1, k.SystimeMs())
}

func TestNextWakeIsMaxIffNoSleeper(t *testing.T) {
	k := newTestKernel(t, 2, 64)
	assert.Equal(t, MaxWake, k.NextWakeMs())

	slot := k.Current()
	slot.Regs.R0 = SyscallSleep
	slot.Regs.R1 = 10

	k.mu.Lock()
	k.dispatch()
	k.mu.Unlock()

	assert.NotEqual(t, MaxWake, k.NextWakeMs())
}
