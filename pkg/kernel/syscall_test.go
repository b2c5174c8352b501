package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchGetTID(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	cur := k.Current()
	cur.ID = 7
	cur.Regs.R0 = SyscallGetTID

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	assert.Equal(t, decisionResumeCurrent, d)
	assert.Equal(t, uint32(7), cur.Regs.R0)
}

func TestDispatchYieldReschedules(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	cur := k.Current()
	cur.Regs.R0 = SyscallYield

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	assert.Equal(t, decisionReschedule, d)
}

func TestDispatchUnknownSyscallPanics(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	cur := k.Current()
	cur.Regs.R0 = 0xFF

	assert.Panics(t, func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		k.dispatch()
	})
}

func TestDispatchSpawnThenForkThenReset(t *testing.T) {
	k := newTestKernel(t, 4, 64)
	cur := k.Current()
	cur.Regs.R0 = SyscallSpawn
	cur.Regs.R1 = 0xABCD // entry, opaque to CORE
	cur.Regs.R2 = 0x1234 // arg

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()
	require.Equal(t, decisionReschedule, d)
	require.NotZero(t, cur.Regs.R0)

	cur.Regs.R0 = SyscallFork
	k.mu.Lock()
	d = k.dispatch()
	k.mu.Unlock()
	assert.Equal(t, decisionResumeCurrent, d)
	assert.NotZero(t, cur.Regs.R0)

	cur.Regs.R0 = SyscallReset
	k.mu.Lock()
	d = k.dispatch()
	k.mu.Unlock()
	assert.Equal(t, decisionReset, d)
}

// TestLockContention exercises spec.md §8 scenario 5: two threads race
// the same lock handle, only one test-and-set succeeds, and the loser
// keeps spinning (UNLOCK always reschedules, successful or not).
func TestLockContention(t *testing.T) {
	k := newTestKernel(t, 2, 64)
	handle := k.NewLock()

	holder := k.Current()
	holder.Regs.R0 = SyscallLock
	holder.Regs.R1 = handle

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()
	require.Equal(t, decisionResumeCurrent, d)
	require.Equal(t, uint32(1), holder.Regs.R0, "first locker must succeed")

	contender := &Slot{State: StateRunnable, Regs: holder.Regs}
	contender.Regs.R0 = SyscallLock
	contender.Regs.R1 = handle
	k.table.slots[1] = *contender
	k.current = 1
	loser := k.table.Slot(1)

	k.mu.Lock()
	d = k.dispatch()
	k.mu.Unlock()
	assert.Equal(t, decisionResumeCurrent, d)
	assert.Zero(t, loser.Regs.R0, "second locker must fail while held")

	k.current = 0
	holder.Regs.R0 = SyscallUnlock
	holder.Regs.R1 = handle
	k.mu.Lock()
	d = k.dispatch()
	k.mu.Unlock()
	assert.Equal(t, decisionReschedule, d)

	k.current = 1
	loser.Regs.R0 = SyscallLock
	loser.Regs.R1 = handle
	k.mu.Lock()
	d = k.dispatch()
	k.mu.Unlock()
	assert.Equal(t, decisionResumeCurrent, d)
	assert.Equal(t, uint32(1), loser.Regs.R0, "lock must be acquirable once cleared")
}

func TestLockUnknownHandleFailsClosed(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	cur := k.Current()
	cur.Regs.R0 = SyscallLock
	cur.Regs.R1 = 0xDEAD // never allocated

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	assert.Equal(t, decisionResumeCurrent, d)
	assert.Zero(t, cur.Regs.R0)
}

// TestWaitExitHandshake exercises spec.md §8 scenario 4: a waiter
// blocks on a target id, the target exits, and WAIT's caller wakes with
// the target's exit status in R0.
func TestWaitExitHandshake(t *testing.T) {
	k := newTestKernel(t, 3, 64)

	childID := k.table.threadSpawn(1, 0)
	require.NotZero(t, childID)
	child := k.table.lookupByID(childID)

	waiterID := k.table.threadSpawn(1, 0)
	require.NotZero(t, waiterID)
	waiter := k.table.lookupByID(waiterID)

	waiter.Regs.R0 = SyscallWait
	waiter.Regs.R1 = childID
	k.current = k.table.PositionOf(waiter)
	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()
	require.Equal(t, decisionReschedule, d)
	require.Equal(t, StateBlocked, waiter.State)
	require.Equal(t, WaitThread, waiter.WaitStatus)

	child.Regs.R0 = SyscallExit
	child.Regs.R1 = 99 // exit status
	k.current = k.table.PositionOf(child)
	k.mu.Lock()
	d = k.dispatch()
	k.mu.Unlock()
	require.Equal(t, decisionReschedule, d)

	assert.Equal(t, StateZombie, child.State)
	assert.Equal(t, StateRunnable, waiter.State)
	assert.Equal(t, uint32(99), waiter.Regs.R0)
}

func TestWaitOnDeadTargetResumesImmediately(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	cur := k.Current()
	cur.Regs.R0 = SyscallWait
	cur.Regs.R1 = 0xFFFF // no such thread

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	assert.Equal(t, decisionResumeCurrent, d)
	assert.Equal(t, StateRunnable, cur.State)
}

// TestKillUnknownTargetReturnsFalse exercises spec.md §8 scenario 6:
// killing a nonexistent tid reports failure and never reschedules.
func TestKillUnknownTargetReturnsFalse(t *testing.T) {
	k := newTestKernel(t, 1, 64)
	cur := k.Current()
	cur.Regs.R0 = SyscallKill
	cur.Regs.R1 = 0xFFFF

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	assert.Equal(t, decisionResumeCurrent, d)
	assert.Zero(t, cur.Regs.R0)
}

func TestKillDoesNotFallThroughToReset(t *testing.T) {
	k := newTestKernel(t, 2, 64)
	targetID := k.table.threadSpawn(1, 0)
	require.NotZero(t, targetID)

	cur := k.Current()
	cur.Regs.R0 = SyscallKill
	cur.Regs.R1 = targetID

	k.mu.Lock()
	d := k.dispatch()
	k.mu.Unlock()

	// REDESIGN FLAG: KILL must resume the caller, never decisionReset.
	assert.Equal(t, decisionResumeCurrent, d)
	assert.Equal(t, uint32(1), cur.Regs.R0)
	assert.Equal(t, StateZombie, k.table.lookupByID(targetID).State)
}
