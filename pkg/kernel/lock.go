package kernel

import "gvisor.dev/gvisor/pkg/atomicbitops"

// Lock is a single 0/1 cell (spec.md §4.2): not a queue, no ownership
// tracking, no priority inheritance. User code spins on the LOCK
// syscall to achieve mutual exclusion.
type Lock struct {
	cell atomicbitops.Uint32
}

// testAndSet performs the LOCK syscall's kernel-side behavior under
// the kernel's critical section: if the cell reads 0, set it to 1 and
// report success; otherwise report failure and leave it untouched.
func (l *Lock) testAndSet() bool {
	return l.cell.CompareAndSwap(0, 1)
}

// clear performs the UNLOCK syscall's behavior.
func (l *Lock) clear() { l.cell.Store(0) }

// NewLock allocates a lock cell and returns a handle to it. Real
// hardware passes a raw memory address in R1 for the LOCK/UNLOCK
// syscalls; a Go register field cannot hold an arbitrary 64-bit
// pointer in a spec-faithful 32-bit uint32, so this kernel hands out
// small integer handles into its own lock table instead and resolves
// them the same way a real kernel would resolve the address.
func (k *Kernel) NewLock() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lockSeq++
	h := k.lockSeq
	k.locks[h] = &Lock{}
	return h
}

func (k *Kernel) lockByHandle(h uint32) *Lock {
	return k.locks[h]
}
