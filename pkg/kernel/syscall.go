package kernel

// Syscall numbers (spec.md §6, stable ABI contract).
const (
	SyscallExit    = 0
	SyscallYield   = 1
	SyscallSleep   = 2
	SyscallSpawn   = 3
	SyscallFork    = 4
	SyscallReset   = 5
	SyscallWait    = 6
	SyscallKill    = 7
	SyscallGetTID  = 8
	SyscallLock    = 9
	SyscallUnlock  = 10
)

// decision tells the kernel's run loop (run.go) what to do with the
// CPU after a syscall has been handled: resume the same thread
// directly, or reschedule. This is the software-loop equivalent of
// the original's kernel_run(current) vs. kernel_schedule() choice at
// the tail of every syscall case (spec.md §4.6).
type decision int

const (
	decisionResumeCurrent decision = iota
	decisionReschedule
	decisionReset
)

// dispatch handles the syscall trapped by the currently-running
// thread. Callers must hold k.mu. Unknown syscall numbers panic
// (spec.md §7).
func (k *Kernel) dispatch() decision {
	cur := k.table.Slot(k.current)
	regs := &cur.Regs
	k.counters.recordSyscall(regs.R0)

	switch regs.R0 {
	case SyscallGetTID:
		regs.R0 = cur.ID
		return decisionResumeCurrent

	case SyscallExit:
		k.table.threadNotifyWaiting(cur)
		k.table.threadKill(cur)
		return decisionReschedule

	case SyscallYield:
		return decisionReschedule

	case SyscallLock:
		lk := k.lockByHandle(regs.R1)
		if lk == nil {
			regs.R0 = 0
		} else {
			regs.R0 = boolToUint32(lk.testAndSet())
		}
		return decisionResumeCurrent

	case SyscallUnlock:
		if lk := k.lockByHandle(regs.R1); lk != nil {
			lk.clear()
		}
		return decisionReschedule

	case SyscallFork:
		child, ok := k.table.threadFork(cur)
		if ok {
			child.Regs.R0 = 0
			regs.R0 = child.ID
		} else {
			regs.R0 = 0
		}
		return decisionResumeCurrent

	case SyscallSleep:
		if regs.R1 > 0 {
			ticks := regs.R1 / k.cfg.CyclesPerMs()
			regs.R0 = ticks
			deadline := k.systimeMs.Load() + ticks
			cur.SleepDeadline = deadline
			if (deadline - k.systimeMs.Load()) < (k.nextWakeMs.Load() - k.systimeMs.Load()) {
				k.nextWakeMs.Store(deadline)
			}
			cur.State = StateSleeping
			return decisionReschedule
		}
		regs.R0 = 0
		return decisionResumeCurrent

	case SyscallKill:
		target := k.table.lookupByID(regs.R1)
		if target != nil {
			k.table.threadNotifyWaiting(target)
			regs.R0 = boolToUint32(k.table.threadKill(target))
		} else {
			regs.R0 = 0
		}
		return decisionResumeCurrent

	case SyscallReset:
		return decisionReset

	case SyscallSpawn:
		regs.R0 = k.table.threadSpawn(regs.R1, regs.R2)
		return decisionReschedule

	case SyscallWait:
		if target := k.table.lookupByID(regs.R1); target != nil {
			if target.State == StateZombie {
				// The target has already exited: resume with its exit
				// status instead of blocking on a thread that never exits.
				regs.R0 = target.Regs.R1
				return decisionResumeCurrent
			}
			cur.State = StateBlocked
			cur.WaitStatus = WaitThread
			// The awaited id remains in regs.R1, per spec.md §3.
			return decisionReschedule
		}
		return decisionResumeCurrent

	default:
		k.panicf("unknown syscall number %d", regs.R0)
		return decisionReset // unreachable; panicf never returns
	}
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
