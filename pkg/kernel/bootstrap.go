package kernel

// Init initializes the thread table and adopts slot 0 as the calling
// context's thread (spec.md §4.7). On real hardware this relocates the
// caller's live stack, byte for byte, into slot 0's stack region and
// reseats SP so the caller is retroactively running as thread 0; a Go
// goroutine's stack is managed by the Go runtime and cannot be
// relocated from user code, so that byte-for-byte copy is not
// performed here — it remains a contract for a real trampoline
// (spec.md §9 documents the same hazard the original carries: nothing
// may hold a pointer into the pre-move stack). What Init does
// reproduce exactly is every other observable post-condition spec.md
// §8 scenario 1 names: slot 0 ends RUNNABLE with id 0 and a register
// image whose SP is seeded to the top of slot 0's stack region,
// systime_ms is 0, and next_wake_ms is MaxWake.
func (k *Kernel) Init() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.table.threadInit()

	slot0 := k.table.Slot(0)
	slot0.State = StateRunnable
	slot0.ID = 0
	slot0.Regs.SP = k.table.StackTop(0)
	k.current = 0

	k.systimeMs.Store(0)
	k.nextWakeMs.Store(MaxWake)

	for i := 0; i < k.table.Len(); i++ {
		s := k.table.Slot(i)
		if k.table.PositionOf(s) != i {
			k.panicf("bootstrap: slot %d position mismatch", i)
		}
	}

	if k.log != nil {
		k.log.Infow("kernel initialized",
			"max_threads", k.cfg.MaxThreads,
			"thread_mem_size", k.cfg.ThreadMemSize,
			"preemption", k.cfg.Preemption,
			"scheduler_irq_freq", k.cfg.SchedulerIRQFreq,
		)
	}
}

// SeedMain assigns slot 0's entry point and argument. Real hardware
// never needs this: the caller's own PC already points into the
// program it was running before Init relocated it onto slot 0's stack.
// The software rendition has no such running PC to inherit, so a
// platform's caller must supply one after Init (spec.md §9 documents
// the same gap the stack-relocation contract leaves open).
func (k *Kernel) SeedMain(entry ThreadFunc, arg uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	slot0 := k.table.Slot(0)
	slot0.Regs.PC = entry
	slot0.Regs.R0 = arg
}
