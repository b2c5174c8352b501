// Package kernel implements the CORE of a small preemptive
// multithreaded kernel: a fixed-size thread table, a round-robin
// scheduler driven by a periodic tick, a syscall trap dispatcher,
// sleep/wake bookkeeping, test-and-set locks, and the spawn/fork/
// exit/kill/wait thread lifecycle. It owns a single process-wide
// Kernel value rather than loose package globals, guarded by a
// critical-section mutex that stands in for "interrupts disabled".
package kernel

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/embeddedco/cortexkernel/pkg/config"
	"github.com/embeddedco/cortexkernel/pkg/platform"
	"gvisor.dev/gvisor/pkg/atomicbitops"
)

// Kernel is the single owned kernel-state value for a process. All
// mutation goes through methods that hold mu, the software analogue
// of running with interrupts masked (spec.md §5).
type Kernel struct {
	mu sync.Mutex

	table   *Table
	current int // index into table, or Invalid before bootstrap

	systimeMs  atomicbitops.Uint32
	nextWakeMs atomicbitops.Uint32

	locks   map[uint32]*Lock
	lockSeq uint32

	counters countersOf

	cfg      config.Config
	log      *zap.SugaredLogger
	platform platform.Platform
}

// New constructs a Kernel. Init must be called before the kernel is
// run.
func New(cfg config.Config, log *zap.SugaredLogger, p platform.Platform) *Kernel {
	k := &Kernel{
		table:    NewTable(cfg.MaxThreads, cfg.ThreadMemSize),
		current:  Invalid,
		locks:    make(map[uint32]*Lock),
		cfg:      cfg,
		log:      log,
		platform: p,
	}
	k.nextWakeMs.Store(MaxWake)
	return k
}

// Table exposes the thread table for inspection (tests, metrics).
// Callers outside the kernel package must not mutate slots directly.
func (k *Kernel) Table() *Table { return k.table }

// Current returns the currently-running slot, or nil before
// bootstrap.
func (k *Kernel) Current() *Slot {
	if k.current == Invalid {
		return nil
	}
	return k.table.Slot(k.current)
}

// SystimeMs returns the monotonic millisecond counter.
func (k *Kernel) SystimeMs() uint32 { return k.systimeMs.Load() }

// NextWakeMs returns the nearest future sleeper deadline, or MaxWake
// if none.
func (k *Kernel) NextWakeMs() uint32 { return k.nextWakeMs.Load() }

// panicf logs a structured error and halts by panicking. This mirrors
// spec.md §7's panic semantics ("mask interrupts and spin forever,
// leaving the CPU in a state a debugger can halt and inspect"): the
// goroutine calling panicf does not recover, so it parks right there.
func (k *Kernel) panicf(format string, args ...any) {
	if k.log != nil {
		k.log.Errorf("kernel panic: "+format, args...)
	}
	panic(fmt.Sprintf(format, args...))
}
