package kernel

import (
	"context"
	"errors"

	"github.com/embeddedco/cortexkernel/pkg/platform"
)

// ErrReset is returned by Run when the RESET syscall is executed. A
// real trampoline would write arch.ResetMagic to
// arch.ResetControlRegister and never return; the software rendition
// surfaces it as a sentinel error instead (spec.md §6).
var ErrReset = errors.New("kernel: reset requested")

// Run drives the kernel: repeatedly picks a thread (or resumes the
// one that just trapped, per the dispatcher's decision) and hands it
// to the platform until the context is canceled or RESET is invoked.
//
// This loop is the software expression of spec.md §4.3/§4.4's noreturn
// kernel_run/kernel_schedule pair: on real hardware neither function
// returns to its caller, they only ever tail into one another or into
// user code. Collapsing that mutual tail-recursion into a loop is the
// one structural liberty this rendition takes with the contract —
// every state transition it performs is identical to spec.md's.
func (k *Kernel) Run(ctx context.Context) error {
	resumeCurrent := false
	prev := Invalid

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		k.mu.Lock()
		var idx int
		if resumeCurrent {
			idx = k.current
		} else {
			idx = k.schedule()
		}
		if idx != prev {
			k.counters.recordContextSwitch()
		}
		prev = idx
		regs := &k.table.Slot(idx).Regs
		k.mu.Unlock()

		trap := k.platform.Run(ctx, regs)

		k.mu.Lock()
		switch trap.Kind {
		case platform.TrapTick:
			k.tickLocked()
			resumeCurrent = false
		case platform.TrapSyscall:
			switch k.dispatch() {
			case decisionResumeCurrent:
				resumeCurrent = true
			case decisionReschedule:
				resumeCurrent = false
			case decisionReset:
				k.mu.Unlock()
				return ErrReset
			}
		}
		k.mu.Unlock()
	}
}
