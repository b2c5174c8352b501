// Package platform defines the context-switch contract between the
// kernel and whatever executes user-thread code (spec.md §4.3). The
// CORE depends only on this interface, never on a concrete backend —
// the same separation gVisor draws between pkg/sentry/kernel and its
// pluggable pkg/sentry/platform backends (ptrace, systrap, KVM). The
// real Cortex-M backend — the SVC trap, the SysTick ISR, the register
// save/restore trampoline — is out of this repository's scope
// (spec.md §1); it is named here as a contract for that trampoline to
// satisfy, and exercised in tests/demo by the software backend in
// pkg/platform/software.
package platform

import (
	"context"

	"github.com/embeddedco/cortexkernel/pkg/arch"
)

// TrapKind is why Run returned control to the kernel.
type TrapKind int

const (
	// TrapSyscall means the thread executed a supervisor call; regs.R0
	// holds the syscall number and regs.R1..R3 its arguments.
	TrapSyscall TrapKind = iota
	// TrapTick means the periodic interrupt preempted the thread. Its
	// register image has already been saved; the thread's State
	// remains RUNNABLE (spec.md §5).
	TrapTick
)

// Trap describes why Run returned.
type Trap struct {
	Kind TrapKind
}

// Platform loads regs into "the CPU" and runs the corresponding user
// thread until it traps back into the kernel, then reports why. On
// real hardware this exit-to-user/entry-to-kernel boundary is
// implemented by a trampoline that never returns to its caller except
// through an interrupt or SVC; Run models that boundary as an
// ordinary blocking call so the kernel's scheduler/dispatcher loop
// (pkg/kernel) can be expressed as a normal Go control-flow loop
// rather than a literal noreturn recursion.
type Platform interface {
	Run(ctx context.Context, regs *arch.RegisterImage) Trap
}
