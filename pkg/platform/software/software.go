// Package software is a goroutine-per-thread implementation of
// platform.Platform, used by the kernel's tests and by cmd/kernelctl's
// demo boot. It stands in for the real SVC trap + SysTick trampoline
// (spec.md §1 excludes that trampoline from the CORE): a "thread" is a
// Go closure running on its own goroutine, and an SVC becomes a
// blocking call on an unbuffered channel instead of a CPU exception.
// This mirrors the teacher's per-thread-goroutine pattern in
// newSubprocess (one goroutine per traced thread, a channel used to
// hand it requests) translated from ptrace-driven threads to
// closure-driven ones.
//
// Preemption here is only approximate: because the Go runtime — not
// this package — owns a user goroutine's actual stack and program
// counter, Run cannot interrupt one mid-instruction the way a real
// SysTick ISR would. When enabled, Run races the thread's next trap
// against a timer of the configured tick period; if the timer wins,
// Run reports TrapTick without touching the still-running goroutine.
// The goroutine is picked up again on the next Run call for the same
// register image. When disabled, Run never arms that timer at all —
// cooperative scheduling only, a thread runs until its next syscall
// (spec.md §4.7 step 7 / §6: disabling Preemption suppresses the
// periodic interrupt entirely).
package software

import (
	"context"
	"sync"
	"time"

	"github.com/embeddedco/cortexkernel/pkg/arch"
	"github.com/embeddedco/cortexkernel/pkg/kernel"
	"github.com/embeddedco/cortexkernel/pkg/platform"
)

// TrapFunc executes syscall number num with arguments a1..a3 and, for
// every syscall except EXIT, blocks until the kernel has resumed this
// thread, then returns the value the kernel placed in R0. It is the
// software platform's stand-in for the SVC instruction.
type TrapFunc func(num, a1, a2, a3 uint32) uint32

// ThreadFunc is a user-mode thread body for the software platform.
type ThreadFunc func(arg uint32, trap TrapFunc)

type threadState struct {
	trapCh   chan platform.Trap
	resumeCh chan struct{}
	done     bool
}

// Platform implements platform.Platform over goroutines.
type Platform struct {
	tickPeriod time.Duration
	preemptive bool

	mu      sync.Mutex
	handles map[uint32]ThreadFunc
	nextID  uint32
	states  map[*arch.RegisterImage]*threadState
}

// New returns a software platform that simulates a periodic interrupt
// every tickPeriod when preemptive is true. When preemptive is false,
// Run never arms that timer: a thread runs until it traps on its own,
// the cooperative-only scheduling cfg.Preemption == false calls for.
func New(tickPeriod time.Duration, preemptive bool) *Platform {
	return &Platform{
		tickPeriod: tickPeriod,
		preemptive: preemptive,
		handles:    make(map[uint32]ThreadFunc),
		states:     make(map[*arch.RegisterImage]*threadState),
	}
}

// Register allocates a PC handle for fn, for use as the entry
// argument to the SPAWN syscall (spec.md §4.1: PC is opaque data to
// the CORE; only a platform gives it meaning).
func (p *Platform) Register(fn ThreadFunc) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.handles[id] = fn
	return id
}

// Run implements platform.Platform.
func (p *Platform) Run(ctx context.Context, regs *arch.RegisterImage) platform.Trap {
	p.mu.Lock()
	st, ok := p.states[regs]
	if !ok || st.done {
		fn := p.handles[regs.PC]
		st = &threadState{
			trapCh:   make(chan platform.Trap),
			resumeCh: make(chan struct{}),
		}
		p.states[regs] = st
		go p.runThread(fn, regs.R0, regs, st)
	} else {
		select {
		case st.resumeCh <- struct{}{}:
		case tr := <-st.trapCh:
			// An earlier Run reported TrapTick while this goroutine was
			// still running; hand its pending trap to the kernel now.
			p.mu.Unlock()
			return tr
		}
	}
	p.mu.Unlock()

	if !p.preemptive {
		select {
		case tr := <-st.trapCh:
			return tr
		case <-ctx.Done():
			return platform.Trap{Kind: platform.TrapTick}
		}
	}

	timer := time.NewTimer(p.tickPeriod)
	defer timer.Stop()

	select {
	case tr := <-st.trapCh:
		return tr
	case <-timer.C:
		return platform.Trap{Kind: platform.TrapTick}
	case <-ctx.Done():
		return platform.Trap{Kind: platform.TrapTick}
	}
}

func (p *Platform) runThread(fn ThreadFunc, arg uint32, regs *arch.RegisterImage, st *threadState) {
	trap := func(num, a1, a2, a3 uint32) uint32 {
		regs.R0, regs.R1, regs.R2, regs.R3 = num, a1, a2, a3
		st.trapCh <- platform.Trap{Kind: platform.TrapSyscall}
		if num == kernel.SyscallExit {
			return 0
		}
		<-st.resumeCh
		return regs.R0
	}

	if fn != nil {
		fn(arg, trap)
	}

	p.mu.Lock()
	st.done = true
	p.mu.Unlock()
}
