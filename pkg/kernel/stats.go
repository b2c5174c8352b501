package kernel

import "gvisor.dev/gvisor/pkg/atomicbitops"

// Stats is a point-in-time snapshot of kernel activity counters,
// cheap enough to poll from an external metrics reporter (spec.md §2A:
// the kernel carries counters, not a Prometheus dependency itself — a
// caller such as cmd/kernelctl owns translating these into collectors).
type Stats struct {
	Ticks           uint64
	Syscalls        [11]uint64
	ContextSwitches uint64
}

// countersOf holds the raw atomic counters backing Stats. It is held by
// value in Kernel.counters and is never copied after construction.
type countersOf struct {
	ticks           atomicbitops.Uint64
	syscalls        [11]atomicbitops.Uint64
	contextSwitches atomicbitops.Uint64
}

func (c *countersOf) recordTick() { c.ticks.Add(1) }

func (c *countersOf) recordSyscall(num uint32) {
	if int(num) < len(c.syscalls) {
		c.syscalls[num].Add(1)
	}
}

func (c *countersOf) recordContextSwitch() { c.contextSwitches.Add(1) }

func (c *countersOf) snapshot() Stats {
	var s Stats
	s.Ticks = c.ticks.Load()
	s.ContextSwitches = c.contextSwitches.Load()
	for i := range c.syscalls {
		s.Syscalls[i] = c.syscalls[i].Load()
	}
	return s
}

// Stats returns a snapshot of the kernel's activity counters.
func (k *Kernel) Stats() Stats { return k.counters.snapshot() }

// ThreadCounts tallies live slots by state, for gauges that mirror
// table occupancy rather than cumulative activity.
func (k *Kernel) ThreadCounts() map[State]int {
	k.mu.Lock()
	defer k.mu.Unlock()
	counts := make(map[State]int, 5)
	for i := 0; i < k.table.Len(); i++ {
		counts[k.table.Slot(i).State]++
	}
	return counts
}
