package kernel

import "github.com/embeddedco/cortexkernel/pkg/arch"

// ThreadFunc is an opaque thread entry point, stored verbatim in a
// slot's PC register. The CORE never calls or interprets it — only a
// platform trampoline does — so it is carried here as plain data
// (spec.md §4.1: "a function reference accepting a single pointer
// argument"). In this software rendition the value a caller puts here
// is whatever a platform implementation uses to identify the thread
// body; the CORE's only contract is "store it, return it unchanged".
type ThreadFunc = uint32

// freshTID returns the next thread id, skipping zero on rollover
// (spec.md §4.1 fresh_tid, §8 "tid counter never returns 0").
func (t *Table) freshTID() uint32 {
	id := t.tidCounter.Add(1)
	if id == 0 {
		id = t.tidCounter.Add(1)
	}
	return id
}

// ForceTIDCounter sets the raw counter value. Exposed only so tests
// can exercise the rollover boundary (spec.md §8).
func (t *Table) ForceTIDCounter(v uint32) { t.tidCounter.Store(v) }

// firstEmpty returns the index of the first EMPTY slot. Per the
// REDESIGN FLAG in spec.md §9 ("T_ZOMBIE never reaped"), if no EMPTY
// slot exists it falls back to the lowest-indexed ZOMBIE slot so a
// zombie is implicitly reclaimable the next time something needs a
// slot, instead of leaking permanently.
func (t *Table) firstEmpty() int {
	for i := range t.slots {
		if t.slots[i].State == StateEmpty {
			return i
		}
	}
	for i := range t.slots {
		if t.slots[i].State == StateZombie {
			return i
		}
	}
	return Invalid
}

// lookupByID returns the slot carrying id, or nil if none is live.
// Zero is never a real, live, non-slot-0 id, but slot 0 is allowed to
// carry id 0 by the bootstrap convention, so this does a plain linear
// scan rather than special-casing zero.
func (t *Table) lookupByID(id uint32) *Slot {
	for i := range t.slots {
		if t.slots[i].State != StateEmpty && t.slots[i].ID == id {
			return &t.slots[i]
		}
	}
	return nil
}

// zeroSlot clears a slot's identity, state, sleep deadline, wait
// status, register image and stack region. It is a no-op if s does
// not point into this table (spec.md §4.1, §7 "out-of-table reference
// ... becomes a no-op"). Idempotent.
func (t *Table) zeroSlot(s *Slot) {
	i := t.PositionOf(s)
	if i == Invalid {
		return
	}
	s.ID = 0
	s.State = StateEmpty
	s.SleepDeadline = 0
	s.WaitStatus = WaitNone
	s.Regs = arch.RegisterImage{}
	stack := t.stacks[i]
	for j := range stack {
		stack[j] = 0
	}
}

// threadInit zeros the tid counter and every slot (spec.md §4.1).
func (t *Table) threadInit() {
	t.tidCounter.Store(0)
	for i := range t.slots {
		t.zeroSlot(&t.slots[i])
	}
}

// threadSpawn finds the first reusable slot, seeds its register image
// and marks it RUNNABLE. Returns 0 if the table is exhausted (spec.md
// §4.1, §7 "table exhausted ... return 0").
func (t *Table) threadSpawn(entry ThreadFunc, arg uint32) uint32 {
	i := t.firstEmpty()
	if i == Invalid {
		return 0
	}
	s := &t.slots[i]
	t.zeroSlot(s)
	s.State = StateRunnable
	s.ID = t.freshTID()
	s.Regs.PC = entry
	s.Regs.R0 = arg
	s.Regs.SP = t.StackTop(i)
	s.Regs.PSR = arch.ThumbStateEnabled
	return s.ID
}

// threadCopy duplicates src's entire slot record and stack region
// into dest, byte-for-byte, then assigns dest a freshly minted id.
// dest must be EMPTY and src must be non-EMPTY; any stack-resident
// pointer that referred into src's stack still points into src's
// stack after the copy — an inherited hazard (spec.md §4.1, §9).
func (t *Table) threadCopy(dest, src *Slot) bool {
	di, si := t.PositionOf(dest), t.PositionOf(src)
	if di == Invalid || si == Invalid {
		return false
	}
	if dest.State != StateEmpty || src.State == StateEmpty {
		return false
	}
	*dest = *src
	copy(t.stacks[di], t.stacks[si])
	dest.ID = t.freshTID()
	return true
}

// threadFork finds a reusable slot (see firstEmpty), clears it and
// copies src into it, returning the child's slot (or nil on failure).
func (t *Table) threadFork(src *Slot) (*Slot, bool) {
	if t.PositionOf(src) == Invalid {
		return nil, false
	}
	i := t.firstEmpty()
	if i == Invalid {
		return nil, false
	}
	dest := &t.slots[i]
	t.zeroSlot(dest)
	if !t.threadCopy(dest, src) {
		return nil, false
	}
	return dest, true
}

// threadKill marks s ZOMBIE. Registers and stack are left untouched;
// reclamation happens on next reuse via zeroSlot (spec.md §4.1).
func (t *Table) threadKill(s *Slot) bool {
	if t.PositionOf(s) == Invalid {
		return false
	}
	s.State = StateZombie
	return true
}

// threadNotifyWaiting wakes every slot BLOCKED on exiting's id,
// handing each waiter the exiting thread's exit status (spec.md §4.1).
func (t *Table) threadNotifyWaiting(exiting *Slot) {
	if t.PositionOf(exiting) == Invalid {
		return
	}
	status := exiting.Regs.R1
	for i := range t.slots {
		w := &t.slots[i]
		if w.State == StateBlocked && w.WaitStatus == WaitThread && w.Regs.R1 == exiting.ID {
			w.Regs.R0 = status
			w.State = StateRunnable
		}
	}
}
