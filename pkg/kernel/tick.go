package kernel

// Tick is called once per scheduler tick period (default 1 kHz). It
// advances systime_ms, and — only on the exact tick a sleeper is due —
// wakes every SLEEPING slot whose deadline has arrived and
// recomputes the nearest future deadline (spec.md §4.5).
//
// Deadlines are compared after subtracting systime_ms, so the
// resulting forward-distance wraps naturally (mod 2^32). The nearest
// distance is converted back to an absolute time by adding systime_ms;
// when no sleeper remains, MaxWake is stored as is instead.
func (k *Kernel) Tick() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tickLocked()
}

func (k *Kernel) tickLocked() {
	k.counters.recordTick()
	k.systimeMs.Add(1)
	now := k.systimeMs.Load()

	if now != k.nextWakeMs.Load() {
		return
	}

	k.nextWakeMs.Store(MaxWake)
	next := MaxWake

	for i := 0; i < k.table.Len(); i++ {
		s := k.table.Slot(i)
		if s.State != StateSleeping {
			continue
		}
		if s.SleepDeadline == now {
			s.State = StateRunnable
			continue
		}
		norm := s.SleepDeadline - now // wrap-around subtraction
		if norm < next {
			next = norm
		}
	}

	if next == MaxWake {
		// No sleeper remains; keep the sentinel exact rather than
		// wrapping it through "+= now" (spec.md §8 invariant 5:
		// next_wake_ms == MAX iff no slot is SLEEPING). Under modular
		// distance the wrapped value would have been equivalent to
		// MaxWake anyway; storing it directly just keeps the exposed
		// value literal instead of relying on callers to re-derive
		// the distance themselves.
		k.nextWakeMs.Store(MaxWake)
		return
	}
	k.nextWakeMs.Store(next + now)
}
