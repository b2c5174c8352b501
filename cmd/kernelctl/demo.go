package main

import (
	"github.com/embeddedco/cortexkernel/internal/serial"
	"github.com/embeddedco/cortexkernel/pkg/kernel"
	"github.com/embeddedco/cortexkernel/pkg/platform/software"
)

// heartbeatWorker sleeps for intervalMs, writes one byte to sink,
// beats times times, then exits. It demonstrates the SLEEP syscall
// round-tripping through the software platform's trap closure.
func heartbeatWorker(sink serial.Sink, label byte, intervalMs uint32, times uint32) software.ThreadFunc {
	return func(arg uint32, trap software.TrapFunc) {
		for i := uint32(0); i < times; i++ {
			trap(kernel.SyscallSleep, intervalMs, 0, 0)
			_ = sink.PutChar(label)
		}
		trap(kernel.SyscallExit, times, 0, 0)
	}
}

// spawnerWorker spawns count counter children plus one heartbeat
// child running heartbeatEntry, waits for each to exit in turn, then
// exits itself with the number of children it reaped in R1.
func spawnerWorker(childEntry, heartbeatEntry uint32, count uint32) software.ThreadFunc {
	return func(arg uint32, trap software.TrapFunc) {
		children := make([]uint32, 0, count+1)
		if id := trap(kernel.SyscallSpawn, heartbeatEntry, 0, 0); id != 0 {
			children = append(children, id)
		}
		for i := uint32(0); i < count; i++ {
			id := trap(kernel.SyscallSpawn, childEntry, i, 0)
			if id != 0 {
				children = append(children, id)
			}
		}
		for _, id := range children {
			trap(kernel.SyscallWait, id, 0, 0)
		}
		trap(kernel.SyscallExit, uint32(len(children)), 0, 0)
	}
}

// counterChild takes the shared lock, writes one '.' to sink, releases
// the lock, then exits with arg as its status, to give the spawner
// something to wait on.
func counterChild(sink serial.Sink, lockHandle uint32) software.ThreadFunc {
	return func(arg uint32, trap software.TrapFunc) {
		for trap(kernel.SyscallLock, lockHandle, 0, 0) == 0 {
			trap(kernel.SyscallYield, 0, 0, 0)
		}
		_ = sink.PutChar('.')
		trap(kernel.SyscallUnlock, lockHandle, 0, 0)
		trap(kernel.SyscallExit, arg, 0, 0)
	}
}
