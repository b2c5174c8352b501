// Command kernelctl boots the software-backed kernel as a standalone
// process: it loads configuration, wires up structured logging and
// Prometheus metrics, registers a small set of demo threads against
// the goroutine platform, and runs the kernel until it resets or the
// process is interrupted.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
