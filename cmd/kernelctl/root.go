package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kernelctl",
		Short: "Run and inspect the software-simulated preemptive kernel",
	}
	root.AddCommand(newBootCmd())
	return root
}
