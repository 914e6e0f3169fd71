// main.go - Command-Line Entry Point
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var memSize uint64
	var traceOff bool

	rootCmd := &cobra.Command{
		Use:   "x64core [rom]",
		Short: "Interpretive x86-64 CPU core",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				fmt.Println("usage: " + cmd.UseLine())
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mem := NewMemory(memSize)
			cpu := NewCPU(mem)
			if traceOff {
				cpu.Trace = discardWriter{}
			}

			if err := cpu.LoadROM(args[0]); err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}

			cpu.Run()

			if cpu.LastFault.Kind != FaultNone {
				os.Exit(1)
			}
			return nil
		},
	}

	rootCmd.Flags().Uint64Var(&memSize, "mem", defaultMemoryCapacity, "memory size in bytes, must be a power of two")
	rootCmd.Flags().BoolVar(&traceOff, "no-trace", false, "suppress per-instruction trace output")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
