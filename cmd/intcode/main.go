package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/colorfulnotion/intcode/cluster"
	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &CommandConfig{}

	var rootCmd = &cobra.Command{
		Use:          "intcode",
		Short:        "Intcode interpreter and machine schedulers",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.InitLogger(cfg.LogLevel)
			log.EnableModules(cfg.Debug)
			log.Trace(log.ConsoleMonitoring, "config", "cfg", cfg.String())
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "log level (trace, debug, info, warn, error, crit)")
	pf.StringVar(&cfg.Debug, "debug", "", "comma separated log modules to enable (vm_mod,cluster_mod,console_mod)")
	pf.StringVar(&cfg.Trace, "trace", "", "write a JSONL instruction trace to this file (- for stderr)")
	pf.StringSliceVar(&cfg.TraceIDs, "trace-id", nil, "only trace machines with these identifiers (amp-0, 3, ...)")
	pf.Int64Var(&cfg.MemoryLimit, "memory-limit", intcode.DefaultMemoryLimit, "maximum memory cells per machine")
	pf.Int64SliceVar(&cfg.Input, "input", nil, "comma separated input values")
	pf.BoolVar(&cfg.Color, "color", false, "colorize terminal output")

	rootCmd.AddCommand(
		newRunCmd(cfg),
		newASCIICmd(cfg),
		newDisasmCmd(cfg),
		newChainCmd(cfg),
		newNetworkCmd(cfg),
		newVersionCmd(),
	)
	return rootCmd
}

func newRunCmd(cfg *CommandConfig) *cobra.Command {
	var ascii bool
	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run a program to completion and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			vm, closeTrace, err := cfg.newMachine(image, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out, runErr := vm.Run()

			w := cmd.OutOrStdout()
			if ascii {
				text, rest := intcode.DecodeASCII(out)
				fmt.Fprint(w, text)
				if len(rest) > 0 {
					fmt.Fprintln(w, intcode.Format(rest))
				}
			} else {
				fmt.Fprintln(w, intcode.Format(out))
			}
			return errors.Join(runErr, closeTrace())
		},
	}
	cmd.Flags().BoolVar(&ascii, "ascii", false, "print output values below 128 as text")
	return cmd
}

func newASCIICmd(cfg *CommandConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "ascii <program>",
		Short: "Interactive line console for ASCII programs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			vm, closeTrace, err := cfg.newMachine(image, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      common.Colorize(cfg.Color, common.ColorYellow, ">") + " ",
				HistoryFile: filepath.Join(os.TempDir(), "intcode_console_history.txt"),
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			return errors.Join(runConsole(vm, rl, cmd.OutOrStdout(), cfg.Color), closeTrace())
		},
	}
}

func newDisasmCmd(cfg *CommandConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <program>",
		Short: "Disassemble a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, line := range intcode.DisassembleCode(image) {
				addr, text, _ := strings.Cut(line, ": ")
				fmt.Fprintf(w, "%s: %s\n", common.Colorize(cfg.Color, common.ColorGray, addr), common.Colorize(cfg.Color, common.ColorCyan, text))
			}
			return nil
		},
	}
}

func newChainCmd(cfg *CommandConfig) *cobra.Command {
	var (
		phases []int64
		search bool
		signal int64
	)
	cmd := &cobra.Command{
		Use:   "chain <program>",
		Short: "Run machines in a feedback ring, one per phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			opts, closeTrace, err := cfg.clusterOptions(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if search {
				best, order, err := cluster.MaxChainSignal(cmd.Context(), image, phases, opts...)
				if err != nil {
					return errors.Join(err, closeTrace())
				}
				fmt.Fprintf(w, "%s %s\n", best, intcode.Format(intcode.Words(order...)))
				return closeTrace()
			}

			out, err := cluster.NewChain(image, phases, opts...).Run(cmd.Context(), signal)
			if err != nil {
				return errors.Join(err, closeTrace())
			}
			fmt.Fprintln(w, out)
			return closeTrace()
		},
	}
	cmd.Flags().Int64SliceVar(&phases, "phases", []int64{0, 1, 2, 3, 4}, "phase value for each machine")
	cmd.Flags().BoolVar(&search, "search", false, "try every permutation of --phases and print the best")
	cmd.Flags().Int64Var(&signal, "signal", 0, "initial signal for the first machine")
	return cmd
}

func newNetworkCmd(cfg *CommandConfig) *cobra.Command {
	var nodes int
	cmd := &cobra.Command{
		Use:   "network <program>",
		Short: "Run a packet network and report NAT traffic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			opts, closeTrace, err := cfg.clusterOptions(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			first, err := cluster.FirstNATPacket(ctx, image, nodes, opts...)
			if err != nil {
				return errors.Join(err, closeTrace())
			}
			y, err := cluster.FirstRepeatedWake(ctx, image, nodes, opts...)
			if err != nil {
				return errors.Join(err, closeTrace())
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "first NAT packet: %s\n", first)
			fmt.Fprintf(w, "first repeated wake: %s\n", y)
			return closeTrace()
		},
	}
	cmd.Flags().IntVar(&nodes, "nodes", 50, "number of nodes")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and commit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "intcode %s (%s)\n", common.Version, common.GetCommitHash())
		},
	}
}
