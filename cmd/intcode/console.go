package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
)

type lineReader interface {
	Readline() (string, error)
}

// runConsole alternates between running vm until it blocks and reading one line
// of input, which is queued as ASCII followed by a newline. It returns when the
// program halts or input ends.
func runConsole(vm *intcode.VM, rl lineReader, w io.Writer, color bool) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	for {
		out, state, err := vm.RunUntilBlocked()
		writeASCII(bw, out, color)
		if err != nil {
			return err
		}
		if state == intcode.StateHalted {
			log.Debug(log.ConsoleMonitoring, "program halted", "steps", vm.Steps())
			return nil
		}
		if err := bw.Flush(); err != nil {
			return err
		}

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return err
		}
		log.Trace(log.ConsoleMonitoring, "input", "line", line)
		vm.PushString(line + "\n")
	}
}

// writeASCII prints ASCII values as text and anything else as a number on its own line.
func writeASCII(w io.Writer, values []intcode.Word, color bool) {
	for _, v := range values {
		if c, ok := v.ASCII(); ok {
			fmt.Fprintf(w, "%c", c)
			continue
		}
		fmt.Fprintln(w, common.Colorize(color, common.ColorGreen, v.String()))
	}
}
