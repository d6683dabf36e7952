// Package cluster drives groups of intcode machines cooperatively: amplifier
// chains with feedback, packet-switched networks and breadth-first exploration
// over cloned machines. Every scheduler is single-goroutine per group and copies
// values between machine queues.
package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// DefaultMaxRounds bounds every scheduler loop unless overridden.
const DefaultMaxRounds = 1_000_000

var errNoSignal = errors.New("cluster: final machine produced no output")

// Chain is a ring of machines: each output of machine i becomes input of
// machine (i+1) mod n.
type Chain struct {
	vms       []*intcode.VM
	MaxRounds int
}

// NewChain boots one machine per phase from image, seeding each with its phase.
func NewChain(image []intcode.Word, phases []int64, opts ...Option) *Chain {
	c := &Chain{vms: make([]*intcode.VM, len(phases))}
	for i, phase := range phases {
		c.vms[i] = boot(image, fmt.Sprintf("amp-%d", i), phase, opts)
	}
	return c
}

func (c *Chain) Machines() []*intcode.VM {
	return c.vms
}

// Run feeds signal to the first machine and schedules round-robin until every
// machine halts. It returns the last value emitted by the final machine.
func (c *Chain) Run(ctx context.Context, signal int64) (intcode.Word, error) {
	n := len(c.vms)
	if n == 0 {
		return intcode.Word{}, errNoSignal
	}
	maxRounds := c.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	c.vms[0].PushInput(signal)
	var (
		last    intcode.Word
		emitted bool
	)
	for round := 0; round < maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return intcode.Word{}, err
		}

		running, routed := 0, 0
		for i, vm := range c.vms {
			if vm.Halted() {
				continue
			}
			out, state, err := vm.RunUntilBlocked()
			if err != nil {
				return intcode.Word{}, err
			}
			if state != intcode.StateHalted {
				running++
			}
			if len(out) == 0 {
				continue
			}
			routed += len(out)
			if i == n-1 {
				last, emitted = out[len(out)-1], true
			}
			next := c.vms[(i+1)%n]
			if !next.Halted() {
				next.PushWords(out...)
			}
		}
		log.Trace(log.ClusterMonitoring, "chain round", "round", round, "running", running, "routed", routed)

		if running == 0 {
			if !emitted {
				return intcode.Word{}, errNoSignal
			}
			return last, nil
		}
		if routed == 0 {
			return intcode.Word{}, fmt.Errorf("chain round %d, %d machines waiting: %w", round, running, vmerrors.ErrDeadlock)
		}
	}
	return intcode.Word{}, fmt.Errorf("chain after %d rounds: %w", maxRounds, vmerrors.ErrStepLimit)
}

// RunChain is NewChain followed by Run with an initial signal of 0.
func RunChain(ctx context.Context, image []intcode.Word, phases []int64, opts ...Option) (intcode.Word, error) {
	return NewChain(image, phases, opts...).Run(ctx, 0)
}
