// Package intcode implements a resumable interpreter for integer programs.
//
// A VM runs until it produces one output value, needs an input value that has not
// been supplied, or halts. Callers drive one or many machines by calling Exec
// repeatedly and moving values between their queues.
package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/log"
	"golang.org/x/exp/slices"
)

type VM struct {
	mem          *Memory
	ip           int64
	relativeBase Word

	input  []Word // FIFO; head at index 0
	output []Word

	state State
	fault error
	steps uint64

	identifier string
	tracer     trace.Tracer
	curStep    *trace.TraceStep
}

// New parses program text and returns a VM with inputs queued in order.
func New(text string, inputs ...int64) (*VM, error) {
	image, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return NewFromImage(image, inputs...), nil
}

// NewFromImage returns a VM over a copy of image. Use it to start many machines
// from one parsed program.
func NewFromImage(image []Word, inputs ...int64) *VM {
	return &VM{
		mem:   NewMemory(image),
		input: Words(inputs...),
		state: StateReady,
	}
}

// Clone deep-copies the machine: memory, registers, both queues and the state.
// The tracer, if any, is shared.
func (vm *VM) Clone() *VM {
	return &VM{
		mem:          vm.mem.Clone(),
		ip:           vm.ip,
		relativeBase: vm.relativeBase,
		input:        slices.Clone(vm.input),
		output:       slices.Clone(vm.output),
		state:        vm.state,
		fault:        vm.fault,
		steps:        vm.steps,
		identifier:   vm.identifier,
		tracer:       vm.tracer,
	}
}

func (vm *VM) SetIdentifier(id string) {
	vm.identifier = id
}

func (vm *VM) GetIdentifier() string {
	return vm.identifier
}

// SetTracer installs a tracer that receives one step per executed instruction.
// Pass nil to stop tracing.
func (vm *VM) SetTracer(t trace.Tracer) {
	vm.tracer = t
}

// SetMemoryLimit caps memory at n cells; n <= 0 restores DefaultMemoryLimit.
func (vm *VM) SetMemoryLimit(n int64) {
	vm.mem.SetLimit(n)
}

// PushInput appends values to the back of the input queue.
func (vm *VM) PushInput(values ...int64) {
	vm.PushWords(Words(values...)...)
}

// PushWords is PushInput for values that may not fit in an int64.
func (vm *VM) PushWords(values ...Word) {
	vm.input = append(vm.input, values...)
	vm.unblock()
}

// PushInputFront places v ahead of every queued value.
func (vm *VM) PushInputFront(v Word) {
	vm.input = append([]Word{v}, vm.input...)
	vm.unblock()
}

func (vm *VM) unblock() {
	if vm.state == StateWaiting && len(vm.input) > 0 {
		vm.state = StateReady
	}
}

// PendingInput returns the number of queued, unconsumed input values.
func (vm *VM) PendingInput() int {
	return len(vm.input)
}

// Output returns the output buffer without clearing it.
func (vm *VM) Output() []Word {
	return vm.output
}

// DrainOutput returns the output buffer and empties it.
func (vm *VM) DrainOutput() []Word {
	out := vm.output
	vm.output = nil
	return out
}

func (vm *VM) ClearOutput() {
	vm.output = vm.output[:0]
}

// Peek reads memory without growing it; cells past the end read as zero.
func (vm *VM) Peek(addr int64) Word {
	return vm.mem.Peek(addr)
}

// Poke writes memory directly, e.g. to patch a program before it runs.
func (vm *VM) Poke(addr int64, v Word) error {
	return vm.mem.Write(addr, v)
}

// Memory returns a copy of the current memory.
func (vm *VM) Memory() []Word {
	return vm.mem.Snapshot()
}

func (vm *VM) MemoryLen() int {
	return vm.mem.Len()
}

func (vm *VM) IP() int64 {
	return vm.ip
}

func (vm *VM) RelativeBase() Word {
	return vm.relativeBase
}

// Steps is the number of instructions executed so far.
func (vm *VM) Steps() uint64 {
	return vm.steps
}

func (vm *VM) State() State {
	return vm.state
}

// Waiting reports whether the last Exec stopped on an empty input queue and no
// input has arrived since.
func (vm *VM) Waiting() bool {
	return vm.state == StateWaiting
}

func (vm *VM) Halted() bool {
	return vm.state == StateHalted
}

// Err returns the fault that stopped the machine, or nil.
func (vm *VM) Err() error {
	return vm.fault
}

func (vm *VM) String() string {
	return fmt.Sprintf("vm[%s] ip=%d rb=%s state=%s in=%d out=%d mem=%d",
		vm.identifier, vm.ip, vm.relativeBase, vm.state, len(vm.input), len(vm.output), vm.mem.Len())
}

func (vm *VM) fail(err error) {
	vm.fault = fmt.Errorf("intcode %s ip=%d: %w", vm.identifier, vm.ip, err)
	vm.state = StateFaulted
	log.Warn(log.VMMonitoring, "fault", "id", vm.identifier, "ip", vm.ip, "step", vm.steps, "err", err)
}
