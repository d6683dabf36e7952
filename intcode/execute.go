package intcode

import (
	"encoding/json"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// Exec runs until the machine yields. It returns StateOutput with the produced
// value (also appended to the output buffer), StateWaiting with IP left on the
// input instruction, or StateHalted. Halt and faults are permanent: further calls
// return the same result without executing anything.
func (vm *VM) Exec() (Signal, error) {
	switch vm.state {
	case StateHalted:
		return Signal{State: StateHalted}, nil
	case StateFaulted:
		return Signal{State: StateFaulted}, vm.fault
	}

	for {
		sig, yield, err := vm.step()
		if err != nil {
			vm.fail(err)
			return Signal{State: StateFaulted}, vm.fault
		}
		if yield {
			vm.state = sig.State
			return sig, nil
		}
	}
}

// Run executes to completion and returns every value output along the way,
// including values already in the buffer. If the machine needs input that was
// not supplied it stops and returns the outputs so far with ErrInputExhausted;
// the machine stays resumable.
func (vm *VM) Run() ([]Word, error) {
	out, state, err := vm.RunUntilBlocked()
	if err != nil {
		return out, err
	}
	if state == StateWaiting {
		return out, fmt.Errorf("intcode %s ip=%d: %w", vm.identifier, vm.ip, vmerrors.ErrInputExhausted)
	}
	return out, nil
}

// RunUntilBlocked executes until the machine halts or waits for input and returns
// the drained output buffer together with the state it stopped in.
func (vm *VM) RunUntilBlocked() ([]Word, State, error) {
	for {
		sig, err := vm.Exec()
		if err != nil {
			return vm.DrainOutput(), StateFaulted, err
		}
		switch sig.State {
		case StateHalted, StateWaiting:
			log.Debug(log.VMMonitoring, "blocked", "id", vm.identifier, "state", sig.State, "ip", vm.ip, "steps", vm.steps)
			return vm.DrainOutput(), sig.State, nil
		}
	}
}

// step executes the instruction at IP. yield is true when Exec must return sig.
func (vm *VM) step() (sig Signal, yield bool, err error) {
	cell, err := vm.mem.Read(vm.ip)
	if err != nil {
		return sig, false, err
	}
	inst, err := Decode(cell)
	if err != nil {
		return sig, false, err
	}

	// Input with nothing queued leaves the machine untouched so the same
	// instruction runs again once input arrives.
	if inst.Opcode == INPUT && len(vm.input) == 0 {
		return Signal{State: StateWaiting}, true, nil
	}

	if vm.tracer != nil {
		vm.beginTrace(inst)
	}
	vm.steps++

	switch inst.Opcode {
	case ADD, MUL, LESS_THAN, EQUALS:
		err = vm.HandleArith(inst)
	case INPUT:
		err = vm.HandleInput(inst)
	case OUTPUT:
		var v Word
		if v, err = vm.HandleOutput(inst); err == nil {
			sig, yield = Signal{State: StateOutput, Value: v}, true
		}
	case JUMP_IF_TRUE, JUMP_IF_FALSE:
		err = vm.HandleJump(inst)
	case ADJUST_RB:
		err = vm.HandleAdjustRB(inst)
	case HALT:
		sig, yield = Signal{State: StateHalted}, true
	}

	if vm.curStep != nil {
		vm.endTrace(sig, yield, err)
	}
	return sig, yield, err
}

func (vm *VM) beginTrace(inst Instruction) {
	n := inst.Opcode.Params()
	si := trace.SimpleInstruction{Opcode: int64(inst.Opcode)}
	for p := 1; p <= n; p++ {
		si.Modes = append(si.Modes, int(inst.Mode(p)))
		si.Params = append(si.Params, wordNumber(vm.mem.Peek(vm.ip+int64(p))))
	}
	ts := trace.NewTraceStep(vm.steps, vm.ip, si)
	ts.Identifier = vm.identifier
	ts.OpcodeStr = inst.Opcode.String()
	ts.RelativeBase = wordNumber(vm.relativeBase)
	ts.PendingInput = len(vm.input)
	vm.curStep = ts
}

func (vm *VM) endTrace(sig Signal, yield bool, err error) {
	ts := vm.curStep
	vm.curStep = nil
	switch {
	case err != nil:
		ts.PostState = StateFaulted.String()
	case yield:
		ts.PostState = sig.State.String()
	default:
		ts.PostState = StateReady.String()
	}
	if werr := vm.tracer.WriteStep(ts); werr != nil {
		log.Error(log.VMMonitoring, "trace write failed, tracing disabled", "id", vm.identifier, "err", werr)
		vm.tracer = nil
	}
}

// wordNumber renders w as a JSON number literal of any width.
func wordNumber(w Word) json.Number {
	return json.Number(w.String())
}
