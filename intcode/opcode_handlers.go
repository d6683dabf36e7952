package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

var (
	zeroWord = Word{}
	oneWord  = NewWord(1)
)

// load resolves parameter pos of inst to a value.
func (vm *VM) load(inst Instruction, pos int) (Word, error) {
	raw, err := vm.mem.Read(vm.ip + int64(pos))
	if err != nil {
		return Word{}, err
	}
	if inst.Mode(pos) == Immediate {
		return raw, nil
	}
	addr, err := vm.resolve(inst.Mode(pos), raw)
	if err != nil {
		return Word{}, err
	}
	return vm.mem.Read(addr)
}

// resolve turns a raw position or relative parameter into an address.
func (vm *VM) resolve(mode Mode, raw Word) (int64, error) {
	if mode == Relative {
		sum, overflow := addWords(vm.relativeBase, raw)
		if overflow {
			return 0, fmt.Errorf("relative base %s + %s: %w", vm.relativeBase, raw, vmerrors.ErrArithmeticOverflow)
		}
		raw = sum
	}
	return raw.index()
}

// target resolves write parameter pos of inst to an address. An immediate-mode
// target is taken as a plain address.
func (vm *VM) target(inst Instruction, pos int) (int64, error) {
	raw, err := vm.mem.Read(vm.ip + int64(pos))
	if err != nil {
		return 0, err
	}
	return vm.resolve(inst.Mode(pos), raw)
}

func (vm *VM) store(inst Instruction, pos int, v Word) error {
	addr, err := vm.target(inst, pos)
	if err != nil {
		return err
	}
	if err := vm.mem.Write(addr, v); err != nil {
		return err
	}
	if vm.curStep != nil {
		vm.curStep.SetChangedMemory(addr, wordNumber(v))
	}
	return nil
}

// HandleArith covers the three-operand instructions ADD, MUL, LESS_THAN and EQUALS.
func (vm *VM) HandleArith(inst Instruction) error {
	a, err := vm.load(inst, 1)
	if err != nil {
		return err
	}
	b, err := vm.load(inst, 2)
	if err != nil {
		return err
	}

	var r Word
	switch inst.Opcode {
	case ADD:
		var overflow bool
		if r, overflow = addWords(a, b); overflow {
			return fmt.Errorf("%s + %s: %w", a, b, vmerrors.ErrArithmeticOverflow)
		}
	case MUL:
		var overflow bool
		if r, overflow = mulWords(a, b); overflow {
			return fmt.Errorf("%s * %s: %w", a, b, vmerrors.ErrArithmeticOverflow)
		}
	case LESS_THAN:
		r = boolWord(a.Cmp(b) < 0)
	case EQUALS:
		r = boolWord(a == b)
	}

	if err := vm.store(inst, 3, r); err != nil {
		return err
	}
	vm.ip += inst.Opcode.Width()
	return nil
}

// HandleInput consumes the head of the input queue. The caller guarantees the
// queue is non-empty.
func (vm *VM) HandleInput(inst Instruction) error {
	if err := vm.store(inst, 1, vm.input[0]); err != nil {
		return err
	}
	vm.input = vm.input[1:]
	vm.ip += inst.Opcode.Width()
	return nil
}

func (vm *VM) HandleOutput(inst Instruction) (Word, error) {
	v, err := vm.load(inst, 1)
	if err != nil {
		return Word{}, err
	}
	vm.output = append(vm.output, v)
	vm.ip += inst.Opcode.Width()
	return v, nil
}

func (vm *VM) HandleJump(inst Instruction) error {
	cond, err := vm.load(inst, 1)
	if err != nil {
		return err
	}
	dest, err := vm.load(inst, 2)
	if err != nil {
		return err
	}
	if cond.IsZero() == (inst.Opcode == JUMP_IF_TRUE) {
		vm.ip += inst.Opcode.Width()
		return nil
	}
	ip, err := dest.index()
	if err != nil {
		return err
	}
	vm.ip = ip
	return nil
}

func (vm *VM) HandleAdjustRB(inst Instruction) error {
	d, err := vm.load(inst, 1)
	if err != nil {
		return err
	}
	rb, overflow := addWords(vm.relativeBase, d)
	if overflow {
		return fmt.Errorf("relative base %s + %s: %w", vm.relativeBase, d, vmerrors.ErrArithmeticOverflow)
	}
	vm.relativeBase = rb
	vm.ip += inst.Opcode.Width()
	return nil
}

func boolWord(b bool) Word {
	if b {
		return oneWord
	}
	return zeroWord
}
