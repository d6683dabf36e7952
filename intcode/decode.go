package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/holiman/uint256"
)

var headerModulus = uint256.NewInt(100000)

// Instruction is a decoded instruction header: the opcode and the addressing mode
// of each parameter the opcode uses. Modes beyond Params() are left as Position.
type Instruction struct {
	Opcode Opcode
	Modes  [3]Mode
}

// Decode splits an instruction cell into its opcode and parameter modes. Only the
// mode digits of parameters the opcode actually uses are validated.
func Decode(cell Word) (Instruction, error) {
	var inst Instruction
	if cell.negative() {
		return inst, fmt.Errorf("cell %s: %w", cell, vmerrors.ErrUnknownOpcode)
	}
	// digits above the third mode never matter
	var low uint256.Int
	low.Mod(&cell.u, headerModulus)
	header := int64(low.Uint64())

	op := Opcode(header % 100)
	if !op.Valid() {
		return inst, fmt.Errorf("cell %s: %w", cell, vmerrors.ErrUnknownOpcode)
	}
	inst.Opcode = op

	digits := header / 100
	for i := 0; i < op.Params(); i++ {
		m := Mode(digits % 10)
		if m > Relative {
			return inst, fmt.Errorf("cell %s parameter %d mode %d: %w", cell, i+1, digits%10, vmerrors.ErrInvalidMode)
		}
		inst.Modes[i] = m
		digits /= 10
	}
	return inst, nil
}

// Mode returns the addressing mode of the 1-based parameter pos.
func (i Instruction) Mode(pos int) Mode {
	return i.Modes[pos-1]
}

func (i Instruction) String() string {
	s := i.Opcode.String()
	for p := 0; p < i.Opcode.Params(); p++ {
		s += " " + i.Modes[p].String()
	}
	return s
}
