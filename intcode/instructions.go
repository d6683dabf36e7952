package intcode

import "fmt"

// Opcode is the instruction selector held in the two low decimal digits of an
// instruction cell. The set is closed.
type Opcode int64

const (
	ADD           Opcode = 1
	MUL           Opcode = 2
	INPUT         Opcode = 3
	OUTPUT        Opcode = 4
	JUMP_IF_TRUE  Opcode = 5
	JUMP_IF_FALSE Opcode = 6
	LESS_THAN     Opcode = 7
	EQUALS        Opcode = 8
	ADJUST_RB     Opcode = 9
	HALT          Opcode = 99
)

// instrDef describes the operand shape of an opcode.
type instrDef struct {
	Name   string
	Params int // number of parameter cells after the opcode cell
	Write  int // 1-based index of the write-target parameter, 0 if none
	Jump   bool
}

var instrTable = map[Opcode]instrDef{
	ADD:           {Name: "ADD", Params: 3, Write: 3},
	MUL:           {Name: "MUL", Params: 3, Write: 3},
	INPUT:         {Name: "IN", Params: 1, Write: 1},
	OUTPUT:        {Name: "OUT", Params: 1},
	JUMP_IF_TRUE:  {Name: "JNZ", Params: 2, Jump: true},
	JUMP_IF_FALSE: {Name: "JZ", Params: 2, Jump: true},
	LESS_THAN:     {Name: "LT", Params: 3, Write: 3},
	EQUALS:        {Name: "EQ", Params: 3, Write: 3},
	ADJUST_RB:     {Name: "ARB", Params: 1},
	HALT:          {Name: "HALT", Params: 0},
}

// Valid reports whether op belongs to the instruction set.
func (op Opcode) Valid() bool {
	_, ok := instrTable[op]
	return ok
}

func (op Opcode) String() string {
	if def, ok := instrTable[op]; ok {
		return def.Name
	}
	return fmt.Sprintf("OPCODE %d", int64(op))
}

// Params returns the number of parameter cells the opcode consumes.
func (op Opcode) Params() int {
	return instrTable[op].Params
}

// Width is the distance IP advances when the instruction does not jump.
func (op Opcode) Width() int64 {
	return int64(op.Params()) + 1
}

// WriteParam returns the 1-based write-target parameter index, or 0.
func (op Opcode) WriteParam() int {
	return instrTable[op].Write
}

func (op Opcode) IsJump() bool {
	return instrTable[op].Jump
}

// Mode is a parameter addressing mode.
type Mode uint8

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// State is where a VM stands after an Exec call.
type State uint8

const (
	StateReady   State = iota // runnable, not yet blocked
	StateOutput               // yielded one output value
	StateWaiting              // blocked on an empty input queue
	StateHalted               // reached opcode 99
	StateFaulted              // hit an invalid instruction; terminal
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateOutput:
		return "output"
	case StateWaiting:
		return "waiting"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Signal is the result of one Exec call. Value is meaningful only for StateOutput.
type Signal struct {
	State State
	Value Word
}

func (s Signal) String() string {
	if s.State == StateOutput {
		return fmt.Sprintf("output(%s)", s.Value)
	}
	return s.State.String()
}
