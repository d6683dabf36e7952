package trace

import "encoding/json"

// SimpleInstruction is the decoded form of one executed instruction. Cell values
// are decimal JSON numbers of any width.
type SimpleInstruction struct {
	Opcode int64         `json:"opcode"`
	Modes  []int         `json:"modes,omitempty"`
	Params []json.Number `json:"params,omitempty"`
}

// TraceStep is one executed instruction, captured before its effect is applied.
type TraceStep struct {
	Step        uint64            `json:"step"`
	Identifier  string            `json:"id,omitempty"`
	IP          int64             `json:"ip"`
	Instruction SimpleInstruction `json:"instruction"`
	OpcodeStr   string            `json:"opcodeStr,omitempty"`

	RelativeBase json.Number `json:"relativeBase"`
	PendingInput int         `json:"pendingInput"`
	PostState    string      `json:"postState,omitempty"`

	// Set when the instruction wrote a memory cell.
	ChangedMemoryAddr  *int64       `json:"changedMemoryAddr,omitempty"`
	ChangedMemoryValue *json.Number `json:"changedMemoryValue,omitempty"`
}

func NewTraceStep(step uint64, ip int64, inst SimpleInstruction) *TraceStep {
	return &TraceStep{
		Step:        step,
		IP:          ip,
		Instruction: inst,
	}
}

func (ts *TraceStep) SetChangedMemory(addr int64, value json.Number) {
	ts.ChangedMemoryAddr = &addr
	ts.ChangedMemoryValue = &value
}

// Tracer receives every step a VM executes.
type Tracer interface {
	WriteStep(step *TraceStep) error
}

// Recorder keeps steps in memory; handy for tests and short programs.
type Recorder struct {
	Steps []*TraceStep
}

func (r *Recorder) WriteStep(step *TraceStep) error {
	r.Steps = append(r.Steps, step)
	return nil
}
