package intcode

import (
	"fmt"
	"strings"
)

func formatParam(mode Mode, raw Word) string {
	switch mode {
	case Immediate:
		return raw.String()
	case Relative:
		if raw.Sign() < 0 {
			return "[rb" + raw.String() + "]"
		}
		return "[rb+" + raw.String() + "]"
	default:
		return "[" + raw.String() + "]"
	}
}

// DisassembleInstruction renders the instruction at ip and returns the number of
// cells it spans. Cells that do not decode, or whose parameters run past the end
// of image, are rendered as a single DATA cell.
func DisassembleInstruction(image []Word, ip int) (string, int) {
	if ip < 0 || ip >= len(image) {
		return "", 0
	}
	cell := image[ip]
	inst, err := Decode(cell)
	n := inst.Opcode.Params()
	if err != nil || ip+n >= len(image) {
		return "DATA " + cell.String(), 1
	}

	params := make([]string, n)
	for p := 1; p <= n; p++ {
		params[p-1] = formatParam(inst.Mode(p), image[ip+p])
	}
	if n == 0 {
		return inst.Opcode.String(), 1
	}
	return fmt.Sprintf("%-4s %s", inst.Opcode.String(), strings.Join(params, ", ")), n + 1
}

// DisassembleCode sweeps image linearly and returns one line per instruction,
// each prefixed with its address. Self-modifying programs disassemble as they
// are stored, not as they will run.
func DisassembleCode(image []Word) []string {
	var lines []string
	for ip := 0; ip < len(image); {
		text, width := DisassembleInstruction(image, ip)
		lines = append(lines, fmt.Sprintf("%05d: %s", ip, text))
		ip += width
	}
	return lines
}

func Disassemble(image []Word) string {
	return strings.Join(DisassembleCode(image), "\n")
}
