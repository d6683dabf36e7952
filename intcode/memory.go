package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
	"golang.org/x/exp/slices"
)

// DefaultMemoryLimit caps memory growth at 4M cells (128 MiB of 32-byte words).
// Real programs stay within a few thousand cells.
const DefaultMemoryLimit = 1 << 22

// Memory is a zero-indexed, growable cell array. Touching an address at or past
// Len extends it with zero cells up to and including that address; it never shrinks.
type Memory struct {
	cells []Word
	limit int64
}

// NewMemory copies image into a fresh Memory.
func NewMemory(image []Word) *Memory {
	return &Memory{
		cells: slices.Clone(image),
		limit: DefaultMemoryLimit,
	}
}

func (m *Memory) ensure(addr int64) error {
	if addr < 0 {
		return fmt.Errorf("address %d: %w", addr, vmerrors.ErrNegativeAddress)
	}
	if addr >= m.limit {
		return fmt.Errorf("address %d limit %d: %w", addr, m.limit, vmerrors.ErrMemoryLimit)
	}
	if n := int(addr) + 1; n > len(m.cells) {
		m.cells = append(m.cells, make([]Word, n-len(m.cells))...)
	}
	return nil
}

// Read returns the cell at addr, growing memory if addr is past the end.
func (m *Memory) Read(addr int64) (Word, error) {
	if err := m.ensure(addr); err != nil {
		return Word{}, err
	}
	return m.cells[addr], nil
}

// Write stores v at addr, growing memory if addr is past the end.
func (m *Memory) Write(addr int64, v Word) error {
	if err := m.ensure(addr); err != nil {
		return err
	}
	m.cells[addr] = v
	return nil
}

// Peek reads without growing; addresses outside memory read as zero.
func (m *Memory) Peek(addr int64) Word {
	if addr < 0 || addr >= int64(len(m.cells)) {
		return Word{}
	}
	return m.cells[addr]
}

func (m *Memory) Len() int {
	return len(m.cells)
}

// SetLimit sets the maximum number of cells; n <= 0 restores DefaultMemoryLimit.
// Cells already allocated are kept even if they exceed the new limit.
func (m *Memory) SetLimit(n int64) {
	if n <= 0 {
		n = DefaultMemoryLimit
	}
	m.limit = n
}

// Snapshot returns a copy of the current cells.
func (m *Memory) Snapshot() []Word {
	return slices.Clone(m.cells)
}

func (m *Memory) Clone() *Memory {
	return &Memory{
		cells: slices.Clone(m.cells),
		limit: m.limit,
	}
}
