package intcode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/holiman/uint256"
)

// Word is one memory cell: a signed 256-bit integer held in two's complement.
// The zero value is 0.
type Word struct {
	u uint256.Int
}

// MinWord is -2^255, the only value whose magnitude has the sign bit set.
var MinWord = Word{u: uint256.Int{0, 0, 0, 1 << 63}}

var (
	errNotDecimal = errors.New("not a signed decimal integer")
	errWordRange  = errors.New("outside the signed 256-bit range")
)

func NewWord(v int64) Word {
	var w Word
	if v >= 0 {
		w.u.SetUint64(uint64(v))
		return w
	}
	w.u.SetUint64(uint64(-v))
	w.u.Neg(&w.u)
	return w
}

// Words converts int64 values, mostly for literals in callers and tests.
func Words(values ...int64) []Word {
	out := make([]Word, len(values))
	for i, v := range values {
		out[i] = NewWord(v)
	}
	return out
}

// ParseWord reads an optionally signed decimal integer in [-2^255, 2^255).
func ParseWord(s string) (Word, error) {
	digits, negative := s, false
	switch {
	case strings.HasPrefix(s, "-"):
		digits, negative = s[1:], true
	case strings.HasPrefix(s, "+"):
		digits = s[1:]
	}
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return Word{}, errNotDecimal
	}

	var w Word
	if err := w.u.SetFromDecimal(digits); err != nil {
		return Word{}, errWordRange
	}
	if w.negative() && (!negative || w != MinWord) {
		return Word{}, errWordRange
	}
	if negative {
		w.u.Neg(&w.u)
	}
	return w, nil
}

// Int64 returns w and true when it fits in an int64.
func (w Word) Int64() (int64, bool) {
	if !w.negative() {
		if w.u.IsUint64() && w.u.Uint64() <= math.MaxInt64 {
			return int64(w.u.Uint64()), true
		}
		return 0, false
	}
	var abs uint256.Int
	abs.Neg(&w.u)
	if abs.IsUint64() && abs.Uint64() <= 1<<63 {
		return int64(-abs.Uint64()), true
	}
	return 0, false
}

func (w Word) IsZero() bool {
	return w.u.IsZero()
}

// Sign returns -1, 0 or 1.
func (w Word) Sign() int {
	return w.u.Sign()
}

// Cmp compares w and o as signed integers.
func (w Word) Cmp(o Word) int {
	switch {
	case w.u.Slt(&o.u):
		return -1
	case w.u.Sgt(&o.u):
		return 1
	default:
		return 0
	}
}

func (w Word) String() string {
	if w.negative() {
		var abs uint256.Int
		abs.Neg(&w.u)
		return "-" + abs.Dec()
	}
	return w.u.Dec()
}

func (w Word) negative() bool {
	return w.u[3]>>63 == 1
}

// index converts w to a memory address.
func (w Word) index() (int64, error) {
	if w.negative() {
		return 0, fmt.Errorf("address %s: %w", w, vmerrors.ErrNegativeAddress)
	}
	if !w.u.IsUint64() || w.u.Uint64() > math.MaxInt64 {
		return 0, fmt.Errorf("address %s: %w", w, vmerrors.ErrMemoryLimit)
	}
	return int64(w.u.Uint64()), nil
}

func addWords(a, b Word) (Word, bool) {
	var r Word
	r.u.Add(&a.u, &b.u)
	return r, a.negative() == b.negative() && r.negative() != a.negative()
}

func mulWords(a, b Word) (Word, bool) {
	var x, y, r Word
	x.u.Abs(&a.u)
	y.u.Abs(&b.u)
	if _, overflow := r.u.MulOverflow(&x.u, &y.u); overflow {
		return Word{}, true
	}
	negative := a.negative() != b.negative() && !r.IsZero()
	if r.negative() {
		// a magnitude of 2^255 only fits as -2^255
		if !negative || r != MinWord {
			return Word{}, true
		}
		return r, false
	}
	if negative {
		r.u.Neg(&r.u)
	}
	return r, false
}
