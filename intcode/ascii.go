package intcode

import "strings"

// PushString queues the bytes of s as input values. Callers append the newline
// themselves when the program expects line input.
func (vm *VM) PushString(s string) {
	values := make([]Word, len(s))
	for i := 0; i < len(s); i++ {
		values[i] = NewWord(int64(s[i]))
	}
	vm.PushWords(values...)
}

// ASCII returns the byte w encodes, if w is in 0..127.
func (w Word) ASCII() (byte, bool) {
	if v, ok := w.Int64(); ok && v >= 0 && v < 128 {
		return byte(v), true
	}
	return 0, false
}

// DecodeASCII splits program output into text and non-ASCII values. Values in
// 0..127 become text; everything else is returned in rest, in order.
func DecodeASCII(values []Word) (string, []Word) {
	var (
		b    strings.Builder
		rest []Word
	)
	for _, v := range values {
		if c, ok := v.ASCII(); ok {
			b.WriteByte(c)
			continue
		}
		rest = append(rest, v)
	}
	return b.String(), rest
}
