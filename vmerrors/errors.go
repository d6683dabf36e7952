package vmerrors

import (
	"errors"
	"strings"
)

// Program (P) Errors
var (
	ErrMalformedProgram = errors.New("P1|MalformedProgram: Program text contains a token that is not a signed decimal integer.")
)

// VM fault (V) Errors
var (
	ErrUnknownOpcode      = errors.New("V1|UnknownOpcode: Instruction cell holds an opcode outside the instruction set.")
	ErrInvalidMode        = errors.New("V2|InvalidMode: Parameter addressing mode digit is not 0, 1 or 2.")
	ErrNegativeAddress    = errors.New("V3|NegativeAddress: Resolved memory address or jump target is negative.")
	ErrArithmeticOverflow = errors.New("V4|ArithmeticOverflow: Add or Multiply result does not fit in a signed 64-bit cell.")
	ErrMemoryLimit        = errors.New("V5|MemoryLimit: Memory growth exceeds the configured cell limit.")
)

// Run (R) Errors
var (
	ErrInputExhausted = errors.New("R1|InputExhausted: Program is waiting for input but the input queue is empty.")
)

// Cluster (C) Errors
var (
	ErrDeadlock    = errors.New("C1|Deadlock: Every machine is waiting for input and no value is in flight.")
	ErrStepLimit   = errors.New("C2|StepLimit: Scheduler exceeded its round limit before finishing.")
	ErrUnknownNode = errors.New("C3|UnknownNode: Packet addressed to a node outside the network.")
)

var faults = []error{
	ErrUnknownOpcode,
	ErrInvalidMode,
	ErrNegativeAddress,
	ErrArithmeticOverflow,
	ErrMemoryLimit,
}

var known = append([]error{
	ErrMalformedProgram,
	ErrInputExhausted,
	ErrDeadlock,
	ErrStepLimit,
	ErrUnknownNode,
}, faults...)

// canonical returns the sentinel wrapped by err, or err itself when none matches.
func canonical(err error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return k
		}
	}
	return err
}

// IsFault reports whether err is (or wraps) a VM fault, as opposed to a normal halt,
// an input wait or a scheduler condition.
func IsFault(err error) bool {
	for _, f := range faults {
		if errors.Is(err, f) {
			return true
		}
	}
	return false
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := canonical(err).Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	if len(parts) < 2 {
		return errStr
	}
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

func GetErrorNames(errs []error) []string {
	errStrs := make([]string, len(errs))
	for i, err := range errs {
		errStrs[i] = GetErrorName(err)
	}
	return errStrs
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := canonical(err).Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	parts := strings.SplitN(canonical(err).Error(), ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
