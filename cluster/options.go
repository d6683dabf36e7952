package cluster

import (
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
)

// Option configures every machine a scheduler boots.
type Option func(vm *intcode.VM)

// WithMemoryLimit caps each machine at n cells; n <= 0 keeps the default cap.
func WithMemoryLimit(n int64) Option {
	return func(vm *intcode.VM) {
		vm.SetMemoryLimit(n)
	}
}

// WithTracer records the steps of every machine to t. Machines are told apart by
// their identifiers, so t must be safe for concurrent use when chains run in
// parallel.
func WithTracer(t trace.Tracer) Option {
	return func(vm *intcode.VM) {
		vm.SetTracer(t)
	}
}

func boot(image []intcode.Word, id string, input int64, opts []Option) *intcode.VM {
	vm := intcode.NewFromImage(image, input)
	vm.SetIdentifier(id)
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}
