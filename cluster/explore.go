package cluster

import (
	"context"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"golang.org/x/exp/slices"
)

// Verdict is what a Visit callback decides about a newly reached machine.
type Verdict uint8

const (
	Expand Verdict = iota // search onward from this machine
	Prune                 // drop it
	Stop                  // end the search; its path is the result
)

// Visit inspects the machine reached by path and the outputs the last move produced.
type Visit func(path []int64, vm *intcode.VM, out []intcode.Word) Verdict

type frontierNode struct {
	vm   *intcode.VM
	path []int64
}

// Explore searches breadth-first from root: for every frontier machine and every
// move it clones the machine, pushes the move and runs it until it blocks. It
// returns the path visit stopped on, or nil when the frontier is exhausted or
// maxDepth is reached. root itself is never modified.
func Explore(ctx context.Context, root *intcode.VM, moves []int64, maxDepth int, visit Visit) ([]int64, error) {
	frontier := []frontierNode{{vm: root}}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []frontierNode
		for _, node := range frontier {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, move := range moves {
				vm := node.vm.Clone()
				vm.PushInput(move)
				out, state, err := vm.RunUntilBlocked()
				if err != nil {
					return nil, err
				}

				path := append(slices.Clone(node.path), move)
				switch visit(path, vm, out) {
				case Stop:
					log.Debug(log.ClusterMonitoring, "explore stop", "depth", depth, "path", path)
					return path, nil
				case Expand:
					if state == intcode.StateWaiting {
						next = append(next, frontierNode{vm: vm, path: path})
					}
				}
			}
		}
		log.Trace(log.ClusterMonitoring, "explore depth", "depth", depth, "frontier", len(next))
		frontier = next
	}
	return nil, nil
}
