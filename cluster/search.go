package cluster

import (
	"context"
	"runtime"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Permutations returns every ordering of values.
func Permutations(values []int64) [][]int64 {
	var out [][]int64
	var permute func(p []int64, k int)
	permute = func(p []int64, k int) {
		if k == len(p) {
			out = append(out, slices.Clone(p))
			return
		}
		for i := k; i < len(p); i++ {
			p[k], p[i] = p[i], p[k]
			permute(p, k+1)
			p[k], p[i] = p[i], p[k]
		}
	}
	permute(slices.Clone(values), 0)
	return out
}

// MaxChainSignal runs a chain for every permutation of phases in parallel and
// returns the highest final signal with the phase order that produced it.
func MaxChainSignal(ctx context.Context, image []intcode.Word, phases []int64, opts ...Option) (intcode.Word, []int64, error) {
	perms := Permutations(phases)
	signals := make([]intcode.Word, len(perms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, perm := range perms {
		i, perm := i, perm
		g.Go(func() error {
			s, err := RunChain(gctx, image, perm, opts...)
			if err != nil {
				return err
			}
			signals[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return intcode.Word{}, nil, err
	}

	best := 0
	for i := range signals {
		if signals[i].Cmp(signals[best]) > 0 {
			best = i
		}
	}
	log.Debug(log.ClusterMonitoring, "chain search", "permutations", len(perms), "best", signals[best], "phases", perms[best])
	return signals[best], perms[best], nil
}
