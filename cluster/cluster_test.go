package cluster

import (
	"context"
	"testing"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// natNode reads its address; node 0 then sends (255,7,8). Every node then loops:
// -1 is ignored, otherwise it reads x,y and replies (255, x, min(y+1, 10)).
const natNode = "3,100,1008,100,0,101,1006,101,15,104,255,104,7,104,8," +
	"3,102,1008,102,-1,103,1005,103,15,3,104,1007,104,10,105,1,104,105,104," +
	"104,255,4,102,4,104,1105,1,15"

// accumulator outputs the running sum of its inputs.
const accumulator = "3,20,1,20,21,21,4,21,1105,1,0"

func mustParse(t *testing.T, text string) []intcode.Word {
	t.Helper()
	image, err := intcode.Parse(text)
	require.NoError(t, err)
	return image
}

func natPacket(x, y int64) Packet {
	return Packet{Dest: NATAddress, X: intcode.NewWord(x), Y: intcode.NewWord(y)}
}

func TestChain(t *testing.T) {
	tests := []struct {
		program string
		phases  []int64
		want    int64
	}{
		{"3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0", []int64{4, 3, 2, 1, 0}, 43210},
		{"3,23,3,24,1002,24,10,24,1002,23,-1,23,101,5,23,23,1,24,23,23,4,23,99,0,0", []int64{0, 1, 2, 3, 4}, 54321},
		{"3,31,3,32,1002,32,10,32,1001,31,-2,31,1007,31,0,33,1002,33,7,33,1,33,31,31,1,32,31,31,4,31,99,0,0,0", []int64{1, 0, 4, 3, 2}, 65210},
		{"3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5", []int64{9, 8, 7, 6, 5}, 139629729},
		{"3,52,1001,52,-5,52,3,53,1,52,56,54,1007,54,5,55,1005,55,26,1001,54,-5,54,1105,1,12,1,53,54,53,1008,54,0,55,1001,55,1,55,2,53,55,53,4,53,1001,56,-1,56,1005,56,6,99,0,0,0,0,10", []int64{9, 7, 8, 5, 6}, 18216},
	}
	for _, tc := range tests {
		got, err := RunChain(context.Background(), mustParse(t, tc.program), tc.phases)
		require.NoError(t, err)
		assert.Equal(t, intcode.NewWord(tc.want), got)
	}
}

func TestMaxChainSignal(t *testing.T) {
	image := mustParse(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	best, phases, err := MaxChainSignal(context.Background(), image, []int64{0, 1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, intcode.NewWord(43210), best)
	assert.Equal(t, []int64{4, 3, 2, 1, 0}, phases)

	image = mustParse(t, "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5")
	best, phases, err = MaxChainSignal(context.Background(), image, []int64{5, 6, 7, 8, 9})
	require.NoError(t, err)
	assert.Equal(t, intcode.NewWord(139629729), best)
	assert.Equal(t, []int64{9, 8, 7, 6, 5}, phases)
}

func TestPermutations(t *testing.T) {
	perms := Permutations([]int64{1, 2, 3})
	assert.Len(t, perms, 6)
	assert.Contains(t, perms, []int64{3, 1, 2})
	assert.Len(t, Permutations(nil), 1)
}

func TestChainWideSignal(t *testing.T) {
	// each stage doubles its input
	image := mustParse(t, "3,11,3,12,1002,12,2,12,4,12,99,0,0")
	c := NewChain(image, []int64{0, 0, 0})
	got, err := c.Run(context.Background(), 4611686018427387904)
	require.NoError(t, err)
	assert.Equal(t, "36893488147419103232", got.String())
}

func TestChainOptions(t *testing.T) {
	c := NewChain(mustParse(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"), []int64{1, 0}, WithMemoryLimit(12))
	assert.Equal(t, "amp-1", c.Machines()[1].GetIdentifier())
	_, err := c.Run(context.Background(), 0)
	assert.ErrorIs(t, err, vmerrors.ErrMemoryLimit)

	_, _, err = MaxChainSignal(context.Background(), mustParse(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"), []int64{0, 1}, WithMemoryLimit(12))
	assert.ErrorIs(t, err, vmerrors.ErrMemoryLimit)
}

func TestChainDeadlock(t *testing.T) {
	// every machine reads three values before its first output
	image := mustParse(t, "3,0,3,0,3,0,4,0,99")
	_, err := RunChain(context.Background(), image, []int64{1, 2})
	assert.ErrorIs(t, err, vmerrors.ErrDeadlock)
}

func TestChainFault(t *testing.T) {
	_, err := RunChain(context.Background(), mustParse(t, "3,0,98"), []int64{0})
	assert.ErrorIs(t, err, vmerrors.ErrUnknownOpcode)
}

func TestChainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunChain(ctx, mustParse(t, "3,0,4,0,99"), []int64{0})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNetworkFirstNATPacket(t *testing.T) {
	p, err := FirstNATPacket(context.Background(), mustParse(t, natNode), 5)
	require.NoError(t, err)
	assert.Equal(t, natPacket(7, 8), p)
}

func TestNetworkRepeatedWake(t *testing.T) {
	y, err := FirstRepeatedWake(context.Background(), mustParse(t, natNode), 5)
	require.NoError(t, err)
	assert.Equal(t, intcode.NewWord(10), y)
}

func TestNetworkEvents(t *testing.T) {
	nw := NewNetwork(mustParse(t, natNode), 3)
	var events []Event
	err := nw.Run(context.Background(), func(ev Event) (bool, error) {
		events = append(events, ev)
		return len(events) == 3, nil
	})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventNATPacket, events[0].Kind)
	assert.Equal(t, EventIdle, events[1].Kind)
	assert.Equal(t, natPacket(7, 9), events[2].Packet)

	nat, ok := nw.NAT()
	assert.True(t, ok)
	assert.Equal(t, intcode.NewWord(9), nat.Y)
	assert.Equal(t, "255<-(7,9)", nat.String())
}

func TestNetworkUnknownNode(t *testing.T) {
	_, err := FirstNATPacket(context.Background(), mustParse(t, "104,60,104,1,104,2,99"), 2)
	assert.ErrorIs(t, err, vmerrors.ErrUnknownNode)

	_, err = FirstNATPacket(context.Background(), mustParse(t, "104,9223372036854775808,104,1,104,2,99"), 2)
	assert.ErrorIs(t, err, vmerrors.ErrUnknownNode)
}

func TestNetworkKeepsFramesAcrossRuns(t *testing.T) {
	// one output burst carries two NAT packets
	nw := NewNetwork(mustParse(t, "104,255,104,1,104,2,104,255,104,3,104,4,3,20,1105,1,12"), 1)
	first := func(got *Packet) Handler {
		return func(ev Event) (bool, error) {
			*got = ev.Packet
			return ev.Kind == EventNATPacket, nil
		}
	}

	var p Packet
	require.NoError(t, nw.Run(context.Background(), first(&p)))
	assert.Equal(t, natPacket(1, 2), p)

	require.NoError(t, nw.Run(context.Background(), first(&p)))
	assert.Equal(t, natPacket(3, 4), p)
	assert.Equal(t, uint64(2), nw.Packets)
}

func TestNetworkWidePayload(t *testing.T) {
	nw := NewNetwork(mustParse(t, "104,255,104,1,104,340282366920938463463374607431768211456,3,20,1105,1,6"), 1)
	var got Packet
	err := nw.Run(context.Background(), func(ev Event) (bool, error) {
		got = ev.Packet
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "340282366920938463463374607431768211456", got.Y.String())
}

func TestNetworkOptions(t *testing.T) {
	// node 0 writes past the cap as soon as it boots
	_, err := FirstNATPacket(context.Background(), mustParse(t, "3,0,1101,1,1,500,104,255,104,1,104,2,99"), 2, WithMemoryLimit(100))
	assert.ErrorIs(t, err, vmerrors.ErrMemoryLimit)

	rec := &trace.Recorder{}
	p, err := FirstNATPacket(context.Background(), mustParse(t, "3,0,104,255,104,1,104,2,99"), 1, WithTracer(rec))
	require.NoError(t, err)
	assert.Equal(t, natPacket(1, 2), p)
	require.NotEmpty(t, rec.Steps)
	assert.Equal(t, "0", rec.Steps[0].Identifier)
}

func TestNetworkIdleWithoutNAT(t *testing.T) {
	_, err := FirstNATPacket(context.Background(), mustParse(t, "3,0,3,1,1105,1,2"), 3)
	assert.ErrorIs(t, err, vmerrors.ErrDeadlock)
}

func TestNetworkHalts(t *testing.T) {
	nw := NewNetwork(mustParse(t, "3,0,99"), 4)
	err := nw.Run(context.Background(), func(Event) (bool, error) { return false, nil })
	require.NoError(t, err)
	for i := 0; i < nw.Size(); i++ {
		assert.True(t, nw.Node(i).Halted())
	}
}

func TestExplore(t *testing.T) {
	root := intcode.NewFromImage(mustParse(t, accumulator))
	visited := 0
	five := intcode.NewWord(5)
	path, err := Explore(context.Background(), root, []int64{1, 2}, 10, func(path []int64, vm *intcode.VM, out []intcode.Word) Verdict {
		visited++
		switch out[0].Cmp(five) {
		case 0:
			return Stop
		case 1:
			return Prune
		}
		return Expand
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 2}, path)
	assert.Equal(t, 10, visited)
	assert.Equal(t, 0, root.PendingInput())
	assert.Equal(t, intcode.Word{}, root.Peek(21))
}

func TestExploreDepthLimit(t *testing.T) {
	root := intcode.NewFromImage(mustParse(t, accumulator))
	path, err := Explore(context.Background(), root, []int64{1}, 3, func(_ []int64, _ *intcode.VM, _ []intcode.Word) Verdict {
		return Expand
	})
	require.NoError(t, err)
	assert.Nil(t, path)
}
