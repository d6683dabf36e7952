package cluster

import (
	"context"
	"fmt"
	"strconv"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// NATAddress is the destination that routes packets to the network's NAT.
const NATAddress = 255

// NoInput is fed to a node polled with an empty queue.
const NoInput = -1

// Packet is one framed (destination, x, y) output triple.
type Packet struct {
	Dest int64
	X    intcode.Word
	Y    intcode.Word
}

func (p Packet) String() string {
	return fmt.Sprintf("%d<-(%s,%s)", p.Dest, p.X, p.Y)
}

// newPacket frames three outputs; a destination beyond int64 addresses no node.
func newPacket(dest, x, y intcode.Word) (Packet, error) {
	d, ok := dest.Int64()
	if !ok {
		return Packet{}, fmt.Errorf("packet %s<-(%s,%s): %w", dest, x, y, vmerrors.ErrUnknownNode)
	}
	return Packet{Dest: d, X: x, Y: y}, nil
}

type EventKind uint8

const (
	// EventNATPacket fires when a node sends a packet to NATAddress.
	EventNATPacket EventKind = iota
	// EventIdle fires when the network is quiescent; unless the handler stops the
	// run, the NAT's last packet is then delivered to node 0.
	EventIdle
)

type Event struct {
	Kind   EventKind
	Packet Packet
	Round  int
}

// Handler observes network events. Returning stop=true ends Run without error.
type Handler func(Event) (stop bool, err error)

type Network struct {
	nodes   []*intcode.VM
	frames  [][]intcode.Word // unsent output per node
	nat     Packet
	hasNAT  bool
	Packets uint64

	MaxRounds int
}

// NewNetwork boots n nodes from image; node i receives its address i as first input.
func NewNetwork(image []intcode.Word, n int, opts ...Option) *Network {
	nw := &Network{
		nodes:  make([]*intcode.VM, n),
		frames: make([][]intcode.Word, n),
	}
	for i := range nw.nodes {
		nw.nodes[i] = boot(image, strconv.Itoa(i), int64(i), opts)
	}
	return nw
}

func (nw *Network) Size() int {
	return len(nw.nodes)
}

func (nw *Network) Node(addr int) *intcode.VM {
	return nw.nodes[addr]
}

// NAT returns the last packet the NAT received.
func (nw *Network) NAT() (Packet, bool) {
	return nw.nat, nw.hasNAT
}

// Send delivers p to its destination node or the NAT.
func (nw *Network) Send(p Packet) error {
	if p.Dest == NATAddress {
		nw.nat, nw.hasNAT = p, true
		return nil
	}
	if p.Dest < 0 || p.Dest >= int64(len(nw.nodes)) {
		return fmt.Errorf("packet %s: %w", p, vmerrors.ErrUnknownNode)
	}
	nw.nodes[p.Dest].PushWords(p.X, p.Y)
	return nil
}

// Run polls nodes round-robin until the handler stops it, every node halts, a
// node faults, or the context is cancelled. A round in which every live node
// started with an empty queue and no packet was sent is idle. Packets framed
// but not yet routed when the handler stops are kept for the next Run.
func (nw *Network) Run(ctx context.Context, handler Handler) error {
	maxRounds := nw.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	for round := 0; round < maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		live, starved, sent := 0, 0, 0
		for i, vm := range nw.nodes {
			if vm.Halted() {
				continue
			}
			live++
			if vm.PendingInput() == 0 {
				vm.PushInput(NoInput)
				starved++
			}
			out, _, err := vm.RunUntilBlocked()
			if err != nil {
				return err
			}

			frame := append(nw.frames[i], out...)
			nw.frames[i] = frame
			for len(frame) >= 3 {
				p, err := newPacket(frame[0], frame[1], frame[2])
				if err != nil {
					return err
				}
				frame = frame[3:]
				nw.frames[i] = frame
				sent++
				nw.Packets++
				log.Trace(log.ClusterMonitoring, "packet", "src", i, "packet", p)
				if err := nw.Send(p); err != nil {
					return err
				}
				if p.Dest != NATAddress {
					continue
				}
				stop, err := handler(Event{Kind: EventNATPacket, Packet: p, Round: round})
				if err != nil || stop {
					return err
				}
			}
		}

		if live == 0 {
			log.Debug(log.ClusterMonitoring, "network halted", "round", round)
			return nil
		}
		if sent > 0 || starved < live || nw.partialFrames() {
			continue
		}

		if !nw.hasNAT {
			return fmt.Errorf("network idle at round %d with no NAT packet: %w", round, vmerrors.ErrDeadlock)
		}
		log.Debug(log.ClusterMonitoring, "network idle", "round", round, "nat", nw.nat)
		stop, err := handler(Event{Kind: EventIdle, Packet: nw.nat, Round: round})
		if err != nil || stop {
			return err
		}
		wake := nw.nat
		wake.Dest = 0
		if err := nw.Send(wake); err != nil {
			return err
		}
	}
	return fmt.Errorf("network after %d rounds: %w", maxRounds, vmerrors.ErrStepLimit)
}

func (nw *Network) partialFrames() bool {
	for _, f := range nw.frames {
		if len(f) > 0 {
			return true
		}
	}
	return false
}

// FirstNATPacket runs a network of n nodes until the NAT receives its first packet.
func FirstNATPacket(ctx context.Context, image []intcode.Word, n int, opts ...Option) (Packet, error) {
	var first Packet
	err := NewNetwork(image, n, opts...).Run(ctx, func(ev Event) (bool, error) {
		if ev.Kind == EventNATPacket {
			first = ev.Packet
			return true, nil
		}
		return false, nil
	})
	return first, err
}

// FirstRepeatedWake runs a network of n nodes and returns the first Y value the
// NAT delivers to node 0 on two consecutive idle wakes.
func FirstRepeatedWake(ctx context.Context, image []intcode.Word, n int, opts ...Option) (intcode.Word, error) {
	var (
		lastY     intcode.Word
		delivered bool
		found     bool
	)
	err := NewNetwork(image, n, opts...).Run(ctx, func(ev Event) (bool, error) {
		if ev.Kind != EventIdle {
			return false, nil
		}
		if delivered && ev.Packet.Y == lastY {
			found = true
			return true, nil
		}
		lastY, delivered = ev.Packet.Y, true
		return false, nil
	})
	if err == nil && !found {
		err = fmt.Errorf("network halted before a repeated wake: %w", vmerrors.ErrDeadlock)
	}
	return lastY, err
}
