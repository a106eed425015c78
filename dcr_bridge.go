// dcr_bridge.go - Transaction to DCR signal bridge

package main

import (
	"encoding/binary"
	"fmt"

	"github.com/intuitionamiga/vortexbridge/sched"
)

type handshakeResult int

const (
	handshakeOK handshakeResult = iota
	handshakeReset
	handshakeStuck
)

// DCRPorts are the signals a DCRBridge drives and samples.
type DCRPorts struct {
	ResetN *sched.Signal[bool] // active low
	Valid  *sched.Signal[bool]
	Addr   *sched.Signal[uint64]
	Data   *sched.Signal[uint64]
}

// DCRBridge turns blocking write transactions into one-cycle pulses on the
// device's DCR write port. Concurrent callers are served one at a time, in
// the order they reached the gate.
type DCRBridge struct {
	name  string
	width int
	clk   *sched.Signal[bool]
	ports DCRPorts
	gate  sched.Mutex

	maxDeassertEdges int
}

// NewDCRBridge creates a bridge with a data port of width bits (32 or 64).
func NewDCRBridge(k *sched.Kernel, name string, width int, ports DCRPorts) (*DCRBridge, error) {
	if width != 32 && width != 64 {
		return nil, fmt.Errorf("%s: unsupported DCR data width %d", name, width)
	}
	if ports.ResetN == nil || ports.Valid == nil || ports.Addr == nil || ports.Data == nil {
		return nil, fmt.Errorf("%s: unbound DCR port", name)
	}
	return &DCRBridge{
		name:             name,
		width:            width,
		clk:              k.Clock(),
		ports:            ports,
		maxDeassertEdges: MAX_DEASSERT_CYCLES,
	}, nil
}

// Width returns the data port width in bits.
func (b *DCRBridge) Width() int { return b.width }

func (b *DCRBridge) dataMask() uint64 {
	if b.width == 64 {
		return ^uint64(0)
	}
	return 1<<uint(b.width) - 1
}

// BTransport implements Target.
func (b *DCRBridge) BTransport(t *sched.Task, p *Payload, delay *sched.Time) {
	if p.Command != CommandWrite {
		p.Status = StatusCommandError
		return
	}
	if p.ByteEnable != nil {
		p.Status = StatusByteEnableError
		return
	}
	if len(p.Data) != b.width/8 {
		p.Status = StatusBurstError
		return
	}

	var value uint64
	if b.width == 64 {
		value = binary.LittleEndian.Uint64(p.Data)
	} else {
		value = uint64(binary.LittleEndian.Uint32(p.Data))
	}

	// The pulse is clock synchronous, so the annotated delay is consumed
	// here. A reset falling edge cuts it short.
	if delay != nil {
		if *delay > 0 {
			t.WaitTimeout(*delay, b.ports.ResetN.Negedge())
		}
		*delay = 0
	}

	b.gate.Lock(t)
	defer b.gate.Unlock(t)

	switch b.handshake(t, p.Address, value) {
	case handshakeOK:
		p.Status = StatusOK
	case handshakeReset:
		p.Status = StatusAddressError
	default:
		p.Status = StatusGenericError
	}
}

// Write issues one register write and returns its status.
func (b *DCRBridge) Write(t *sched.Task, addr, value uint64) ResponseStatus {
	p := &Payload{
		Command: CommandWrite,
		Address: addr,
		Data:    make([]byte, b.width/8),
	}
	if b.width == 64 {
		binary.LittleEndian.PutUint64(p.Data, value)
	} else {
		binary.LittleEndian.PutUint32(p.Data, uint32(value))
	}
	var delay sched.Time
	b.BTransport(t, p, &delay)
	return p.Status
}

// handshake drives one valid pulse. The caller must hold the gate.
func (b *DCRBridge) handshake(t *sched.Task, addr, value uint64) handshakeResult {
	t.Wait(b.clk.Posedge())

	if !b.ports.ResetN.Read() {
		return handshakeReset
	}
	b.ports.Valid.Write(true)
	b.ports.Addr.Write(addr & DCR_ADDR_MASK)
	b.ports.Data.Write(value & b.dataMask())

	// valid is only done once it reads back low; a write made in this
	// delta is not visible until the next falling edge.
	for edges := 0; edges < b.maxDeassertEdges; edges++ {
		t.Wait(b.clk.Negedge())
		b.ports.Valid.Write(false)
		if !b.ports.Valid.Read() {
			return handshakeOK
		}
	}
	return handshakeStuck
}
