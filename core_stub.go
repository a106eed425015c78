// core_stub.go - Stand-in for the device core on the DCR port

package main

import "github.com/intuitionamiga/vortexbridge/sched"

// DCRWrite is one register write as the core latched it.
type DCRWrite struct {
	Addr  uint64
	Value uint64
	At    sched.Time
}

// CorePorts are the core-side signals of the harness.
type CorePorts struct {
	Reset *sched.Signal[bool] // active high
	Valid *sched.Signal[bool]
	Addr  *sched.Signal[uint64]
	Data  *sched.Signal[uint64]
	Busy  *sched.Signal[bool]
}

// CoreStub samples the DCR write port on every falling clock edge and keeps
// the last value written to each register. busy is held low in reset and
// raised once a startup address has been programmed. Nothing else of the
// device is modelled.
type CoreStub struct {
	ports  CorePorts
	regs   map[uint64]uint64
	writes []DCRWrite
}

func NewCoreStub(k *sched.Kernel, ports CorePorts) *CoreStub {
	c := &CoreStub{
		ports: ports,
		regs:  make(map[uint64]uint64),
	}
	k.Spawn("core", c.run)
	return c
}

func (c *CoreStub) run(t *sched.Task) {
	for {
		t.WaitNegedge()
		if c.ports.Reset.Read() {
			c.ports.Busy.Write(false)
			continue
		}
		if c.ports.Valid.Read() {
			w := DCRWrite{
				Addr:  c.ports.Addr.Read(),
				Value: c.ports.Data.Read(),
				At:    t.Now(),
			}
			c.regs[w.Addr] = w.Value
			c.writes = append(c.writes, w)
		}
		_, started := c.regs[VX_DCR_BASE_STARTUP_ADDR0]
		c.ports.Busy.Write(started)
	}
}

// DCR returns the last value latched for addr.
func (c *CoreStub) DCR(addr uint64) (uint64, bool) {
	v, ok := c.regs[addr]
	return v, ok
}

// Writes returns every latched write in order. A valid pulse that stays high
// across several falling edges shows up once per edge.
func (c *CoreStub) Writes() []DCRWrite {
	return append([]DCRWrite(nil), c.writes...)
}
