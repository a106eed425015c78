// mem_dispatcher.go - Memory transaction dispatcher for the Vortex bridge harness

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
mem_dispatcher.go - Memory Dispatcher

The dispatcher is the target end of the device's memory port. Each call
carries one 64 byte beat.

    Reads copy the beat from the backing store.
    Writes walk the 64 byte lanes; a lane whose byte enable is zero is left
    alone. An enabled lane whose address falls inside a mapped I/O region is
    handed to that region's callback with its lane index, every other enabled
    lane is stored in the backing store.

I/O regions are registered with MapIO and looked up through a page keyed
table (IO_PAGE_MASK), the same way the machine bus maps its peripherals. The
console window is mapped at construction and routes by lane, so each lane
builds its own output line.

Validation happens before any byte moves: command, beat length, byte enable
length, then the bounds of every lane headed for the backing store. A failing
transaction leaves memory and console untouched.
*/

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"

	"github.com/intuitionamiga/vortexbridge/sched"
)

type IORegion struct {
	/*
		IORegion is a window of the address space whose enabled write
		lanes are diverted to onWrite instead of the backing store.
	*/
	start   uint64
	end     uint64
	onWrite func(lane int, addr uint64, value byte)
}

type MemDispatcher struct {
	store   *BackingStore
	console *LaneConsole
	mapping map[uint64][]IORegion

	debug atomic.Bool
	log   io.Writer
}

func NewMemDispatcher(store *BackingStore, console *LaneConsole) *MemDispatcher {
	d := &MemDispatcher{
		store:   store,
		console: console,
		mapping: make(map[uint64][]IORegion),
		log:     os.Stdout,
	}
	d.MapIO(IO_COUT_ADDR, IO_COUT_ADDR+IO_COUT_SIZE-1, func(lane int, _ uint64, value byte) {
		console.Append(lane, value)
	})
	return d
}

// SetDebug enables a log line per write transaction.
func (d *MemDispatcher) SetDebug(on bool) { d.debug.Store(on) }

// SetLog redirects debug output.
func (d *MemDispatcher) SetLog(w io.Writer) { d.log = w }

func (d *MemDispatcher) MapIO(start, end uint64, onWrite func(lane int, addr uint64, value byte)) {
	/*
		MapIO registers [start, end] as an I/O region, appending it to
		every page the region spans.
	*/

	if end < start {
		return
	}
	region := IORegion{
		start:   start,
		end:     end,
		onWrite: onWrite,
	}
	firstPage := start & IO_PAGE_MASK
	lastPage := end & IO_PAGE_MASK
	for page := firstPage; ; page += IO_PAGE_SIZE {
		d.mapping[page] = append(d.mapping[page], region)
		if page == lastPage {
			break
		}
	}
}

func (d *MemDispatcher) regionFor(addr uint64) *IORegion {
	regions, ok := d.mapping[addr&IO_PAGE_MASK]
	if !ok {
		return nil
	}
	for i := range regions {
		if addr >= regions[i].start && addr <= regions[i].end {
			return &regions[i]
		}
	}
	return nil
}

// BTransport implements Target. The dispatcher never suspends, so the
// annotated delay is left for the initiator.
func (d *MemDispatcher) BTransport(_ *sched.Task, p *Payload, _ *sched.Time) {
	d.Transact(p)
}

func (d *MemDispatcher) Transact(p *Payload) ResponseStatus {
	/*
		Transact executes p and stores the outcome in p.Status.
	*/

	switch p.Command {
	case CommandRead:
		p.Status = d.read(p)
	case CommandWrite:
		p.Status = d.write(p)
	default:
		p.Status = StatusCommandError
	}
	return p.Status
}

func (d *MemDispatcher) read(p *Payload) ResponseStatus {
	if len(p.Data) != MEM_BEAT_BYTES {
		return StatusBurstError
	}
	if err := d.store.Read(p.Address, p.Data); err != nil {
		return StatusAddressError
	}
	return StatusOK
}

func (d *MemDispatcher) write(p *Payload) ResponseStatus {
	if d.debug.Load() {
		fmt.Fprintf(d.log, "mem_dispatcher: write 0x%x len 0x%x\n", p.Address, len(p.Data))
	}
	if len(p.Data) != MEM_BEAT_BYTES {
		return StatusBurstError
	}
	if p.ByteEnable != nil && len(p.ByteEnable) != MEM_BEAT_BYTES {
		return StatusByteEnableError
	}
	if p.Address > math.MaxUint64-(MEM_BEAT_BYTES-1) {
		return StatusAddressError
	}

	var regions [MEM_BEAT_BYTES]*IORegion
	for i := 0; i < MEM_BEAT_BYTES; i++ {
		if !p.laneEnabled(i) {
			continue
		}
		addr := p.Address + uint64(i)
		if r := d.regionFor(addr); r != nil {
			regions[i] = r
			continue
		}
		if !d.store.Contains(addr, 1) {
			return StatusAddressError
		}
	}

	for i := 0; i < MEM_BEAT_BYTES; i++ {
		if !p.laneEnabled(i) {
			continue
		}
		addr := p.Address + uint64(i)
		if regions[i] != nil {
			regions[i].onWrite(i, addr, p.Data[i])
			continue
		}
		if err := d.store.Store8(addr, p.Data[i]); err != nil {
			return StatusGenericError
		}
	}
	return StatusOK
}

// Close tears down the console lane buffers at the end of a run and returns
// the number of lanes that still held an unterminated line.
func (d *MemDispatcher) Close() int {
	return d.console.Close()
}
