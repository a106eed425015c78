// processor.go - Harness top level: clock, reset, DCR bridge, memory dispatcher and core

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
processor.go - Processor

Processor wires the harness together the way the device expects to see it:

    clk      free running kernel clock (CLOCK_PERIOD_PS by default)
    reset_n  active low reset of the bridges
    rst      active high reset of the core
    dcr_wr_valid / dcr_wr_addr / dcr_wr_data
             DCR write port, driven by the DCR bridge, sampled by the core
    busy     core status, exposed but not interpreted

Memory transactions from the device go straight to the memory dispatcher.
DCR writes requested from outside the kernel with WriteDCR are queued for a
dedicated worker task which issues them through the bridge one by one and
logs the response code (0 ok, -1 address error, -2 anything else).
*/

package main

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/intuitionamiga/vortexbridge/sched"
)

type ProcessorConfig struct {
	MemBase     uint64
	MemSize     int
	DCRWidth    int
	ClockPeriod sched.Time
	Console     io.Writer
	Log         io.Writer
	Debug       bool
}

func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		MemBase:     STARTUP_ADDR,
		MemSize:     DEFAULT_MEM_SIZE,
		DCRWidth:    32,
		ClockPeriod: CLOCK_PERIOD_PS,
	}
}

type dcrRequest struct {
	addr  uint64
	value uint64
}

type Processor struct {
	kernel  *sched.Kernel
	ram     *BackingStore
	console *LaneConsole
	mem     *MemDispatcher
	memPort Target
	dcr     *DCRBridge
	core    *CoreStub

	rst      *sched.Signal[bool]
	resetN   *sched.Signal[bool]
	dcrValid *sched.Signal[bool]
	dcrAddr  *sched.Signal[uint64]
	dcrData  *sched.Signal[uint64]
	busy     *sched.Signal[bool]

	dcrQueue   []dcrRequest
	dcrEvent   *sched.Event
	dcrResults []int

	log   io.Writer
	debug atomic.Bool
}

func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if cfg.MemSize <= 0 {
		return nil, fmt.Errorf("processor: invalid memory size %d", cfg.MemSize)
	}
	kernel, err := sched.NewKernel(cfg.ClockPeriod)
	if err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}
	if cfg.Log == nil {
		cfg.Log = os.Stdout
	}

	p := &Processor{
		kernel:   kernel,
		ram:      NewBackingStore(cfg.MemBase, cfg.MemSize),
		console:  NewLaneConsole(cfg.Console),
		rst:      sched.NewSignal(kernel, "rst", false),
		resetN:   sched.NewSignal(kernel, "reset_n", false),
		dcrValid: sched.NewSignal(kernel, "dcr_wr_valid", false),
		dcrAddr:  sched.NewSignal(kernel, "dcr_wr_addr", uint64(0)),
		dcrData:  sched.NewSignal(kernel, "dcr_wr_data", uint64(0)),
		busy:     sched.NewSignal(kernel, "busy", false),
		dcrEvent: kernel.NewEvent("write_dcr"),
		log:      cfg.Log,
	}
	p.mem = NewMemDispatcher(p.ram, p.console)
	p.mem.SetLog(cfg.Log)
	p.memPort = p.mem

	p.dcr, err = NewDCRBridge(kernel, "tlm2dcr", cfg.DCRWidth, DCRPorts{
		ResetN: p.resetN,
		Valid:  p.dcrValid,
		Addr:   p.dcrAddr,
		Data:   p.dcrData,
	})
	if err != nil {
		return nil, err
	}

	p.core = NewCoreStub(kernel, CorePorts{
		Reset: p.rst,
		Valid: p.dcrValid,
		Addr:  p.dcrAddr,
		Data:  p.dcrData,
		Busy:  p.busy,
	})
	kernel.Spawn("write_dcr", p.dcrWorker)

	p.SetDebug(cfg.Debug)
	return p, nil
}

func (p *Processor) Kernel() *sched.Kernel       { return p.kernel }
func (p *Processor) RAM() *BackingStore          { return p.ram }
func (p *Processor) Console() *LaneConsole       { return p.console }
func (p *Processor) Mem() *MemDispatcher         { return p.mem }
func (p *Processor) DCRBridge() *DCRBridge       { return p.dcr }
func (p *Processor) Core() *CoreStub             { return p.core }
func (p *Processor) ResetN() *sched.Signal[bool] { return p.resetN }
func (p *Processor) Busy() *sched.Signal[bool]   { return p.busy }

func (p *Processor) SetDebug(on bool) {
	p.debug.Store(on)
	p.mem.SetDebug(on)
}

// WriteDCR queues a register write for the DCR worker. It may be called
// between runs; the write is issued once the kernel runs again.
func (p *Processor) WriteDCR(addr, value uint64) {
	p.dcrQueue = append(p.dcrQueue, dcrRequest{addr: addr, value: value})
	p.dcrEvent.Notify()
	if p.debug.Load() {
		fmt.Fprintf(p.log, "processor: write_dcr 0x%03x = 0x%x\n", addr, value)
	}
}

// DCRResults returns the response codes of the queued writes completed so far.
func (p *Processor) DCRResults() []int {
	return append([]int(nil), p.dcrResults...)
}

// PendingDCR returns the number of queued writes not yet issued.
func (p *Processor) PendingDCR() int { return len(p.dcrQueue) }

func (p *Processor) dcrWorker(t *sched.Task) {
	for {
		for len(p.dcrQueue) == 0 {
			t.Wait(p.dcrEvent)
		}
		req := p.dcrQueue[0]
		p.dcrQueue = p.dcrQueue[1:]

		resp := dcrResultCode(p.dcr.Write(t, req.addr, req.value))
		p.dcrResults = append(p.dcrResults, resp)
		fmt.Fprintf(p.log, "resp = %d\n", resp)
	}
}

func dcrResultCode(status ResponseStatus) int {
	switch status {
	case StatusOK:
		return 0
	case StatusAddressError:
		return -1
	default:
		return -2
	}
}

// DCRWrite issues a register write from a task and waits for its status.
func (p *Processor) DCRWrite(t *sched.Task, addr, value uint64) ResponseStatus {
	return p.dcr.Write(t, addr, value)
}

// AttachMemory replaces the target memory transactions are sent to. The
// built-in dispatcher is attached by default.
func (p *Processor) AttachMemory(target Target) {
	p.memPort = target
}

// MemTransport hands a memory transaction to the attached memory target.
func (p *Processor) MemTransport(t *sched.Task, payload *Payload) ResponseStatus {
	var delay sched.Time
	p.memPort.BTransport(t, payload, &delay)
	return payload.Status
}

// SetResetN drives reset_n from outside the kernel.
func (p *Processor) SetResetN(level bool) { p.resetN.Write(level) }

// SetCoreReset drives the core rst line from outside the kernel.
func (p *Processor) SetCoreReset(level bool) { p.rst.Write(level) }

func (p *Processor) ResetSequence() error {
	/*
		ResetSequence pulls reset_n low for RESET_N_CYCLES, then holds the
		core in rst for CORE_RESET_CYCLES, matching the power on sequence
		the device was verified against.
	*/

	p.SetResetN(false)
	if err := p.kernel.RunCycles(RESET_N_CYCLES); err != nil {
		return fmt.Errorf("processor: reset_n: %w", err)
	}
	p.SetResetN(true)

	p.SetCoreReset(true)
	if err := p.kernel.RunCycles(CORE_RESET_CYCLES); err != nil {
		return fmt.Errorf("processor: rst: %w", err)
	}
	p.SetCoreReset(false)
	return nil
}

// Run advances the simulation by n clock cycles.
func (p *Processor) Run(n uint64) error {
	return p.kernel.RunCycles(n)
}

// Close ends the run: console lane buffers are torn down, every task is
// unwound. It returns the number of lanes left with an unterminated line.
func (p *Processor) Close() int {
	unflushed := p.mem.Close()
	if unflushed > 0 {
		fmt.Fprintf(p.log, "processor: %d console lane(s) ended without a newline\n", unflushed)
	}
	p.kernel.Shutdown()
	return unflushed
}
