package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/intuitionamiga/vortexbridge/sched"
	"golang.org/x/sync/errgroup"
)

// HarnessConfig is everything main takes from the command line.
type HarnessConfig struct {
	Program    string
	MemBase    uint64
	MemSize    uint64
	XLen       int
	MaxCycles  uint64
	Script     string
	Trace      string
	TraceStart uint64
	TraceStop  uint64
	Serial     string
	SerialBaud uint
	Debug      bool
}

const usageLine = "Usage: ./vortexbridge [-mem-base 0x80000000] [-mem-size 0x1000000] [-xlen 32|64] [-max-cycles n] [-script stim.lua] [-trace out.vcd] [-serial /dev/ttyUSB0] [-debug] program.bin|program.hex"

func parseHarnessFlags(args []string, usage io.Writer) (HarnessConfig, error) {
	var (
		cfg        HarnessConfig
		memBase    string
		memSize    string
		maxCycles  string
		traceStart string
		traceStop  string
	)

	flagSet := flag.NewFlagSet("vortexbridge", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&memBase, "mem-base", fmt.Sprintf("0x%X", STARTUP_ADDR), "Backing store base address (hex or decimal)")
	flagSet.StringVar(&memSize, "mem-size", fmt.Sprintf("0x%X", DEFAULT_MEM_SIZE), "Backing store size in bytes (hex or decimal)")
	flagSet.IntVar(&cfg.XLen, "xlen", 32, "DCR data width in bits (32 or 64)")
	flagSet.StringVar(&maxCycles, "max-cycles", strconv.Itoa(DEFAULT_MAX_CYCLES), "Clock cycles to run after boot")
	flagSet.StringVar(&cfg.Script, "script", "", "Lua stimulus script run after boot")
	flagSet.StringVar(&cfg.Trace, "trace", "", "Write a VCD trace of the harness signals")
	flagSet.StringVar(&traceStart, "trace-start", "0", "First simulated picosecond to trace")
	flagSet.StringVar(&traceStop, "trace-stop", "", "Simulated picosecond at which tracing stops")
	flagSet.StringVar(&cfg.Serial, "serial", "", "Mirror console output to this serial port")
	flagSet.UintVar(&cfg.SerialBaud, "serial-baud", 115200, "Serial port baud rate")
	flagSet.BoolVar(&cfg.Debug, "debug", false, "Log every bus write and DCR request")

	flagSet.Usage = func() {
		flagSet.SetOutput(usage)
		fmt.Fprintln(usage, usageLine)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return cfg, err
	}

	var err error
	if cfg.MemBase, err = parseUint64Flag(memBase); err != nil {
		return cfg, fmt.Errorf("-mem-base: %w", err)
	}
	if cfg.MemSize, err = parseUint64Flag(memSize); err != nil {
		return cfg, fmt.Errorf("-mem-size: %w", err)
	}
	if cfg.MemSize == 0 || cfg.MemSize > 1<<32 {
		return cfg, fmt.Errorf("-mem-size: 0x%X out of range", cfg.MemSize)
	}
	if cfg.MaxCycles, err = parseUint64Flag(maxCycles); err != nil {
		return cfg, fmt.Errorf("-max-cycles: %w", err)
	}
	if cfg.TraceStart, err = parseUint64Flag(traceStart); err != nil {
		return cfg, fmt.Errorf("-trace-start: %w", err)
	}
	cfg.TraceStop = ^uint64(0)
	if traceStop != "" {
		if cfg.TraceStop, err = parseUint64Flag(traceStop); err != nil {
			return cfg, fmt.Errorf("-trace-stop: %w", err)
		}
	}
	if cfg.XLen != 32 && cfg.XLen != 64 {
		return cfg, fmt.Errorf("-xlen: must be 32 or 64, got %d", cfg.XLen)
	}

	cfg.Program = flagSet.Arg(0)
	if cfg.Program == "" {
		flagSet.Usage()
		return cfg, errors.New("no program image given")
	}
	return cfg, nil
}

func parseUint64Flag(value string) (uint64, error) {
	parsed, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func runHarness(ctx context.Context, cfg HarnessConfig, out io.Writer) error {
	pcfg := DefaultProcessorConfig()
	pcfg.MemBase = cfg.MemBase
	pcfg.MemSize = int(cfg.MemSize)
	pcfg.DCRWidth = cfg.XLen
	pcfg.Console = out
	pcfg.Log = out
	pcfg.Debug = cfg.Debug

	proc, err := NewProcessor(pcfg)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	var trace *VCDTrace
	if cfg.Trace != "" {
		f, err := os.Create(cfg.Trace)
		if err != nil {
			proc.Close()
			return fmt.Errorf("trace: %w", err)
		}
		defer f.Close()
		trace = NewVCDTrace(f, HarnessTraceSignals(cfg.XLen))
		trace.SetWindow(sched.Time(cfg.TraceStart), sched.Time(cfg.TraceStop))
		proc.Kernel().OnCommit(trace.Observe)
		g.Go(func() error { return trace.Run(ctx) })
	}

	g.Go(func() error {
		if trace != nil {
			defer trace.Close()
		}
		defer proc.Close()
		return simulate(proc, cfg, out)
	})
	return g.Wait()
}

func simulate(proc *Processor, cfg HarnessConfig, out io.Writer) error {
	fmt.Fprintln(out, "processor: start")

	if err := proc.ResetSequence(); err != nil {
		return err
	}

	proc.WriteDCR(VX_DCR_BASE_STARTUP_ADDR0, STARTUP_ADDR)
	if err := proc.Run(DCR_SETTLE_CYCLES); err != nil {
		return err
	}
	proc.WriteDCR(VX_DCR_BASE_MPM_CLASS, 0)

	if err := LoadImage(proc.RAM(), cfg.Program, STARTUP_ADDR); err != nil {
		return err
	}

	if cfg.Script != "" {
		return proc.RunScript(cfg.Script, cfg.MaxCycles)
	}
	return proc.Run(cfg.MaxCycles)
}

func main() {
	host := NewConsoleHost(os.Stdout)
	host.Banner()

	cfg, err := parseHarnessFlags(os.Args[1:], os.Stdout)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Serial != "" {
		if err := host.MirrorSerial(cfg.Serial, cfg.SerialBaud); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer host.Close()
	}

	fmt.Printf("Running %s...\n", cfg.Program)
	if err := runHarness(context.Background(), cfg, host.Writer()); err != nil {
		fmt.Printf("Error: %v\n", err)
		host.Close()
		os.Exit(1)
	}
}
