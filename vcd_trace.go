// vcd_trace.go - Value change dump of the harness signals

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/intuitionamiga/vortexbridge/sched"
)

const vcdQueueDepth = 4096

// TraceSignal names one signal to dump and its width in bits.
type TraceSignal struct {
	Name  string
	Width int
}

type traceChange struct {
	name  string
	at    sched.Time
	value any
}

// VCDTrace streams committed signal changes to a VCD file. Observe is the
// kernel side and only queues; Run is the writer side and owns the output.
// Changes outside [start, stop) are dropped.
type VCDTrace struct {
	out     *bufio.Writer
	signals []TraceSignal
	ids     map[string]string
	changes chan traceChange

	start, stop sched.Time
	lastTime    sched.Time
	stamped     bool
}

func NewVCDTrace(w io.Writer, signals []TraceSignal) *VCDTrace {
	v := &VCDTrace{
		out:     bufio.NewWriter(w),
		signals: signals,
		ids:     make(map[string]string, len(signals)),
		changes: make(chan traceChange, vcdQueueDepth),
		stop:    ^sched.Time(0),
	}
	for i, s := range signals {
		v.ids[s.Name] = vcdIdentifier(i)
	}
	return v
}

// HarnessTraceSignals are the signals main dumps with -trace.
func HarnessTraceSignals(dcrWidth int) []TraceSignal {
	return []TraceSignal{
		{Name: "clk", Width: 1},
		{Name: "reset_n", Width: 1},
		{Name: "rst", Width: 1},
		{Name: "dcr_wr_valid", Width: 1},
		{Name: "dcr_wr_addr", Width: DCR_ADDR_BITS},
		{Name: "dcr_wr_data", Width: dcrWidth},
		{Name: "busy", Width: 1},
	}
}

// SetWindow limits the dump to changes at or after start and before stop.
func (v *VCDTrace) SetWindow(start, stop sched.Time) {
	v.start, v.stop = start, stop
}

// Observe is a sched.CommitHook.
func (v *VCDTrace) Observe(name string, at sched.Time, value any) {
	if _, ok := v.ids[name]; !ok || at < v.start || at >= v.stop {
		return
	}
	v.changes <- traceChange{name: name, at: at, value: value}
}

// Close ends the stream; Run returns once the queue is drained.
func (v *VCDTrace) Close() {
	close(v.changes)
}

// Run writes the header and every queued change until Close. After a write
// error the queue is still drained so the kernel never blocks on it.
func (v *VCDTrace) Run(ctx context.Context) error {
	err := v.header()
	for {
		select {
		case c, ok := <-v.changes:
			if !ok {
				if err == nil {
					err = v.out.Flush()
				}
				if err != nil {
					return fmt.Errorf("vcd_trace: %w", err)
				}
				return nil
			}
			if err == nil {
				err = v.change(c)
			}
		case <-ctx.Done():
			v.out.Flush()
			return ctx.Err()
		}
	}
}

func (v *VCDTrace) header() error {
	fmt.Fprintf(v.out, "$version vortexbridge $end\n")
	fmt.Fprintf(v.out, "$timescale 1ps $end\n")
	fmt.Fprintf(v.out, "$scope module top $end\n")
	for _, s := range v.signals {
		fmt.Fprintf(v.out, "$var wire %d %s %s $end\n", s.Width, v.ids[s.Name], s.Name)
	}
	fmt.Fprintf(v.out, "$upscope $end\n")
	_, err := fmt.Fprintf(v.out, "$enddefinitions $end\n")
	return err
}

func (v *VCDTrace) change(c traceChange) error {
	if !v.stamped || c.at != v.lastTime {
		if _, err := fmt.Fprintf(v.out, "#%d\n", c.at); err != nil {
			return err
		}
		v.lastTime = c.at
		v.stamped = true
	}

	id := v.ids[c.name]
	var err error
	switch val := c.value.(type) {
	case bool:
		bit := byte('0')
		if val {
			bit = '1'
		}
		_, err = fmt.Fprintf(v.out, "%c%s\n", bit, id)
	case uint64:
		_, err = fmt.Fprintf(v.out, "b%s %s\n", strconv.FormatUint(val, 2), id)
	default:
		_, err = fmt.Fprintf(v.out, "s%v %s\n", val, id)
	}
	return err
}

// vcdIdentifier maps an index to the short printable codes VCD uses.
func vcdIdentifier(i int) string {
	const first, span = '!', '~' - '!' + 1
	id := []byte{byte(first + i%span)}
	for i /= span; i > 0; i /= span {
		id = append(id, byte(first+i%span))
	}
	return string(id)
}
