package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/intuitionamiga/vortexbridge/sched"
)

func traceRun(t *testing.T, start, stop sched.Time) string {
	t.Helper()
	k, err := sched.NewKernel(CLOCK_PERIOD_PS)
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	defer k.Shutdown()
	valid := sched.NewSignal(k, "valid", false)
	data := sched.NewSignal(k, "data", uint64(0))
	sched.NewSignal(k, "untraced", false)

	var buf bytes.Buffer
	tr := NewVCDTrace(&buf, []TraceSignal{
		{Name: "clk", Width: 1},
		{Name: "valid", Width: 1},
		{Name: "data", Width: 8},
	})
	tr.SetWindow(start, stop)
	k.OnCommit(tr.Observe)

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	k.Spawn("driver", func(task *sched.Task) {
		task.WaitPosedge()
		valid.Write(true)
		data.Write(5)
		task.WaitNegedge()
		valid.Write(false)
	})
	if err := k.RunCycles(2); err != nil {
		t.Fatalf("run: %v", err)
	}
	tr.Close()
	if err := <-done; err != nil {
		t.Fatalf("trace: %v", err)
	}
	return buf.String()
}

func TestVCDTrace_Header(t *testing.T) {
	out := traceRun(t, 0, ^sched.Time(0))
	for _, want := range []string{
		"$timescale 1ps $end\n",
		"$var wire 1 ! clk $end\n",
		"$var wire 1 \" valid $end\n",
		"$var wire 8 # data $end\n",
		"$enddefinitions $end\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("header missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "untraced") {
		t.Fatal("untraced signal was dumped")
	}
}

func TestVCDTrace_Changes(t *testing.T) {
	out := traceRun(t, 0, ^sched.Time(0))
	body := out[strings.Index(out, "$enddefinitions $end\n")+len("$enddefinitions $end\n"):]
	want := "#0\n1!\n1\"\nb101 #\n#1\n0!\n0\"\n#2\n1!\n#3\n0!\n#4\n1!\n"
	if body != want {
		t.Fatalf("expected changes\n%q\ngot\n%q", want, body)
	}
}

func TestVCDTrace_Window(t *testing.T) {
	out := traceRun(t, 2, 4)
	body := out[strings.Index(out, "$enddefinitions $end\n")+len("$enddefinitions $end\n"):]
	if body != "#2\n1!\n#3\n0!\n" {
		t.Fatalf("expected only the changes in [2, 4), got %q", body)
	}
}

func TestVCDIdentifier(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "!"},
		{1, "\""},
		{93, "~"},
		{94, "!\""},
	}
	for _, tc := range tests {
		if got := vcdIdentifier(tc.index); got != tc.want {
			t.Fatalf("vcdIdentifier(%d): expected %q, got %q", tc.index, tc.want, got)
		}
	}
}
