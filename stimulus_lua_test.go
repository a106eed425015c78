package main

import (
	"strings"
	"testing"
)

func TestStimulus_DrivesBridgeAndMemory(t *testing.T) {
	p, _, console := newTestProcessor(t)
	if err := p.ResetSequence(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	script := `
assert(dcr_write(1, 0x80000000) == "TLM_OK_RESPONSE")
assert(dcr(1) == 0x80000000)
assert(dcr(2) == nil)

assert(mem_write(0x80000000, {1, 2, 3, 4}) == "TLM_OK_RESPONSE")
local data, status = mem_read(0x80000000)
assert(status == "TLM_OK_RESPONSE")
assert(#data == 64 and data[1] == 1 and data[4] == 4 and data[5] == 0)

assert(mem_write(0x90000000, {1}) == "TLM_ADDRESS_ERROR_RESPONSE")
assert(console(5, "hey\n") == "TLM_OK_RESPONSE")

wait_cycles(1)
local before = now()
wait_cycles(3)
assert(now() - before == 6)
`
	if err := p.RunScriptString("boot.lua", script, 100); err != nil {
		t.Fatalf("script: %v", err)
	}
	if console.String() != "#5: hey\n" {
		t.Fatalf("expected %q, got %q", "#5: hey\n", console.String())
	}
}

func TestStimulus_PartialBeatLeavesRestOfBeat(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	if err := p.ResetSequence(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	p.RAM().Write(STARTUP_ADDR, []byte{0, 0, 0xEE})

	if err := p.RunScriptString("partial.lua", `mem_write(0x80000000, {7, 8})`, 10); err != nil {
		t.Fatalf("script: %v", err)
	}
	if m := p.RAM().GetMemory(); m[0] != 7 || m[1] != 8 || m[2] != 0xEE {
		t.Fatalf("unexpected memory % X", m[:3])
	}
}

func TestStimulus_ResetPulse(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	if err := p.ResetSequence(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	script := `
reset(2)
assert(dcr_write(3, 0) == "TLM_OK_RESPONSE")
`
	if err := p.RunScriptString("reset.lua", script, 50); err != nil {
		t.Fatalf("script: %v", err)
	}
	if !p.ResetN().Read() {
		t.Fatal("reset_n left low by the script")
	}
}

func TestStimulus_ScriptError(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	err := p.RunScriptString("bad.lua", `error("boom")`, 10)
	if err == nil || !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "bad.lua") {
		t.Fatalf("expected script error naming bad.lua, got %v", err)
	}
}

func TestStimulus_BadArguments(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	for _, src := range []string{
		`console(64, "x")`,
		`mem_write(0x80000000, {"a"})`,
		`dcr_write("x", 1)`,
	} {
		if err := p.RunScriptString("args.lua", src, 10); err == nil {
			t.Fatalf("expected error for %s", src)
		}
	}
}

func TestStimulus_RunsOutOfCycles(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	err := p.RunScriptString("spin.lua", `while true do wait_cycles(1) end`, 10)
	if err == nil || !strings.Contains(err.Error(), "still running") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestStimulus_RunScriptFile(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	if err := p.ResetSequence(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	path := writeTempFile(t, "stim.lua", []byte(`assert(dcr_write(2, 0) == "TLM_OK_RESPONSE")`))
	if err := p.RunScript(path, 20); err != nil {
		t.Fatalf("script: %v", err)
	}
	if _, ok := p.Core().DCR(VX_DCR_BASE_STARTUP_ADDR1); !ok {
		t.Fatal("script write not latched")
	}
}
