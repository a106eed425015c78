// stimulus_lua.go - Lua stimulus scripts driving the harness from a kernel task

package main

import (
	"fmt"

	"github.com/intuitionamiga/vortexbridge/sched"
	lua "github.com/yuin/gopher-lua"
)

/*
A stimulus script runs inside its own kernel task, so every call that waits
(dcr_write, wait_cycles, reset) advances simulated time rather than wall
time. Functions available to scripts:

    dcr_write(addr, value)          -> status
    mem_write(addr, {bytes}, {be})  -> status   be optional
    mem_read(addr)                  -> {64 bytes}, status
    console(lane, str)              -> status   one beat per character
    wait_cycles(n)
    reset(cycles)                   pulls reset_n low for cycles
    now()                           -> simulated time in ps
    dcr(addr)                       -> last value the core latched, or nil

Status values are the response names, e.g. "TLM_OK_RESPONSE".
*/

type Stimulus struct {
	proc *Processor
	name string
	path string
	src  string
	err  error
	done bool
}

// RunScript runs the Lua file at path for at most maxCycles clock cycles.
func (p *Processor) RunScript(path string, maxCycles uint64) error {
	return p.runStimulus(&Stimulus{proc: p, name: path, path: path}, maxCycles)
}

// RunScriptString runs Lua source held in memory; name labels errors.
func (p *Processor) RunScriptString(name, src string, maxCycles uint64) error {
	return p.runStimulus(&Stimulus{proc: p, name: name, src: src}, maxCycles)
}

func (p *Processor) runStimulus(s *Stimulus, maxCycles uint64) error {
	p.kernel.Spawn("stimulus", s.run)
	if err := p.kernel.RunCycles(maxCycles); err != nil {
		return fmt.Errorf("stimulus: %s: %w", s.name, err)
	}
	if s.err != nil {
		return fmt.Errorf("stimulus: %s: %w", s.name, s.err)
	}
	if !s.done {
		return fmt.Errorf("stimulus: %s: still running after %d cycles", s.name, maxCycles)
	}
	return nil
}

func (s *Stimulus) run(t *sched.Task) {
	L := lua.NewState()
	defer L.Close()
	s.register(L, t)

	if s.path != "" {
		s.err = L.DoFile(s.path)
	} else {
		s.err = L.DoString(s.src)
	}
	s.done = true
	t.Kernel().Stop()
}

func (s *Stimulus) register(L *lua.LState, t *sched.Task) {
	p := s.proc
	fns := map[string]lua.LGFunction{
		"dcr_write": func(L *lua.LState) int {
			addr := uint64(L.CheckInt64(1))
			value := uint64(L.CheckInt64(2))
			L.Push(lua.LString(p.DCRWrite(t, addr, value).String()))
			return 1
		},
		"mem_write": func(L *lua.LState) int {
			addr := uint64(L.CheckInt64(1))
			data := checkBytes(L, 2)
			var enable []byte
			if L.GetTop() >= 3 && L.Get(3) != lua.LNil {
				enable = checkBytes(L, 3)
			} else if len(data) < MEM_BEAT_BYTES {
				enable = make([]byte, len(data))
				for i := range enable {
					enable[i] = 0xFF
				}
			}
			L.Push(lua.LString(p.MemTransport(t, NewWritePayload(addr, data, enable)).String()))
			return 1
		},
		"mem_read": func(L *lua.LState) int {
			payload := NewReadPayload(uint64(L.CheckInt64(1)))
			status := p.MemTransport(t, payload)
			tbl := L.CreateTable(len(payload.Data), 0)
			for _, b := range payload.Data {
				tbl.Append(lua.LNumber(b))
			}
			L.Push(tbl)
			L.Push(lua.LString(status.String()))
			return 2
		},
		"console": func(L *lua.LState) int {
			lane := L.CheckInt(1)
			if lane < 0 || lane >= IO_COUT_SIZE {
				L.ArgError(1, fmt.Sprintf("lane must be 0..%d", IO_COUT_SIZE-1))
			}
			status := StatusOK
			for _, c := range []byte(L.CheckString(2)) {
				data := make([]byte, MEM_BEAT_BYTES)
				enable := make([]byte, MEM_BEAT_BYTES)
				data[lane] = c
				enable[lane] = 0xFF
				if status = p.MemTransport(t, NewWritePayload(IO_COUT_ADDR, data, enable)); !status.OK() {
					break
				}
			}
			L.Push(lua.LString(status.String()))
			return 1
		},
		"wait_cycles": func(L *lua.LState) int {
			t.WaitCycles(L.CheckInt(1))
			return 0
		},
		"reset": func(L *lua.LState) int {
			cycles := L.OptInt(1, RESET_N_CYCLES)
			p.SetResetN(false)
			t.WaitCycles(cycles)
			p.SetResetN(true)
			return 0
		},
		"now": func(L *lua.LState) int {
			L.Push(lua.LNumber(t.Now()))
			return 1
		},
		"dcr": func(L *lua.LState) int {
			v, ok := p.core.DCR(uint64(L.CheckInt64(1)))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(v))
			return 1
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// checkBytes reads a Lua array of byte values, at most one beat long.
func checkBytes(L *lua.LState, n int) []byte {
	tbl := L.CheckTable(n)
	if tbl.Len() > MEM_BEAT_BYTES {
		L.ArgError(n, fmt.Sprintf("at most %d bytes", MEM_BEAT_BYTES))
	}
	out := make([]byte, tbl.Len())
	for i := range out {
		v, ok := tbl.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			L.ArgError(n, fmt.Sprintf("element %d is not a number", i+1))
		}
		out[i] = byte(int64(v))
	}
	return out
}
