package main

import (
	"bytes"
	"testing"
)

func TestLaneConsole_FlushOnNewline(t *testing.T) {
	var out bytes.Buffer
	c := NewLaneConsole(&out)
	c.Append(3, 'A')
	if out.Len() != 0 {
		t.Fatalf("expected no output before newline, got %q", out.String())
	}
	c.Append(3, '\n')
	if out.String() != "#3: A\n" {
		t.Fatalf("expected %q, got %q", "#3: A\n", out.String())
	}
	if c.Pending(3) != "" {
		t.Fatalf("expected empty lane after flush, got %q", c.Pending(3))
	}
}

func TestLaneConsole_LanesAreIndependent(t *testing.T) {
	var out bytes.Buffer
	c := NewLaneConsole(&out)
	for _, ch := range []byte("hi") {
		c.Append(0, ch)
		c.Append(17, ch+1)
	}
	c.Append(17, '\n')
	if out.String() != "#17: ij\n" {
		t.Fatalf("expected only lane 17 output, got %q", out.String())
	}
	if c.Pending(0) != "hi" {
		t.Fatalf("expected lane 0 to hold %q, got %q", "hi", c.Pending(0))
	}
	lanes := c.Lanes()
	if len(lanes) != 2 || lanes[0] != 0 || lanes[1] != 17 {
		t.Fatalf("expected lanes [0 17], got %v", lanes)
	}
}

func TestLaneConsole_EmptyLine(t *testing.T) {
	var out bytes.Buffer
	c := NewLaneConsole(&out)
	c.Append(5, '\n')
	if out.String() != "#5: \n" {
		t.Fatalf("expected %q, got %q", "#5: \n", out.String())
	}
}

func TestLaneConsole_CloseDiscardsUnflushed(t *testing.T) {
	var out bytes.Buffer
	c := NewLaneConsole(&out)
	c.Append(1, 'B')
	c.Append(2, 'C')
	c.Append(2, '\n')
	out.Reset()

	if n := c.Close(); n != 1 {
		t.Fatalf("expected 1 unflushed lane, got %d", n)
	}
	if out.Len() != 0 {
		t.Fatalf("unflushed characters were printed: %q", out.String())
	}
	if len(c.Lanes()) != 0 {
		t.Fatalf("expected no lanes after close, got %v", c.Lanes())
	}
}
