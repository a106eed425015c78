// lane_console.go - Per-lane console capture for the console window

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// LaneConsole accumulates one output line per byte lane. A line is written to
// the sink, prefixed with its lane, when its newline arrives. Characters of a
// line that never gets a newline stay buffered and are never printed.
type LaneConsole struct {
	mutex sync.Mutex
	out   io.Writer
	lanes map[int]*bytes.Buffer
}

// NewLaneConsole creates a console writing flushed lines to out (stdout if nil).
func NewLaneConsole(out io.Writer) *LaneConsole {
	if out == nil {
		out = os.Stdout
	}
	return &LaneConsole{
		out:   out,
		lanes: make(map[int]*bytes.Buffer),
	}
}

// Append adds one character to the line buffer of lane and flushes the line
// if the character is a newline.
func (c *LaneConsole) Append(lane int, char byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	buf, ok := c.lanes[lane]
	if !ok {
		buf = new(bytes.Buffer)
		c.lanes[lane] = buf
	}
	buf.WriteByte(char)
	if char == '\n' {
		fmt.Fprintf(c.out, "#%d: %s", lane, buf.Bytes())
		buf.Reset()
	}
}

// Pending returns the characters buffered on lane since its last flush.
func (c *LaneConsole) Pending(lane int) string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if buf, ok := c.lanes[lane]; ok {
		return buf.String()
	}
	return ""
}

// Lanes returns the lanes that have received at least one character.
func (c *LaneConsole) Lanes() []int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	lanes := make([]int, 0, len(c.lanes))
	for lane := range c.lanes {
		lanes = append(lanes, lane)
	}
	sort.Ints(lanes)
	return lanes
}

// Close drops every lane buffer and returns how many still held characters.
// The unflushed characters are discarded, not printed.
func (c *LaneConsole) Close() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	unflushed := 0
	for _, buf := range c.lanes {
		if buf.Len() > 0 {
			unflushed++
		}
	}
	c.lanes = make(map[int]*bytes.Buffer)
	return unflushed
}
