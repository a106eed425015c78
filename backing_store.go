// backing_store.go - Byte addressable backing store behind the memory dispatcher

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
backing_store.go - Backing Store for the Vortex bridge harness

This module implements the RAM that sits behind the memory dispatcher. It holds
the program image loaded at start up and every byte the device writes outside
the console window for the rest of the run.

Core Features:

    A fixed size region [base, base+size) allocated as one contiguous block.
    Bounds checked byte and range accesses; nothing outside the region is
    ever touched, an out of range access returns ErrOutOfRange instead.
    Raw range writes for the image loaders.
    Full reset capability to clear the region.

Concurrency:

    A sync.RWMutex protects all accesses. The dispatcher is the only writer
    once the simulation runs, but image loading and test inspection happen
    from outside the kernel.
*/

package main

import (
	"errors"
	"fmt"
	"sync"
)

var ErrOutOfRange = errors.New("backing store: access out of range")

type BackingStore struct {
	/*
		BackingStore is the byte addressable memory of the harness.
		It never grows or shrinks after construction.
	*/

	base   uint64
	memory []byte
	mutex  sync.RWMutex
}

func NewBackingStore(base uint64, size int) *BackingStore {
	return &BackingStore{
		base:   base,
		memory: make([]byte, size),
	}
}

func (s *BackingStore) Base() uint64 { return s.base }
func (s *BackingStore) Size() int    { return len(s.memory) }

// Contains reports whether [addr, addr+n) lies inside the region.
func (s *BackingStore) Contains(addr uint64, n int) bool {
	if n < 0 || addr < s.base {
		return false
	}
	off := addr - s.base
	size := uint64(len(s.memory))
	return off <= size && uint64(n) <= size-off
}

func (s *BackingStore) rangeError(addr uint64, n int) error {
	return fmt.Errorf("%w: 0x%X+%d outside [0x%X, 0x%X)", ErrOutOfRange, addr, n, s.base, s.base+uint64(len(s.memory)))
}

func (s *BackingStore) Read(addr uint64, dst []byte) error {
	/*
		Read copies len(dst) bytes starting at addr into dst. dst is left
		untouched when any part of the range is outside the region.
	*/

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.Contains(addr, len(dst)) {
		return s.rangeError(addr, len(dst))
	}
	off := addr - s.base
	copy(dst, s.memory[off:off+uint64(len(dst))])
	return nil
}

func (s *BackingStore) Write(addr uint64, src []byte) error {
	/*
		Write stores src starting at addr. This is the raw range primitive
		the image loaders use. Nothing is written when any part of the range
		is outside the region.
	*/

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.Contains(addr, len(src)) {
		return s.rangeError(addr, len(src))
	}
	off := addr - s.base
	copy(s.memory[off:], src)
	return nil
}

func (s *BackingStore) Load8(addr uint64) (byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.Contains(addr, 1) {
		return 0, s.rangeError(addr, 1)
	}
	return s.memory[addr-s.base], nil
}

func (s *BackingStore) Store8(addr uint64, value byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.Contains(addr, 1) {
		return s.rangeError(addr, 1)
	}
	s.memory[addr-s.base] = value
	return nil
}

// GetMemory exposes the backing slice for direct inspection.
func (s *BackingStore) GetMemory() []byte {
	return s.memory
}

func (s *BackingStore) Reset() {
	/*
		Reset clears the whole region under the write lock.
	*/

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.memory {
		s.memory[i] = 0
	}
}
