package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadImage_Bin(t *testing.T) {
	store := NewBackingStore(STARTUP_ADDR, 0x100)
	path := writeTempFile(t, "kernel.bin", []byte{0x13, 0x00, 0x00, 0x00, 0x6F})
	if err := LoadImage(store, path, STARTUP_ADDR); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(store.GetMemory()[:5], []byte{0x13, 0x00, 0x00, 0x00, 0x6F}) {
		t.Fatalf("unexpected memory % X", store.GetMemory()[:5])
	}
}

func TestLoadImage_BinTooLarge(t *testing.T) {
	store := NewBackingStore(STARTUP_ADDR, 4)
	path := writeTempFile(t, "big.BIN", make([]byte, 8))
	err := LoadImage(store, path, STARTUP_ADDR)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestLoadImage_Hex(t *testing.T) {
	// Extended linear address 0x8000, four data bytes at 0x0010, start
	// address record, EOF.
	image := strings.Join([]string{
		":0200000480007A",
		":0400100001020304E2",
		":040000058000000077",
		":00000001FF",
		"",
	}, "\n")
	store := NewBackingStore(STARTUP_ADDR, 0x100)
	path := writeTempFile(t, "prog.hex", []byte(image))
	if err := LoadImage(store, path, STARTUP_ADDR); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(store.GetMemory()[0x10:0x14], []byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected memory % X", store.GetMemory()[0x10:0x14])
	}
}

func TestParseHexImage_SegmentAddress(t *testing.T) {
	var got []uint64
	err := ParseHexImage(strings.NewReader(":020000021000EC\n:01000000AA55\n:00000001FF\n"),
		func(addr uint64, data []byte) error {
			got = append(got, addr)
			return nil
		})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || got[0] != 0x10000 {
		t.Fatalf("expected one record at 0x10000, got %X", got)
	}
}

func TestParseHexImage_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad checksum", ":0400100001020304E3\n:00000001FF\n"},
		{"no colon", "0400100001020304E2\n"},
		{"bad hex", ":04001000010203ZZE2\n"},
		{"count mismatch", ":0500100001020304E1\n"},
		{"missing eof", ":0400100001020304E2\n"},
		{"unknown type", ":00000006FA\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ParseHexImage(strings.NewReader(tc.input), func(uint64, []byte) error { return nil })
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadImage_UnsupportedExtension(t *testing.T) {
	store := NewBackingStore(STARTUP_ADDR, 0x100)
	path := writeTempFile(t, "prog.elf", []byte{0x7F, 'E', 'L', 'F'})
	err := LoadImage(store, path, STARTUP_ADDR)
	if errors.Cause(err) != ErrUnsupportedImage {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
	if !strings.Contains(err.Error(), "only *.bin or *.hex images supported") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLoadImage_MissingFile(t *testing.T) {
	store := NewBackingStore(STARTUP_ADDR, 0x100)
	if err := LoadImage(store, filepath.Join(t.TempDir(), "nope.bin"), STARTUP_ADDR); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
