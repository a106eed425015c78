// image_loader.go - Program image loaders (.bin raw, .hex Intel HEX)

package main

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnsupportedImage = errors.New("only *.bin or *.hex images supported")

// ImageStore is the raw range write primitive the loaders need.
type ImageStore interface {
	Write(addr uint64, src []byte) error
}

const (
	hexRecordData           = 0x00
	hexRecordEOF            = 0x01
	hexRecordExtSegment     = 0x02
	hexRecordStartSegment   = 0x03
	hexRecordExtLinear      = 0x04
	hexRecordStartLinear    = 0x05
	hexRecordMinBytes       = 5 // count, address hi/lo, type, checksum
)

// LoadImage picks the loader from the file extension. Raw images are placed
// at binBase.
func LoadImage(store ImageStore, path string, binBase uint64) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return LoadBinImage(store, path, binBase)
	case ".hex":
		return LoadHexImage(store, path)
	default:
		return errors.Wrap(ErrUnsupportedImage, path)
	}
}

// LoadBinImage copies the whole file to base.
func LoadBinImage(store ImageStore, path string, base uint64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "bin image")
	}
	if err := store.Write(base, data); err != nil {
		return errors.Wrapf(err, "bin image %s", path)
	}
	return nil
}

// LoadHexImage loads an Intel HEX file.
func LoadHexImage(store ImageStore, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "hex image")
	}
	defer f.Close()

	return errors.Wrapf(ParseHexImage(f, store.Write), "hex image %s", path)
}

// ParseHexImage decodes Intel HEX records from r and calls emit for every
// data record with its absolute address. Parsing ends at the EOF record.
func ParseHexImage(r io.Reader, emit func(addr uint64, data []byte) error) error {
	var upper uint64 // extended linear or segment base
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if text[0] != ':' {
			return errors.Errorf("line %d: record does not start with ':'", line)
		}
		rec, err := hex.DecodeString(text[1:])
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		if len(rec) < hexRecordMinBytes {
			return errors.Errorf("line %d: short record", line)
		}
		count := int(rec[0])
		if len(rec) != count+hexRecordMinBytes {
			return errors.Errorf("line %d: byte count %d does not match record length", line, count)
		}
		var sum byte
		for _, b := range rec {
			sum += b
		}
		if sum != 0 {
			return errors.Errorf("line %d: checksum mismatch", line)
		}

		offset := uint64(rec[1])<<8 | uint64(rec[2])
		data := rec[4 : 4+count]
		switch rec[3] {
		case hexRecordData:
			if err := emit(upper+offset, data); err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
		case hexRecordEOF:
			return nil
		case hexRecordExtSegment:
			if count != 2 {
				return errors.Errorf("line %d: extended segment record needs 2 bytes", line)
			}
			upper = (uint64(data[0])<<8 | uint64(data[1])) << 4
		case hexRecordExtLinear:
			if count != 2 {
				return errors.Errorf("line %d: extended linear record needs 2 bytes", line)
			}
			upper = (uint64(data[0])<<8 | uint64(data[1])) << 16
		case hexRecordStartSegment, hexRecordStartLinear:
			// entry points are programmed through DCRs, not taken from the image
		default:
			return errors.Errorf("line %d: unknown record type 0x%02X", line, rec[3])
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read")
	}
	return errors.New("missing EOF record")
}
