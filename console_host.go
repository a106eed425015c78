// console_host.go - Host stdout adapter: TTY detection and start-up banner

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jacobsa/go-serial/serial"
	"golang.org/x/term"
)

var bannerLines = []string{
	`                 _            _          _     _            `,
	` __   _____  _ __| |_ _____  _| |__  _ __(_) __| | __ _  ___ `,
	` \ \ / / _ \| '__| __/ _ \ \/ / '_ \| '__| |/ _' |/ _' |/ _ \`,
	`  \ V / (_) | |  | ||  __/>  <| |_) | |  | | (_| | (_| |  __/`,
	`   \_/ \___/|_|   \__\___/_/\_\_.__/|_|  |_|\__,_|\__, |\___|`,
	`                                                  |___/      `,
}

// ConsoleHost is where console lines and harness messages go. Colour is
// only used when the output is a terminal. Output can additionally be
// mirrored to a serial port for an external monitor.
type ConsoleHost struct {
	out    io.Writer
	tty    bool
	serial io.ReadWriteCloser
}

func NewConsoleHost(f *os.File) *ConsoleHost {
	return &ConsoleHost{
		out: f,
		tty: term.IsTerminal(int(f.Fd())),
	}
}

func (h *ConsoleHost) Writer() io.Writer { return h.out }
func (h *ConsoleHost) IsTerminal() bool  { return h.tty }

// MirrorSerial copies everything written to the host to the serial port
// name, 8N1 at baud.
func (h *ConsoleHost) MirrorSerial(name string, baud uint) error {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        name,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return fmt.Errorf("console_host: serial %s: %w", name, err)
	}
	h.attach(port)
	return nil
}

func (h *ConsoleHost) attach(port io.ReadWriteCloser) {
	h.serial = port
	h.out = io.MultiWriter(h.out, port)
}

// Close releases the serial port, if one is attached.
func (h *ConsoleHost) Close() error {
	if h.serial == nil {
		return nil
	}
	err := h.serial.Close()
	h.serial = nil
	return err
}

func (h *ConsoleHost) Banner() {
	fmt.Fprintln(h.out)
	for i, line := range bannerLines {
		if h.tty {
			fmt.Fprintf(h.out, "\033[38;2;255;%d;147m%s\033[0m\n", 20+i*40, line)
		} else {
			fmt.Fprintln(h.out, line)
		}
	}
	fmt.Fprintln(h.out, "\nTransaction level harness for a GPGPU core: DCR bridge and memory bus.")
	fmt.Fprintln(h.out, "(c) 2024 - 2026 Zayn Otley")
	fmt.Fprintln(h.out, "https://github.com/IntuitionAmiga/IntuitionEngine")
	fmt.Fprintln(h.out, "License: GPLv3 or later")
}
