// registers.go - Address map and DCR register numbers for the Vortex bridge harness

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
registers.go - Master Address Map

MEMORY MAP OVERVIEW
===================

Address Range              Size     Target              Notes
---------------------------------------------------------------------------
0x80000000-(+mem-size)     16MB     Backing store       program image, data
0xFF004000-0xFF00403F      64B      Console window      one line buffer per lane

Every memory transaction is one 64 byte beat. Writes into the console window
are not stored: each enabled byte lane appends its character to the line
buffer of that lane, whatever offset inside the window the beat landed on.

DCR (device configuration register) writes travel on a separate 12-bit
address / XLEN-bit data port and never touch memory.
*/

package main

// Memory bus
const (
	MEM_BEAT_BYTES   = 64 // bytes per data beat (512-bit bus)
	STARTUP_ADDR     = 0x80000000
	DEFAULT_MEM_SIZE = 16 * 1024 * 1024

	IO_PAGE_SIZE = 0x100
	IO_PAGE_MASK = ^uint64(IO_PAGE_SIZE - 1)
)

// Console window
const (
	IO_BASE_ADDR = 0xFF000000
	IO_COUT_ADDR = IO_BASE_ADDR + (1 << 14)
	IO_COUT_SIZE = 64
)

// DCR port
const (
	DCR_ADDR_BITS = 12
	DCR_ADDR_MASK = 1<<DCR_ADDR_BITS - 1

	VX_DCR_BASE_STARTUP_ADDR0 = 0x001
	VX_DCR_BASE_STARTUP_ADDR1 = 0x002
	VX_DCR_BASE_MPM_CLASS     = 0x003
)

// Clock and reset
const (
	CLOCK_PERIOD_PS     = 2
	RESET_N_CYCLES      = 1 // reset_n held low at power on
	CORE_RESET_CYCLES   = 4 // core rst held high after reset_n release
	DCR_SETTLE_CYCLES   = 5 // gap between the two boot DCR writes
	DEFAULT_MAX_CYCLES  = 100000
	MAX_DEASSERT_CYCLES = 4 // falling edges a DCR pulse may take to read back low
)
