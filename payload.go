package main

import "github.com/intuitionamiga/vortexbridge/sched"

// Command is the direction of a bus transaction.
type Command uint8

const (
	CommandRead Command = iota
	CommandWrite
	CommandIgnore
)

func (c Command) String() string {
	switch c {
	case CommandRead:
		return "read"
	case CommandWrite:
		return "write"
	case CommandIgnore:
		return "ignore"
	}
	return "unknown"
}

// ResponseStatus is the outcome of a transaction, set once before the
// transport call returns.
type ResponseStatus int

const (
	StatusIncomplete ResponseStatus = iota
	StatusOK
	StatusAddressError
	StatusByteEnableError
	StatusBurstError
	StatusCommandError
	StatusGenericError
)

var statusNames = [...]string{
	StatusIncomplete:      "TLM_INCOMPLETE_RESPONSE",
	StatusOK:              "TLM_OK_RESPONSE",
	StatusAddressError:    "TLM_ADDRESS_ERROR_RESPONSE",
	StatusByteEnableError: "TLM_BYTE_ENABLE_ERROR_RESPONSE",
	StatusBurstError:      "TLM_BURST_ERROR_RESPONSE",
	StatusCommandError:    "TLM_COMMAND_ERROR_RESPONSE",
	StatusGenericError:    "TLM_GENERIC_ERROR_RESPONSE",
}

func (s ResponseStatus) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "TLM_UNKNOWN_RESPONSE"
}

// OK reports whether the transaction completed successfully.
func (s ResponseStatus) OK() bool { return s == StatusOK }

// Payload is one blocking bus transaction. A nil ByteEnable enables every
// lane; otherwise a lane is enabled when its byte is non-zero.
type Payload struct {
	Command    Command
	Address    uint64
	Data       []byte
	ByteEnable []byte
	Status     ResponseStatus
}

// NewReadPayload returns a read of one beat at addr.
func NewReadPayload(addr uint64) *Payload {
	return &Payload{
		Command: CommandRead,
		Address: addr,
		Data:    make([]byte, MEM_BEAT_BYTES),
	}
}

// NewWritePayload returns a write of one beat at addr. data is copied into a
// full beat; enable may be nil.
func NewWritePayload(addr uint64, data []byte, enable []byte) *Payload {
	p := &Payload{
		Command: CommandWrite,
		Address: addr,
		Data:    make([]byte, MEM_BEAT_BYTES),
	}
	copy(p.Data, data)
	if enable != nil {
		p.ByteEnable = make([]byte, MEM_BEAT_BYTES)
		copy(p.ByteEnable, enable)
	}
	return p
}

func (p *Payload) laneEnabled(i int) bool {
	return p.ByteEnable == nil || p.ByteEnable[i] != 0
}

// Target is a blocking transport endpoint. delay is the initiator's
// accumulated annotated delay; targets that synchronise consume it.
type Target interface {
	BTransport(t *sched.Task, p *Payload, delay *sched.Time)
}
