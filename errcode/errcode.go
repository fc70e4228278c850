package errcode

import "errors"

// Code is a stable error identifier shared by every driver package.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	WouldBlock    Code = "would_block"
	InvalidParams Code = "invalid_params"
	InvalidState  Code = "invalid_state"
	IncorrectMode Code = "incorrect_mode"
	Busy          Code = "busy"
	Timeout       Code = "timeout"
	Canceled      Code = "canceled"

	// Clock tree.
	UnreachableFrequency Code = "unreachable_frequency"
	SourceNotReady       Code = "source_not_ready"

	// Ownership.
	InvalidPin      Code = "invalid_pin"
	PeripheralInUse Code = "peripheral_in_use"
	AlreadyTaken    Code = "already_taken"

	// Transfer faults.
	Overrun       Code = "overrun"
	Framing       Code = "framing"
	Parity        Code = "parity"
	Noise         Code = "noise"
	TransferError Code = "transfer_error"
	Bus           Code = "bus_error"
	Arbitration   Code = "arbitration_lost"
	Acknowledge   Code = "nack"
	ModeFault     Code = "mode_fault"
	CRC           Code = "crc_error"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match a wrapped E against its bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New returns an *E for op with code c and message msg.
func New(op string, c Code, msg string) error {
	return &E{C: c, Op: op, Msg: msg}
}

// Wrap attaches op context to err, keeping its code.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: Of(err), Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}
