//go:build gd32e103

// Package critical brackets a single register read-modify-write so an
// interrupt handler cannot interleave with it.
package critical

import "runtime/interrupt"

type State = interrupt.State

// Enter masks interrupts and returns the previous state.
func Enter() State { return interrupt.Disable() }

// Exit restores the state returned by Enter.
func Exit(s State) { interrupt.Restore(s) }
