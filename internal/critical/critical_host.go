//go:build !gd32e103

// Package critical brackets a single register read-modify-write so an
// interrupt handler cannot interleave with it. On the host a process-wide
// mutex stands in for interrupt masking; sections must not nest.
package critical

import "sync"

type State struct{}

var mu sync.Mutex

func Enter() State {
	mu.Lock()
	return State{}
}

func Exit(State) { mu.Unlock() }
