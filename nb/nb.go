// Package nb is the non-blocking result convention shared by every driver:
// an operation either completes, fails, or reports ErrWouldBlock so the
// caller can retry. The Block helpers turn such an operation into a
// busy-waiting one.
package nb

import "gd32hal/errcode"

// ErrWouldBlock means the operation cannot complete yet and may be retried.
var ErrWouldBlock error = errcode.WouldBlock

// IsWouldBlock reports whether err is ErrWouldBlock.
func IsWouldBlock(err error) bool { return errcode.Of(err) == errcode.WouldBlock }

// Block retries f until it returns anything other than ErrWouldBlock.
func Block(f func() error) error {
	for {
		err := f()
		if !IsWouldBlock(err) {
			return err
		}
	}
}

// BlockValue is Block for operations that produce a value.
func BlockValue[T any](f func() (T, error)) (T, error) {
	for {
		v, err := f()
		if !IsWouldBlock(err) {
			return v, err
		}
	}
}

// Retry calls f at most n times while it would block. It returns
// errcode.Timeout when the attempts run out.
func Retry(n int, f func() error) error {
	for i := 0; i < n; i++ {
		err := f()
		if !IsWouldBlock(err) {
			return err
		}
	}
	return errcode.Timeout
}
