/*
Package nb carries the non-blocking result convention shared by every
storage capability: an operation either succeeds, fails hard, or
reports ErrWouldBlock because the device is busy. ErrWouldBlock is
never an error in the failure sense; it is the cooperation primitive of
a bare-metal polling loop. The caller re-issues the operation between
its other work, or hands the loop to one of the helpers here.
*/
package nb

import (
	"errors"
)

// ErrWouldBlock reports that the device cannot service the operation
// right now (a program or erase cycle is in flight, the bus is being
// arbitrated) and the call must be re-issued. Compare with errors.Is;
// drivers may wrap it with context.
var ErrWouldBlock = errors.New("storage device would block")

// Block re-issues op until its outcome is something other than
// would-block, then returns that outcome. It spins; callers on real
// hardware usually want their own loop so they can interleave work,
// or BlockN to bound the polling.
func Block(op func() error) error {
	for {
		if err := op(); !errors.Is(err, ErrWouldBlock) {
			return err
		}
	}
}

// BlockN re-issues op at most n times. If the device is still busy
// after n polls the last would-block outcome is returned, so a
// liveness violation is observable rather than a hang.
func BlockN(n int, op func() error) error {
	err := error(ErrWouldBlock)
	for i := 0; i < n; i++ {
		if err = op(); !errors.Is(err, ErrWouldBlock) {
			return err
		}
	}
	return err
}

// Await is Block for value-bearing operations.
func Await[T any](op func() (T, error)) (T, error) {
	for {
		if v, err := op(); !errors.Is(err, ErrWouldBlock) {
			return v, err
		}
	}
}

// AwaitN is BlockN for value-bearing operations.
func AwaitN[T any](n int, op func() (T, error)) (T, error) {
	var v T
	err := error(ErrWouldBlock)
	for i := 0; i < n; i++ {
		if v, err = op(); !errors.Is(err, ErrWouldBlock) {
			return v, err
		}
	}
	return v, err
}
