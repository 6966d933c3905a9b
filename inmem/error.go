package inmem

import (
	"fmt"
)

import (
	storage "github.com/tl8roy/embedded-storage"
)

// DeviceError is the hard-failure error type of the emulated devices.
// It carries the coarse classification from the storage package so
// generic consumers can triage without depending on this package.
type DeviceError struct {
	Op     string
	Addr   uint64
	Reason storage.Kind
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("inmem: %s at %#x: %s", e.Op, e.Addr, e.Reason)
}

func (e *DeviceError) Kind() storage.Kind {
	return e.Reason
}

func outOfRange(op string, addr uint64) error {
	return &DeviceError{Op: op, Addr: addr, Reason: storage.KindOutOfRange}
}

func unaligned(op string, addr uint64) error {
	return &DeviceError{Op: op, Addr: addr, Reason: storage.KindUnaligned}
}
