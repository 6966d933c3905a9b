package storage

import (
	"errors"
)

// Kind is a coarse classification of storage errors. The contract does
// not prescribe a common error union; drivers return their own types.
// A driver that additionally implements KindError on those types lets
// generic consumers triage failures they cannot otherwise interpret.
type Kind int

const (
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown Kind = iota
	// KindOutOfRange marks an address outside [start, start+total).
	// A caller bug; retrying cannot help.
	KindOutOfRange
	// KindUnaligned marks an address that violates the granularity of
	// the operation, such as erasing at a non page-start address.
	KindUnaligned
	// KindProtected marks writes refused by write protection: a locked
	// sector, a read-only region, an asserted WP pin. Not retryable
	// without an external state change.
	KindProtected
	// KindDeviceFault marks a physical failure: program verify, erase
	// failure, bus parity. Retryability is per datasheet.
	KindDeviceFault
)

func (k Kind) String() string {
	switch k {
	case KindOutOfRange:
		return "address out of range"
	case KindUnaligned:
		return "unaligned access"
	case KindProtected:
		return "write protected"
	case KindDeviceFault:
		return "device fault"
	}
	return "unknown storage error"
}

// KindError is optionally implemented by driver error types.
type KindError interface {
	error
	Kind() Kind
}

// KindOf classifies err, unwrapping as needed. Errors that do not
// implement KindError classify as KindUnknown.
func KindOf(err error) Kind {
	var ke KindError
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	return KindUnknown
}
