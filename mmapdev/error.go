package mmapdev

import (
	"fmt"
)

import (
	storage "github.com/tl8roy/embedded-storage"
)

// AccessError reports an access that violates the image geometry. It
// carries the storage classification so generic consumers can triage.
type AccessError struct {
	Op     string
	Addr   uint64
	Reason storage.Kind
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("mmapdev: %s at %#x: %s", e.Op, e.Addr, e.Reason)
}

func (e *AccessError) Kind() storage.Kind {
	return e.Reason
}
