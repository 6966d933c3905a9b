package storage

import (
	"errors"
	"fmt"
	"testing"
)

type fakeDriverError struct {
	kind Kind
}

func (e *fakeDriverError) Error() string {
	return fmt.Sprintf("fake: %s", e.kind)
}

func (e *fakeDriverError) Kind() Kind {
	return e.kind
}

func TestKindOf(t *testing.T) {
	err := &fakeDriverError{kind: KindOutOfRange}
	if got := KindOf(err); got != KindOutOfRange {
		t.Errorf("KindOf = %v, want KindOutOfRange", got)
	}
	wrapped := fmt.Errorf("while reading config: %w", err)
	if got := KindOf(wrapped); got != KindOutOfRange {
		t.Errorf("KindOf(wrapped) = %v, want KindOutOfRange", got)
	}
	if got := KindOf(errors.New("opaque")); got != KindUnknown {
		t.Errorf("KindOf(opaque) = %v, want KindUnknown", got)
	}
}

func TestKindStrings(t *testing.T) {
	for _, k := range []Kind{KindUnknown, KindOutOfRange, KindUnaligned, KindProtected, KindDeviceFault} {
		if k.String() == "" {
			t.Errorf("empty string for kind %d", int(k))
		}
	}
}
