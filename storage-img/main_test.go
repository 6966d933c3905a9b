package main

import "testing"

func TestDefaultDumpLength(t *testing.T) {
	if n, ok := defaultDumpLength(0, 0x1000); !ok || n != 0x1000 {
		t.Errorf("whole image: got (%#x, %v), want (0x1000, true)", n, ok)
	}
	if n, ok := defaultDumpLength(0xFF0, 0x1000); !ok || n != 0x10 {
		t.Errorf("tail of image: got (%#x, %v), want (0x10, true)", n, ok)
	}
	if n, ok := defaultDumpLength(0x1000, 0x1000); !ok || n != 0 {
		t.Errorf("at the end: got (%#x, %v), want (0, true)", n, ok)
	}
	// a start past the end must refuse, not wrap to ~2^64
	if n, ok := defaultDumpLength(0x10000, 0x1000); ok {
		t.Errorf("past the end: got (%#x, %v), want refusal", n, ok)
	}
}
