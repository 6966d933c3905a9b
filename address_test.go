package storage

import "testing"

func TestAddressAlgebra(t *testing.T) {
	a := Addr(uint32(0x0800_0000))
	o := Off(uint32(0x123))
	if got := a.Add(o).Sub(o); got != a {
		t.Errorf("(a+o)-o = %#x, want %#x", got.Value(), a.Value())
	}
	if got := a.Add(Off(uint32(0))); got != a {
		t.Errorf("a+0 = %#x, want %#x", got.Value(), a.Value())
	}
	if got := a.Add(o).Value(); got != 0x0800_0123 {
		t.Errorf("a+o = %#x, want 0x08000123", got)
	}
	if got := a.Sub(o).Value(); got != 0x0800_0000-0x123 {
		t.Errorf("a-o = %#x, want %#x", got, uint32(0x0800_0000-0x123))
	}
}

func TestAddressWrapsInU(t *testing.T) {
	// arithmetic wraps per the chosen width, not the host's
	a := Addr(uint8(0xF0))
	if got := a.Add(Off(uint8(0x20))).Value(); got != 0x10 {
		t.Errorf("0xF0+0x20 in uint8 = %#x, want 0x10", got)
	}
	b := Addr(uint8(0x10))
	if got := b.Sub(Off(uint8(0x20))).Value(); got != 0xF0 {
		t.Errorf("0x10-0x20 in uint8 = %#x, want 0xF0", got)
	}
}

func TestWideAndNarrowWidths(t *testing.T) {
	wide := Addr(uint64(1) << 40)
	if got := wide.Add(Off(uint64(7))).Value(); got != (1<<40)+7 {
		t.Errorf("64-bit add = %#x", got)
	}
	narrow := Addr(uint16(0xFFFF))
	if got := narrow.Add(Off(uint16(1))).Value(); got != 0 {
		t.Errorf("16-bit wrap = %#x, want 0", got)
	}
}

func TestPageIndex(t *testing.T) {
	p := PageNo(uint32(3))
	if p.Index() != 3 {
		t.Errorf("page index = %d, want 3", p.Index())
	}
}
