package inmem

import "testing"

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/testsuites"
)

const ramStart = uint32(0x2000_0000)

func (t *T) ram() *RAM[uint8, uint32] {
	return NewRAM[uint8, uint32](storage.Addr(ramStart), 512)
}

func TestRAMOverwrite(x *testing.T) {
	t := (*T)(x)
	r := t.ram()
	a := storage.Addr(ramStart + 7)
	t.assert_nil(r.WriteWord(a, 0xA5))
	t.assert_nil(r.WriteWord(a, 0x5A))
	w, err := r.ReadWord(a)
	t.assert_nil(err)
	t.assert("second write wins", w == 0x5A)
}

func TestRAMErase(x *testing.T) {
	t := (*T)(x)
	r := t.ram()
	t.assert_nil(r.WriteWord(storage.Addr(ramStart+100), 0x77))
	t.assert_nil(r.ErasePage(storage.PageNo(uint32(0))))
	w, err := r.ReadWord(storage.Addr(ramStart + 100))
	t.assert_nil(err)
	t.assert("erase fills zero", w == 0x00)

	err = r.ErasePage(storage.PageNo(uint32(1)))
	t.assert("only page zero exists", err != nil)
	err = r.EraseAddress(storage.Addr(ramStart + 1))
	t.assert("erase off the start is unaligned", err != nil)
	t.assert("classified unaligned", storage.KindOf(err) == storage.KindUnaligned)
}

func TestRAMNonPaged(x *testing.T) {
	t := (*T)(x)
	r := t.ram()
	total, err := r.TotalSize()
	t.assert_nil(err)
	ps, err := r.PageSize(storage.Addr(ramStart + 17))
	t.assert_nil(err)
	t.assert("page size is total size", ps.Value() == total.Value())
}

func TestRAMWideWords(x *testing.T) {
	t := (*T)(x)
	r := NewRAM[uint16, uint16](storage.Addr(uint16(0)), 16)
	t.assert_nil(r.WriteWord(storage.Addr(uint16(3)), 0xBEEF))
	w, err := r.ReadWord(storage.Addr(uint16(3)))
	t.assert_nil(err)
	t.assert("16-bit word round trip", w == 0xBEEF)
}

func TestRAMConformance(x *testing.T) {
	t := (*T)(x)
	testsuites.Run[uint8, uint32](x, t.ram(), testsuites.Config[uint8]{
		Erased:    0x00,
		Overwrite: true,
	})
}
