package inmem

import (
	storage "github.com/tl8roy/embedded-storage"
)

// RAM emulates an arbitrary-overwrite device: SRAM, FRAM, or an
// EEPROM with byte granular writes. It is never busy. The device is
// non-paged, so PageSize reports TotalSize and the only erasable page
// is page zero, which fills with the documented erased polarity of
// all zeroes.
type RAM[W storage.Word, U storage.Unsigned] struct {
	start storage.Address[U]
	words []W
}

var _ storage.Device[uint8, uint32] = (*RAM[uint8, uint32])(nil)

// NewRAM builds a zeroed device of size words starting at start.
func NewRAM[W storage.Word, U storage.Unsigned](start storage.Address[U], size int) *RAM[W, U] {
	if size <= 0 {
		panic("inmem: degenerate RAM size")
	}
	return &RAM[W, U]{
		start: start,
		words: make([]W, size),
	}
}

func (r *RAM[W, U]) index(op string, a storage.Address[U], n int) (int, error) {
	if a.Value() < r.start.Value() {
		return 0, outOfRange(op, uint64(a.Value()))
	}
	off := uint64(a.Value() - r.start.Value())
	if off+uint64(n) > uint64(len(r.words)) {
		return 0, outOfRange(op, uint64(a.Value()))
	}
	return int(off), nil
}

func (r *RAM[W, U]) ReadWord(a storage.Address[U]) (W, error) {
	i, err := r.index("read", a, 1)
	if err != nil {
		return 0, err
	}
	return r.words[i], nil
}

func (r *RAM[W, U]) ReadWords(a storage.Address[U], buf []W) error {
	i, err := r.index("read", a, len(buf))
	if err != nil {
		return err
	}
	copy(buf, r.words[i:i+len(buf)])
	return nil
}

func (r *RAM[W, U]) WriteWord(a storage.Address[U], word W) error {
	i, err := r.index("write", a, 1)
	if err != nil {
		return err
	}
	r.words[i] = word
	return nil
}

func (r *RAM[W, U]) WriteWords(a storage.Address[U], buf []W) error {
	i, err := r.index("write", a, len(buf))
	if err != nil {
		return err
	}
	copy(r.words[i:i+len(buf)], buf)
	return nil
}

func (r *RAM[W, U]) ErasePage(p storage.Page[U]) error {
	if p.Index() != 0 {
		return outOfRange("erase page", uint64(p.Index()))
	}
	for i := range r.words {
		r.words[i] = 0
	}
	return nil
}

func (r *RAM[W, U]) EraseAddress(a storage.Address[U]) error {
	if _, err := r.index("erase", a, 1); err != nil {
		return err
	}
	if a.Value() != r.start.Value() {
		return unaligned("erase", uint64(a.Value()))
	}
	return r.ErasePage(storage.PageNo(U(0)))
}

func (r *RAM[W, U]) StartAddress() (storage.Address[U], error) {
	return r.start, nil
}

func (r *RAM[W, U]) TotalSize() (storage.AddressOffset[U], error) {
	return storage.Off(U(len(r.words))), nil
}

func (r *RAM[W, U]) PageSize(a storage.Address[U]) (storage.AddressOffset[U], error) {
	if _, err := r.index("page size", a, 1); err != nil {
		return storage.Off(U(0)), err
	}
	return r.TotalSize()
}
