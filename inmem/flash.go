package inmem

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/nb"
)

// Sector describes one run of equally sized pages in a flash layout.
// Real NOR parts mix sector sizes (a few small boot sectors followed
// by large uniform ones), so a layout is a list of these.
type Sector[U storage.Unsigned] struct {
	Count int // pages in this run
	Size  U   // words per page
}

type opKind int

const (
	opProgram opKind = iota
	opProgramSlice
	opErase
)

// flashOp is an in-flight program or erase. The device stays busy for
// left more polls of the same operation; polls of anything else see
// would-block without advancing it.
type flashOp[W storage.Word] struct {
	kind opKind
	at   int // word index
	n    int // words touched
	left int
	buf  []W // snapshot of the data being programmed
}

// Flash emulates a NOR style flash part. The erased polarity is all
// ones; programming can only clear bits, so a word committed twice
// without an intervening erase holds the AND of the two values.
// Multi-word writes that cross a page boundary are split internally.
type Flash[W storage.Word, U storage.Unsigned] struct {
	start   storage.Address[U]
	layout  []Sector[U]
	words   []W
	latency int
	clobber bool
	pending *flashOp[W]
}

var _ storage.Device[uint8, uint32] = (*Flash[uint8, uint32])(nil)

// NewFlash builds a flash with pages uniform pages of pageSize words,
// starting at start.
func NewFlash[W storage.Word, U storage.Unsigned](start storage.Address[U], pageSize U, pages int) *Flash[W, U] {
	return NewFlashLayout[W, U](start, []Sector[U]{{Count: pages, Size: pageSize}})
}

// NewFlashLayout builds a flash with a mixed sector layout. The device
// comes up fully erased. Panics on an empty or degenerate layout,
// which is a configuration bug, not a runtime condition.
func NewFlashLayout[W storage.Word, U storage.Unsigned](start storage.Address[U], layout []Sector[U]) *Flash[W, U] {
	if len(layout) == 0 {
		panic("inmem: empty sector layout")
	}
	total := 0
	for _, s := range layout {
		if s.Count <= 0 || s.Size == 0 {
			panic("inmem: degenerate sector in layout")
		}
		total += s.Count * int(s.Size)
	}
	words := make([]W, total)
	for i := range words {
		words[i] = ^W(0)
	}
	return &Flash[W, U]{
		start:  start,
		layout: append([]Sector[U](nil), layout...),
		words:  words,
	}
}

// SetLatency makes every program and erase stay busy for polls
// re-issues before completing, so callers can exercise their
// would-block handling. Zero (the default) completes immediately.
func (f *Flash[W, U]) SetLatency(polls int) {
	f.latency = polls
}

// ClobberWrites makes WriteWords overwrite the caller's buffer with
// the prior device contents, the way a full duplex SPI transaction
// fills the transmit buffer with received traffic. Conforming callers
// never notice.
func (f *Flash[W, U]) ClobberWrites(on bool) {
	f.clobber = on
}

// index validates an n word access beginning at a and returns its word
// index.
func (f *Flash[W, U]) index(op string, a storage.Address[U], n int) (int, error) {
	if a.Value() < f.start.Value() {
		return 0, outOfRange(op, uint64(a.Value()))
	}
	off := uint64(a.Value() - f.start.Value())
	if off+uint64(n) > uint64(len(f.words)) {
		return 0, outOfRange(op, uint64(a.Value()))
	}
	return int(off), nil
}

// pageAt returns the start word index and size of the page containing
// word index i. i must already be validated.
func (f *Flash[W, U]) pageAt(i int) (start, size int) {
	at := 0
	for _, s := range f.layout {
		extent := s.Count * int(s.Size)
		if i < at+extent {
			rel := (i - at) / int(s.Size)
			return at + rel*int(s.Size), int(s.Size)
		}
		at += extent
	}
	return 0, 0
}

// page resolves a page index to its start word index and size.
func (f *Flash[W, U]) page(p storage.Page[U]) (start, size int, err error) {
	left := uint64(p.Index())
	at := 0
	for _, s := range f.layout {
		if left < uint64(s.Count) {
			return at + int(left)*int(s.Size), int(s.Size), nil
		}
		left -= uint64(s.Count)
		at += s.Count * int(s.Size)
	}
	return 0, 0, outOfRange("erase page", uint64(p.Index()))
}

func (f *Flash[W, U]) commit(p *flashOp[W]) {
	switch p.kind {
	case opProgram, opProgramSlice:
		for j, w := range p.buf {
			f.words[p.at+j] &= w
		}
	case opErase:
		for j := p.at; j < p.at+p.n; j++ {
			f.words[j] = ^W(0)
		}
	}
}

// poll advances the pending operation if this call re-issues it.
// It returns nil once the operation completes, and would-block while
// it is still busy or while the device is busy with something else.
func (f *Flash[W, U]) poll(kind opKind, at, n int) error {
	p := f.pending
	if p.kind != kind || p.at != at || p.n != n {
		return nb.ErrWouldBlock
	}
	p.left--
	if p.left > 0 {
		return nb.ErrWouldBlock
	}
	f.commit(p)
	f.pending = nil
	return nil
}

func (f *Flash[W, U]) ReadWord(a storage.Address[U]) (W, error) {
	if f.pending != nil {
		return 0, nb.ErrWouldBlock
	}
	i, err := f.index("read", a, 1)
	if err != nil {
		return 0, err
	}
	return f.words[i], nil
}

func (f *Flash[W, U]) ReadWords(a storage.Address[U], buf []W) error {
	if f.pending != nil {
		return nb.ErrWouldBlock
	}
	i, err := f.index("read", a, len(buf))
	if err != nil {
		return err
	}
	copy(buf, f.words[i:i+len(buf)])
	return nil
}

func (f *Flash[W, U]) WriteWord(a storage.Address[U], word W) error {
	i, ierr := f.index("write", a, 1)
	if f.pending != nil {
		if ierr != nil {
			return nb.ErrWouldBlock
		}
		return f.poll(opProgram, i, 1)
	}
	if ierr != nil {
		return ierr
	}
	op := &flashOp[W]{kind: opProgram, at: i, n: 1, left: f.latency, buf: []W{word}}
	if f.latency <= 0 {
		f.commit(op)
		return nil
	}
	f.pending = op
	return nb.ErrWouldBlock
}

func (f *Flash[W, U]) WriteWords(a storage.Address[U], buf []W) error {
	i, ierr := f.index("write", a, len(buf))
	if f.pending != nil {
		if ierr != nil {
			return nb.ErrWouldBlock
		}
		return f.poll(opProgramSlice, i, len(buf))
	}
	if ierr != nil {
		return ierr
	}
	if len(buf) == 0 {
		return nil
	}
	op := &flashOp[W]{
		kind: opProgramSlice,
		at:   i,
		n:    len(buf),
		left: f.latency,
		buf:  append([]W(nil), buf...),
	}
	if f.clobber {
		copy(buf, f.words[i:i+len(buf)])
	}
	if f.latency <= 0 {
		f.commit(op)
		return nil
	}
	f.pending = op
	return nb.ErrWouldBlock
}

func (f *Flash[W, U]) ErasePage(p storage.Page[U]) error {
	start, size, perr := f.page(p)
	if f.pending != nil {
		if perr != nil {
			return nb.ErrWouldBlock
		}
		return f.poll(opErase, start, size)
	}
	if perr != nil {
		return perr
	}
	op := &flashOp[W]{kind: opErase, at: start, n: size, left: f.latency}
	if f.latency <= 0 {
		f.commit(op)
		return nil
	}
	f.pending = op
	return nb.ErrWouldBlock
}

func (f *Flash[W, U]) EraseAddress(a storage.Address[U]) error {
	i, ierr := f.index("erase", a, 1)
	if f.pending != nil {
		if ierr != nil {
			return nb.ErrWouldBlock
		}
		start, size := f.pageAt(i)
		if i != start {
			return nb.ErrWouldBlock
		}
		return f.poll(opErase, start, size)
	}
	if ierr != nil {
		return ierr
	}
	start, size := f.pageAt(i)
	if i != start {
		return unaligned("erase", uint64(a.Value()))
	}
	op := &flashOp[W]{kind: opErase, at: start, n: size, left: f.latency}
	if f.latency <= 0 {
		f.commit(op)
		return nil
	}
	f.pending = op
	return nb.ErrWouldBlock
}

func (f *Flash[W, U]) StartAddress() (storage.Address[U], error) {
	return f.start, nil
}

func (f *Flash[W, U]) TotalSize() (storage.AddressOffset[U], error) {
	return storage.Off(U(len(f.words))), nil
}

func (f *Flash[W, U]) PageSize(a storage.Address[U]) (storage.AddressOffset[U], error) {
	i, err := f.index("page size", a, 1)
	if err != nil {
		return storage.Off(U(0)), err
	}
	_, size := f.pageAt(i)
	return storage.Off(U(size)), nil
}
