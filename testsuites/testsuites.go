/*
Package testsuites is a conformance suite for implementations of the
storage capability contracts. A driver package instantiates Run (or
the individual property functions) against its device in an ordinary
test, the way the emulations in inmem and mmapdev do.

The suite walks every page of the device, so it is meant for modestly
sized test instances, not multi-megabyte parts.
*/
package testsuites

import (
	"errors"
	"testing"
)

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/nb"
)

// MaxPolls bounds every would-block retry loop in the suite. A device
// still busy after this many re-polls of the same operation has
// broken the liveness contract.
const MaxPolls = 100000

// Config describes the device under test.
type Config[W storage.Word] struct {
	// Erased is the value every word of a page reads after an erase:
	// ^W(0) for NOR style parts, commonly 0 for RAM style ones.
	Erased W
	// Overwrite marks devices whose words can be rewritten without an
	// intervening erase. Flash-like devices leave it false.
	Overwrite bool
}

// Run exercises every property against dev.
func Run[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U], cfg Config[W]) {
	t.Run("Geometry", func(t *testing.T) { Geometry[W, U](t, dev) })
	t.Run("EraseThenRead", func(t *testing.T) { EraseThenRead[W, U](t, dev, cfg) })
	t.Run("ReadAfterWrite", func(t *testing.T) { ReadAfterWrite[W, U](t, dev, cfg) })
	t.Run("BulkEquivalence", func(t *testing.T) { BulkEquivalence[W, U](t, dev, cfg) })
	t.Run("BulkWriteEquivalence", func(t *testing.T) { BulkWriteEquivalence[W, U](t, dev, cfg) })
	t.Run("CrossPageWrite", func(t *testing.T) { CrossPageWrite[W, U](t, dev, cfg) })
	t.Run("Bounds", func(t *testing.T) { Bounds[W, U](t, dev) })
}

// block re-polls op while it would block, bounded by MaxPolls, and
// fails the test on a hard error or a liveness violation.
func block(t *testing.T, what string, op func() error) {
	t.Helper()
	err := nb.BlockN(MaxPolls, op)
	if errors.Is(err, nb.ErrWouldBlock) {
		t.Fatalf("%s: device still busy after %d polls", what, MaxPolls)
	}
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
}

func await[T any](t *testing.T, what string, op func() (T, error)) T {
	t.Helper()
	v, err := nb.AwaitN(MaxPolls, op)
	if errors.Is(err, nb.ErrWouldBlock) {
		t.Fatalf("%s: device still busy after %d polls", what, MaxPolls)
	}
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
	return v
}

// mustFail re-polls op while it would block and demands a hard error:
// the outcome may not be success and may not be would-block forever.
func mustFail(t *testing.T, what string, op func() error) {
	t.Helper()
	err := nb.BlockN(MaxPolls, op)
	if errors.Is(err, nb.ErrWouldBlock) {
		t.Fatalf("%s: expected an error, device still busy after %d polls", what, MaxPolls)
	}
	if err == nil {
		t.Fatalf("%s: expected an error, got success", what)
	}
}

func geometry[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U]) (start storage.Address[U], total U) {
	t.Helper()
	a := await(t, "start address", dev.StartAddress)
	size := await(t, "total size", dev.TotalSize)
	return a, size.Value()
}

// pattern yields a deterministic word for index i that differs from
// its neighbours and from common erased polarities.
func pattern[W storage.Word](i int) W {
	v := uint64(i)*0x9E3779B97F4A7C15 + 0x6A09E667F3BCC909
	return W(v >> 7)
}

// Geometry checks that [start, start+total) is tiled exactly by pages
// and that PageSize answers consistently for every address of a page.
func Geometry[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U]) {
	start, total := geometry(t, dev)
	if total == 0 {
		t.Fatal("device reports zero total size")
	}
	var off U
	for off < total {
		at := start.Add(storage.Off(off))
		ps := await(t, "page size", func() (storage.AddressOffset[U], error) {
			return dev.PageSize(at)
		})
		if ps.Value() == 0 {
			t.Fatalf("zero page size at %#x", uint64(at.Value()))
		}
		if total-off < ps.Value() {
			t.Fatalf("page at %#x overruns the device", uint64(at.Value()))
		}
		last := start.Add(storage.Off(off + ps.Value() - 1))
		ps2 := await(t, "page size at page end", func() (storage.AddressOffset[U], error) {
			return dev.PageSize(last)
		})
		if ps2.Value() != ps.Value() {
			t.Fatalf("page size disagrees within a page: %d at %#x, %d at %#x",
				uint64(ps.Value()), uint64(at.Value()), uint64(ps2.Value()), uint64(last.Value()))
		}
		off += ps.Value()
	}
}

// EraseThenRead programs a word at each end of every page, erases the
// page, alternating the two erase entry points, and checks that each
// word reads back as the erased polarity, both singly and in bulk. The
// programming first means the erase is observed restoring polarity,
// not just leaving a pristine device alone.
func EraseThenRead[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U], cfg Config[W]) {
	start, total := geometry(t, dev)
	var off U
	page := 0
	for off < total {
		at := start.Add(storage.Off(off))
		ps := await(t, "page size", func() (storage.AddressOffset[U], error) {
			return dev.PageSize(at)
		})
		w := pattern[W](page)
		if w == cfg.Erased {
			w = ^w
		}
		block(t, "program page start", func() error { return dev.WriteWord(at, w) })
		last := at.Add(storage.Off(ps.Value() - 1))
		block(t, "program page end", func() error { return dev.WriteWord(last, w) })
		if page%2 == 0 {
			n := page
			block(t, "erase page", func() error { return dev.ErasePage(storage.PageNo(U(n))) })
		} else {
			block(t, "erase address", func() error { return dev.EraseAddress(at) })
		}
		for i := 0; i < int(ps.Value()); i++ {
			w := await(t, "read erased word", func() (W, error) {
				return dev.ReadWord(at.Add(storage.Off(U(i))))
			})
			if w != cfg.Erased {
				t.Fatalf("word %d of page %d reads %#x after erase, want %#x",
					i, page, uint64(w), uint64(cfg.Erased))
			}
		}
		buf := make([]W, int(ps.Value()))
		block(t, "bulk read erased page", func() error { return dev.ReadWords(at, buf) })
		for i, w := range buf {
			if w != cfg.Erased {
				t.Fatalf("bulk word %d of page %d reads %#x after erase, want %#x",
					i, page, uint64(w), uint64(cfg.Erased))
			}
		}
		off += ps.Value()
		page++
	}
}

// ReadAfterWrite writes single words and reads them back. Overwrite
// devices must hold the second of two writes; erase-first devices are
// erased and written once, and their neighbours must stay erased.
func ReadAfterWrite[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U], cfg Config[W]) {
	start, _ := geometry(t, dev)
	ps := await(t, "page size", func() (storage.AddressOffset[U], error) {
		return dev.PageSize(start)
	})
	block(t, "erase first page", func() error { return dev.EraseAddress(start) })
	n := int(ps.Value())
	if n > 16 {
		n = 16
	}
	for i := 0; i < n; i += 2 {
		at := start.Add(storage.Off(U(i)))
		want := pattern[W](i)
		block(t, "write word", func() error { return dev.WriteWord(at, want) })
		if cfg.Overwrite {
			want = pattern[W](i + 1)
			block(t, "overwrite word", func() error { return dev.WriteWord(at, want) })
		}
		got := await(t, "read back", func() (W, error) { return dev.ReadWord(at) })
		if got != want {
			t.Fatalf("word at +%d reads %#x, want %#x", i, uint64(got), uint64(want))
		}
		if i+1 < int(ps.Value()) {
			got := await(t, "read neighbour", func() (W, error) {
				return dev.ReadWord(at.Add(storage.Off(U(1))))
			})
			if got != cfg.Erased {
				t.Fatalf("untouched neighbour of +%d reads %#x, want erased %#x",
					i, uint64(got), uint64(cfg.Erased))
			}
		}
	}
}

// BulkEquivalence checks that ReadWords yields exactly the sequence of
// single reads over the same range.
func BulkEquivalence[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U], cfg Config[W]) {
	start, total := geometry(t, dev)
	ps := await(t, "page size", func() (storage.AddressOffset[U], error) {
		return dev.PageSize(start)
	})
	n := int(ps.Value())
	if n > 64 {
		n = 64
	}
	if uint64(n) > uint64(total) {
		n = int(total)
	}
	block(t, "erase first page", func() error { return dev.EraseAddress(start) })
	data := make([]W, n)
	for i := range data {
		data[i] = pattern[W](i)
	}
	block(t, "bulk write", func() error { return dev.WriteWords(start, append([]W(nil), data...)) })
	bulk := make([]W, n)
	block(t, "bulk read", func() error { return dev.ReadWords(start, bulk) })
	for i := 0; i < n; i++ {
		at := start.Add(storage.Off(U(i)))
		single := await(t, "single read", func() (W, error) { return dev.ReadWord(at) })
		if single != bulk[i] {
			t.Fatalf("word +%d: single read %#x, bulk read %#x", i, uint64(single), uint64(bulk[i]))
		}
	}
}

// BulkWriteEquivalence checks that after WriteWords completes, single
// reads observe the buffer as it was before the call, regardless of
// what the driver did to the caller's copy (full duplex transports
// clobber it).
func BulkWriteEquivalence[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U], cfg Config[W]) {
	start, _ := geometry(t, dev)
	ps := await(t, "page size", func() (storage.AddressOffset[U], error) {
		return dev.PageSize(start)
	})
	n := int(ps.Value())
	if n > 32 {
		n = 32
	}
	block(t, "erase first page", func() error { return dev.EraseAddress(start) })
	buf := make([]W, n)
	for i := range buf {
		buf[i] = pattern[W](i + 101)
	}
	snapshot := append([]W(nil), buf...)
	block(t, "bulk write", func() error { return dev.WriteWords(start, buf) })
	for i := 0; i < n; i++ {
		at := start.Add(storage.Off(U(i)))
		got := await(t, "read back", func() (W, error) { return dev.ReadWord(at) })
		if got != snapshot[i] {
			t.Fatalf("word +%d reads %#x, want snapshot %#x", i, uint64(got), uint64(snapshot[i]))
		}
	}
}

// CrossPageWrite erases the first two pages and issues one bulk write
// spanning their boundary, then checks both halves landed. Drivers
// either split such writes internally or reject them; the suite covers
// the splitting kind, and single-page devices have no boundary to
// cross.
func CrossPageWrite[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U], cfg Config[W]) {
	start, total := geometry(t, dev)
	ps := await(t, "page size", func() (storage.AddressOffset[U], error) {
		return dev.PageSize(start)
	})
	if ps.Value() >= total {
		t.Skip("single page device, no boundary to cross")
	}
	boundary := start.Add(storage.Off(ps.Value()))
	ps2 := await(t, "second page size", func() (storage.AddressOffset[U], error) {
		return dev.PageSize(boundary)
	})
	n := 8
	if uint64(ps.Value()) < uint64(n) {
		n = int(ps.Value())
	}
	if uint64(ps2.Value()) < uint64(n) {
		n = int(ps2.Value())
	}
	block(t, "erase first page", func() error { return dev.EraseAddress(start) })
	block(t, "erase second page", func() error { return dev.EraseAddress(boundary) })
	at := boundary.Sub(storage.Off(U(n)))
	buf := make([]W, 2*n)
	for i := range buf {
		buf[i] = pattern[W](i + 211)
	}
	snapshot := append([]W(nil), buf...)
	block(t, "bulk write across the boundary", func() error { return dev.WriteWords(at, buf) })
	for i := 0; i < 2*n; i++ {
		got := await(t, "read back", func() (W, error) {
			return dev.ReadWord(at.Add(storage.Off(U(i))))
		})
		if got != snapshot[i] {
			side := "before"
			if i >= n {
				side = "after"
			}
			t.Fatalf("word %d (%s the boundary) reads %#x, want %#x",
				i, side, uint64(got), uint64(snapshot[i]))
		}
	}
	fresh := make([]W, 2*n)
	block(t, "bulk read across the boundary", func() error { return dev.ReadWords(at, fresh) })
	for i, w := range fresh {
		if w != snapshot[i] {
			t.Fatalf("bulk word %d reads %#x, want %#x", i, uint64(w), uint64(snapshot[i]))
		}
	}
}

// Bounds checks that accesses outside [start, start+total) fail with a
// hard error, never an endless would-block, and that erasing at a non
// page-start address is rejected on paged devices.
func Bounds[W storage.Word, U storage.Unsigned](t *testing.T, dev storage.Device[W, U]) {
	start, total := geometry(t, dev)
	end := start.Add(storage.Off(total))
	mustFail(t, "read past the end", func() error {
		_, err := dev.ReadWord(end)
		return err
	})
	mustFail(t, "write past the end", func() error {
		return dev.WriteWord(end, pattern[W](0))
	})
	mustFail(t, "bulk read across the end", func() error {
		buf := make([]W, 2)
		return dev.ReadWords(end.Sub(storage.Off(U(1))), buf)
	})
	mustFail(t, "bulk write across the end", func() error {
		buf := []W{pattern[W](0), pattern[W](1)}
		return dev.WriteWords(end.Sub(storage.Off(U(1))), buf)
	})
	mustFail(t, "erase past the end", func() error {
		return dev.EraseAddress(end)
	})
	ps := await(t, "page size", func() (storage.AddressOffset[U], error) {
		return dev.PageSize(start)
	})
	if ps.Value() > 1 {
		mustFail(t, "erase at a non page-start address", func() error {
			return dev.EraseAddress(start.Add(storage.Off(U(1))))
		})
	}
}
