package testsuites

import (
	"testing"
)

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/nb"
)

// Benchmark helpers for driver packages. Each takes a ready device and
// measures one operation family, polling through any would-block
// outcomes so busy emulations are measured end to end.

func benchGeometry[W storage.Word, U storage.Unsigned](b *testing.B, dev storage.Device[W, U]) storage.Address[U] {
	b.Helper()
	start, err := nb.Await(dev.StartAddress)
	if err != nil {
		b.Fatal(err)
	}
	return start
}

func BenchmarkReads[W storage.Word, U storage.Unsigned](b *testing.B, dev storage.Device[W, U]) {
	start := benchGeometry(b, dev)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := nb.Await(func() (W, error) { return dev.ReadWord(start) }); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBulkReads[W storage.Word, U storage.Unsigned](b *testing.B, dev storage.Device[W, U], words int) {
	start := benchGeometry(b, dev)
	buf := make([]W, words)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := nb.Block(func() error { return dev.ReadWords(start, buf) }); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWrites[W storage.Word, U storage.Unsigned](b *testing.B, dev storage.Device[W, U]) {
	start := benchGeometry(b, dev)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := nb.Block(func() error { return dev.WriteWord(start, pattern[W](i)) }); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkErases[W storage.Word, U storage.Unsigned](b *testing.B, dev storage.Device[W, U]) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := nb.Block(func() error { return dev.ErasePage(storage.PageNo(U(0))) }); err != nil {
			b.Fatal(err)
		}
	}
}
