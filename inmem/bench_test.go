package inmem

import "testing"

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/testsuites"
)

func benchFlash() *Flash[uint8, uint32] {
	return NewFlash[uint8, uint32](storage.Addr(flashStart), flashPage, flashPages)
}

func BenchmarkFlashReads(b *testing.B) {
	testsuites.BenchmarkReads[uint8, uint32](b, benchFlash())
}

func BenchmarkFlashBulkReads(b *testing.B) {
	testsuites.BenchmarkBulkReads[uint8, uint32](b, benchFlash(), 64)
}

func BenchmarkFlashWrites(b *testing.B) {
	testsuites.BenchmarkWrites[uint8, uint32](b, benchFlash())
}

func BenchmarkFlashErases(b *testing.B) {
	testsuites.BenchmarkErases[uint8, uint32](b, benchFlash())
}

func BenchmarkRAMReads(b *testing.B) {
	testsuites.BenchmarkReads[uint8, uint32](b, NewRAM[uint8, uint32](storage.Addr(ramStart), 512))
}
