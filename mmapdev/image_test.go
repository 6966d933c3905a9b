package mmapdev

import "testing"

import (
	"runtime/debug"
)

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/testsuites"
)

var path string = "/tmp/__storage_img_test"

type T testing.T

func (t *T) assert(msg string, oks ...bool) {
	for _, ok := range oks {
		if !ok {
			t.Log("\n" + string(debug.Stack()))
			t.Error(msg)
			t.Fatal("assert failed")
		}
	}
}

func (t *T) assert_nil(errors ...error) {
	for _, err := range errors {
		if err != nil {
			t.Log("\n" + string(debug.Stack()))
			t.Fatal(err)
		}
	}
}

func (t *T) image() *Image {
	img, err := Anonymous(1024, 256)
	t.assert_nil(err)
	return img
}

func (t *T) cleanup(img *Image) {
	t.assert_nil(img.Close())
}

func TestCreateComesUpErased(x *testing.T) {
	t := (*T)(x)
	img, err := Create(path, 4*PAGESIZE, PAGESIZE)
	t.assert_nil(err)
	w, err := img.ReadWord(storage.Addr(uint64(0)))
	t.assert_nil(err)
	t.assert("new image is erased", w == 0xFF)
	w, err = img.ReadWord(storage.Addr(uint64(4*PAGESIZE - 1)))
	t.assert_nil(err)
	t.assert("last byte is erased", w == 0xFF)
	t.assert_nil(img.Close())
	t.assert_nil(img.Remove())
}

func TestPersistence(x *testing.T) {
	t := (*T)(x)
	img, err := Create(path, 4*PAGESIZE, PAGESIZE)
	t.assert_nil(err)
	t.assert_nil(img.WriteWords(storage.Addr(uint64(0x40)), []byte("hello")))
	t.assert_nil(img.Close())

	img, err = Open(path, PAGESIZE)
	t.assert_nil(err)
	buf := make([]byte, 5)
	t.assert_nil(img.ReadWords(storage.Addr(uint64(0x40)), buf))
	t.assert("data survived the reopen", string(buf) == "hello")
	t.assert_nil(img.Close())
	t.assert_nil(img.Remove())
}

func TestEraseRestoresPolarity(x *testing.T) {
	t := (*T)(x)
	img := t.image()
	defer t.cleanup(img)
	t.assert_nil(img.WriteWord(storage.Addr(uint64(10)), 0x00))
	t.assert_nil(img.EraseAddress(storage.Addr(uint64(0))))
	w, err := img.ReadWord(storage.Addr(uint64(10)))
	t.assert_nil(err)
	t.assert("erase restores 0xFF", w == 0xFF)
}

func TestBadGeometry(x *testing.T) {
	t := (*T)(x)
	_, err := Anonymous(1000, 256)
	t.assert("size must be a multiple of the page size", err != nil)
	_, err = Anonymous(0, 256)
	t.assert("zero size rejected", err != nil)
	_, err = Anonymous(1024, 0)
	t.assert("zero page size rejected", err != nil)
}

func TestAccessErrorKinds(x *testing.T) {
	t := (*T)(x)
	img := t.image()
	defer t.cleanup(img)
	_, err := img.ReadWord(storage.Addr(uint64(1024)))
	t.assert("read past the end fails", err != nil)
	t.assert("classified out of range", storage.KindOf(err) == storage.KindOutOfRange)
	err = img.EraseAddress(storage.Addr(uint64(4)))
	t.assert("unaligned erase fails", err != nil)
	t.assert("classified unaligned", storage.KindOf(err) == storage.KindUnaligned)
}

func TestLifecycleErrors(x *testing.T) {
	t := (*T)(x)
	img := t.image()
	t.assert("remove before close fails", img.Remove() != nil)
	t.assert_nil(img.Close())
	t.assert("double close fails", img.Close() != nil)
	t.assert("anonymous remove fails", img.Remove() != nil)
}

func TestConformance(x *testing.T) {
	t := (*T)(x)
	img := t.image()
	defer t.cleanup(img)
	testsuites.Run[byte, uint64](x, img, testsuites.Config[byte]{
		Erased:    0xFF,
		Overwrite: true,
	})
}
