/*
Package mmapdev drives a flash image file through the storage
capability contracts by memory mapping it. It is host-side tooling:
the image file stands in for the device, a byte of the file for a byte
of the part, and erase restores the NOR polarity of 0xFF. Writes
overwrite (the file is not flash; re-flashing a byte does not AND it),
which makes the package a convenient backend for image inspection and
patching tools.

The device's address space starts at zero and its word is the byte.
The page size is chosen when the image is created or opened and must
divide the image size.
*/
package mmapdev

import (
	"os"
)

import (
	"golang.org/x/sys/unix"
)

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/errors"
)

const PAGESIZE = 4096

// Image is a memory mapped flash image. Not safe for concurrent use;
// an instance owns its mapping exclusively.
type Image struct {
	path     string
	opened   bool
	anon     bool
	pagesize uint64
	file     *os.File
	data     []byte
}

var _ storage.Device[byte, uint64] = (*Image)(nil)

// Create makes a new image file of size bytes, fully erased, and maps
// it. size must be a positive multiple of pagesize.
func Create(path string, size, pagesize uint64) (*Image, error) {
	if err := checkGeometry(size, pagesize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Errorf("could not map %q: %v", path, err)
	}
	self := &Image{
		path:     path,
		opened:   true,
		pagesize: pagesize,
		file:     f,
		data:     data,
	}
	fill(self.data, 0xFF)
	if err := self.Sync(); err != nil {
		self.Close()
		return nil, err
	}
	return self, nil
}

// Open maps an existing image file. Its size must be a positive
// multiple of pagesize.
func Open(path string, pagesize uint64) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := uint64(fi.Size())
	if err := checkGeometry(size, pagesize); err != nil {
		f.Close()
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Errorf("could not map %q: %v", path, err)
	}
	return &Image{
		path:     path,
		opened:   true,
		pagesize: pagesize,
		file:     f,
		data:     data,
	}, nil
}

// Anonymous maps an image with no backing file, fully erased. Useful
// for tests and scratch work.
func Anonymous(size, pagesize uint64) (*Image, error) {
	if err := checkGeometry(size, pagesize); err != nil {
		return nil, err
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Errorf("could not map anonymous image: %v", err)
	}
	self := &Image{
		opened:   true,
		anon:     true,
		pagesize: pagesize,
		data:     data,
	}
	fill(self.data, 0xFF)
	return self, nil
}

func checkGeometry(size, pagesize uint64) error {
	if size == 0 || pagesize == 0 || size%pagesize != 0 {
		return errors.Errorf("image size %d is not a positive multiple of page size %d", size, pagesize)
	}
	return nil
}

func fill(data []byte, b byte) {
	for i := range data {
		data[i] = b
	}
}

func (self *Image) Path() string {
	return self.path
}

// Sync flushes the mapping to the backing file.
func (self *Image) Sync() error {
	if !self.opened {
		return errors.Errorf("sync on closed image")
	}
	if self.anon {
		return nil
	}
	if err := unix.Msync(self.data, unix.MS_SYNC); err != nil {
		return errors.Errorf("could not sync %q: %v", self.path, err)
	}
	return nil
}

func (self *Image) Close() error {
	if !self.opened {
		return errors.Errorf("image already closed")
	}
	if err := self.Sync(); err != nil {
		return err
	}
	if err := unix.Munmap(self.data); err != nil {
		return errors.Errorf("could not unmap %q: %v", self.path, err)
	}
	self.data = nil
	self.opened = false
	if self.file != nil {
		err := self.file.Close()
		self.file = nil
		return err
	}
	return nil
}

// Remove deletes the backing file. The image must be closed first.
func (self *Image) Remove() error {
	if self.opened {
		return errors.Errorf("expected image to be closed")
	}
	if self.anon {
		return errors.Errorf("anonymous image has no file to remove")
	}
	return os.Remove(self.path)
}

func (self *Image) index(op string, a storage.Address[uint64], n int) (int, error) {
	v := a.Value()
	if v > uint64(len(self.data)) || uint64(n) > uint64(len(self.data))-v {
		return 0, &AccessError{Op: op, Addr: v, Reason: storage.KindOutOfRange}
	}
	return int(v), nil
}

func (self *Image) ReadWord(a storage.Address[uint64]) (byte, error) {
	i, err := self.index("read", a, 1)
	if err != nil {
		return 0, err
	}
	return self.data[i], nil
}

func (self *Image) ReadWords(a storage.Address[uint64], buf []byte) error {
	i, err := self.index("read", a, len(buf))
	if err != nil {
		return err
	}
	copy(buf, self.data[i:i+len(buf)])
	return nil
}

func (self *Image) WriteWord(a storage.Address[uint64], word byte) error {
	i, err := self.index("write", a, 1)
	if err != nil {
		return err
	}
	self.data[i] = word
	return nil
}

func (self *Image) WriteWords(a storage.Address[uint64], buf []byte) error {
	i, err := self.index("write", a, len(buf))
	if err != nil {
		return err
	}
	copy(self.data[i:i+len(buf)], buf)
	return nil
}

func (self *Image) ErasePage(p storage.Page[uint64]) error {
	pages := uint64(len(self.data)) / self.pagesize
	if p.Index() >= pages {
		return &AccessError{Op: "erase page", Addr: p.Index(), Reason: storage.KindOutOfRange}
	}
	at := p.Index() * self.pagesize
	fill(self.data[at:at+self.pagesize], 0xFF)
	return nil
}

func (self *Image) EraseAddress(a storage.Address[uint64]) error {
	if _, err := self.index("erase", a, 1); err != nil {
		return err
	}
	if a.Value()%self.pagesize != 0 {
		return &AccessError{Op: "erase", Addr: a.Value(), Reason: storage.KindUnaligned}
	}
	return self.ErasePage(storage.PageNo(a.Value() / self.pagesize))
}

func (self *Image) StartAddress() (storage.Address[uint64], error) {
	return storage.Addr(uint64(0)), nil
}

func (self *Image) TotalSize() (storage.AddressOffset[uint64], error) {
	return storage.Off(uint64(len(self.data))), nil
}

func (self *Image) PageSize(a storage.Address[uint64]) (storage.AddressOffset[uint64], error) {
	if _, err := self.index("page size", a, 1); err != nil {
		return storage.Off(uint64(0)), err
	}
	return storage.Off(self.pagesize), nil
}
