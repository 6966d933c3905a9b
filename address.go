package storage

// Unsigned constrains the integer type a driver picks for its address
// space. The width is independent of the host word size: a device with
// a 24-bit address space fits in a uint32, a large NAND part may want
// a uint64.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Word constrains the unit of a single transfer. Most devices move
// bytes but 16 and 32 bit wide flashes exist. The erased polarity of
// all ones is expressible as ^W(0) for any W.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Address is an absolute location in a device's own address space. Its
// value is device defined and may be larger or smaller than a host
// pointer. Addresses only combine with AddressOffsets; there is no way
// to add two Addresses.
type Address[U Unsigned] struct {
	value U
}

// Addr wraps a raw device address.
func Addr[U Unsigned](value U) Address[U] {
	return Address[U]{value: value}
}

// Value unwraps the raw device address.
func (a Address[U]) Value() U {
	return a.value
}

// Add displaces the address by an offset. The sum wraps in U on
// overflow, which is in range for no device; bounds are the driver's
// to enforce.
func (a Address[U]) Add(o AddressOffset[U]) Address[U] {
	return Address[U]{value: a.value + o.value}
}

// Sub displaces the address backwards by an offset, wrapping in U on
// underflow.
func (a Address[U]) Sub(o AddressOffset[U]) Address[U] {
	return Address[U]{value: a.value - o.value}
}

// AddressOffset is a distance between locations in a device address
// space, counted in words. Off(0) is the additive identity.
type AddressOffset[U Unsigned] struct {
	value U
}

// Off wraps a raw word count.
func Off[U Unsigned](value U) AddressOffset[U] {
	return AddressOffset[U]{value: value}
}

// Value unwraps the raw word count.
func (o AddressOffset[U]) Value() U {
	return o.value
}

// Page is a zero based page index on a device whose erase granularity
// is a page. Pages partition the address range but need not all be the
// same size (NOR parts with mixed sector layouts); the size of the
// page containing an address comes from Sizer.PageSize.
type Page[U Unsigned] struct {
	index U
}

// PageNo wraps a raw page index.
func PageNo[U Unsigned](index U) Page[U] {
	return Page[U]{index: index}
}

// Index unwraps the raw page index.
func (p Page[U]) Index() U {
	return p.index
}
