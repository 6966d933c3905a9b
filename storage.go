package storage

// Every operation below follows the non-blocking convention: on
// success it returns a nil error, on a hard failure it returns a
// driver defined error, and while the device is mid program, mid
// erase, or otherwise busy it returns an error matching
// nb.ErrWouldBlock and must be re-issued. Drivers must settle to
// success or a hard error in bounded time once no hardware operation
// is outstanding. Operations issued sequentially on the same driver
// observe program order.
//
// A driver instance exclusively owns its device. Calls take exclusive
// access for their duration; none of these interfaces promise safety
// against concurrent or interrupt-context use unless the concrete
// driver documents it.

// SingleReader reads one word at a time.
type SingleReader[W Word, U Unsigned] interface {
	// ReadWord returns the word most recently committed at address.
	ReadWord(address Address[U]) (W, error)
}

// SingleWriter writes one word at a time.
//
// On flash-like media bits only transition from the erased polarity
// towards zero; committing a word that needs a bit set again requires
// a prior erase. Drivers must document their polarity and must not
// pretend flash is RAM. EEPROM and RAM drivers overwrite arbitrarily.
type SingleWriter[W Word, U Unsigned] interface {
	// WriteWord commits word at address. After a nil return the value
	// is durable up to the device's retention guarantee.
	WriteWord(address Address[U], word W) error
}

// MultiReader fills a caller owned buffer in one operation, for
// devices with a bulk path (SPI bursts, DMA). Iterating single reads
// is a valid implementation.
type MultiReader[W Word, U Unsigned] interface {
	// ReadWords fills buf so that buf[i] holds the word at address+i.
	// A read crossing a page or bank boundary either works or fails
	// with a driver error; it is never silently truncated.
	ReadWords(address Address[U], buf []W) error
}

// MultiWriter drains a caller owned buffer in one operation.
//
// Some transports (full duplex SPI) clobber the transmit buffer with
// received traffic, so callers must assume buf's contents are
// invalidated by the call. Drivers either split writes that cross a
// page program boundary or reject them; each driver documents which.
type MultiWriter[W Word, U Unsigned] interface {
	// WriteWords commits buf[i] at address+i for every i.
	WriteWords(address Address[U], buf []W) error
}

// PageEraser resets whole pages to the erased state. After a nil
// return every word of the page reads as the device's erased polarity.
// Non-flash drivers may fulfil this by writing a device recommended
// value (commonly all zero) and document that as their polarity.
type PageEraser[U Unsigned] interface {
	// ErasePage erases the page with the given index.
	ErasePage(page Page[U]) error
	// EraseAddress erases the page beginning at address. On a paged
	// device anything but a page start address is an error.
	EraseAddress(address Address[U]) error
}

// Sizer reports device geometry. All quantities are in words. The
// three calls may return nb.ErrWouldBlock for devices whose geometry
// lives behind slow registers, though in practice they are fast paths.
type Sizer[U Unsigned] interface {
	// StartAddress returns the lowest valid address on the device.
	StartAddress() (Address[U], error)
	// TotalSize returns the extent of the device: the valid addresses
	// are exactly [start, start+total).
	TotalSize() (AddressOffset[U], error)
	// PageSize returns the size of the erase page whose range contains
	// address. Non-paged devices return TotalSize.
	PageSize(address Address[U]) (AddressOffset[U], error)
}

// Reader composes both read capabilities.
type Reader[W Word, U Unsigned] interface {
	SingleReader[W, U]
	MultiReader[W, U]
}

// Writer composes both write capabilities.
type Writer[W Word, U Unsigned] interface {
	SingleWriter[W, U]
	MultiWriter[W, U]
}

// ReadWriter composes all four transfer capabilities.
type ReadWriter[W Word, U Unsigned] interface {
	Reader[W, U]
	Writer[W, U]
}

// ReadOnlyDevice is what a ROM can honestly offer.
type ReadOnlyDevice[W Word, U Unsigned] interface {
	Reader[W, U]
	Sizer[U]
}

// Device is the full capability set of an erasable, writable part.
type Device[W Word, U Unsigned] interface {
	ReadWriter[W, U]
	PageEraser[U]
	Sizer[U]
}
