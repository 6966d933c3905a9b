/*
Embedded Storage

Capability contracts for byte and word addressable storage devices:
on-chip Flash, external EEPROM, NOR and NAND parts, memory mapped ROMs,
and RAM backed emulations of all of the above. A driver for a concrete
device implements the subset of the contracts its hardware can honor; a
consumer (a config store, a ring buffer log, an A/B firmware slot
manager) constrains itself over exactly the capabilities it needs and
nothing more.

The design makes a few deliberate choices:

1. Capabilities are partitioned, not inherited. A monolithic Storage
interface would force a ROM driver to stub out writes and a RAM driver
to invent an erase. Instead there is one small interface per operation
family (SingleReader, SingleWriter, MultiReader, MultiWriter,
PageEraser, Sizer) and composed conveniences (Reader, Writer,
ReadWriter, Device) for consumers that want several at once.

2. Addresses are newtypes, not integers. Device address spaces have
nothing to do with host pointers: a 16-bit MCU may drive a flash part
with a 32-bit address space. Address and AddressOffset wrap an unsigned
integer type chosen by the driver, and only Address+Offset arithmetic
is provided. Adding two Addresses is not expressible.

3. Every operation is non-blocking. A fallible operation returns its
value and an error; the sentinel nb.ErrWouldBlock means the device is
busy (a program or erase cycle is in flight) and the call must be
re-issued. No executor, timer, or interrupt is implied. See the nb
package.

4. Error enumerations belong to drivers. Different devices fail in
different ways and a grand common union would lose information. Each
driver returns its own error types; the optional Kind classification
lets generic consumers triage errors they do not otherwise know.

The major components of this project:

1. storage (this package) - the address quantities and the capability
contracts.

2. nb - the would-block sentinel and poll helpers.

3. inmem - in-memory Flash and RAM emulations, useful as test doubles
and as executable documentation of the contract semantics.

4. mmapdev - a memory mapped flash image driver for host-side tooling.

5. testsuites - a conformance suite any driver implementation can run
against itself.

6. errors - just a simple error package which maintains a stack trace
with every error.
*/
package storage
