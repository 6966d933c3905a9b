/*
Package inmem provides in-memory emulations of word addressable
storage devices. They implement the full capability surface of the
storage package and double as executable documentation of its
semantics: what a NOR part does to bits you program twice, what a
busy device answers mid erase, what happens to a transmit buffer on a
full duplex bus.

Flash models a NOR style part: erased polarity of all ones, programs
that can only clear bits, page granular erase with an optional mixed
sector layout, and an optional program/erase latency surfaced as
nb.ErrWouldBlock so polling loops can be exercised without hardware.

RAM models an arbitrary-overwrite part (SRAM, FRAM, an EEPROM with
byte writes): no erase requirement, no busy cycles, and a single
"page" spanning the whole device whose erase fills zeroes.

Both are meant as test doubles for consumers of the capability
contracts and as reference implementations for driver authors. Neither
is safe for concurrent use; like a real driver each instance owns its
device exclusively.
*/
package inmem
