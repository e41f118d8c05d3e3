// Package busview implements the address-decoded byte/word access layer
// shared by the main CPU and the PPU: region lookup from the top address
// bits, a base wait-state table, an optional per-address contention map,
// and an optional contention callback that takes precedence over both.
package busview

import "sync"

// Region identifies one of the eight coarse address regions selected by
// bits 21-23 of a 24-bit address.
type Region int

const (
	RegionROM Region = iota
	RegionWorkRAM
	RegionVDP
	RegionZ80
	RegionCartExpansion
	RegionIO
	RegionReserved6
	RegionReserved7
)

// baseLatency holds the region-specific read cost in cycles; writes add
// writePenalty on top.
var baseLatency = [8]int{
	RegionROM:           4,
	RegionWorkRAM:       2,
	RegionVDP:           5,
	RegionZ80:           3,
	RegionCartExpansion: 4,
	RegionIO:            5,
	RegionReserved6:     0,
	RegionReserved7:     0,
}

const writePenalty = 2

// RegionHandler backs one Region with actual storage or MMIO behaviour.
// A Region with no handler installed reads as 0xFF and discards writes.
type RegionHandler interface {
	ReadByte(addr uint32) byte
	WriteByte(addr uint32, value byte)
}

// ContentionFunc lets a caller override the base+map latency for a
// specific access; ok=false falls through to the map/base lookup.
type ContentionFunc func(addr uint32, isWrite bool) (cycles int, ok bool)

// BusView is the address-decoded view onto the machine's memory map. It
// owns no storage itself - every region is backed by a RegionHandler the
// caller installs - and exists purely to centralise region decode and
// wait-state accounting in one place shared by every bus master.
type BusView struct {
	mu            sync.RWMutex
	handlers      [8]RegionHandler
	contentionMap map[uint32]int
	contentionFn  ContentionFunc

	unmappedReads  uint64
	unmappedWrites uint64
}

// New returns an empty BusView; every region reads 0xFF until a handler
// is installed with SetHandler.
func New() *BusView {
	return &BusView{}
}

// SetHandler installs the backing handler for region. A nil handler
// makes the region behave as unmapped.
func (b *BusView) SetHandler(region Region, h RegionHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[region] = h
}

// SetContentionMap installs a per-address wait-state override table.
// It is consulted when no ContentionFunc is installed or the func
// declines (ok=false) for the address.
func (b *BusView) SetContentionMap(m map[uint32]int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contentionMap = m
}

// SetContentionFunc installs a dynamic wait-state override, consulted
// before the contention map and the base latency table.
func (b *BusView) SetContentionFunc(fn ContentionFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contentionFn = fn
}

func regionOf(addr uint32) Region {
	return Region((addr >> 21) & 0x7)
}

func (b *BusView) latency(addr uint32, isWrite bool) int {
	if b.contentionFn != nil {
		if cycles, ok := b.contentionFn(addr, isWrite); ok {
			return cycles
		}
	}
	if b.contentionMap != nil {
		if cycles, ok := b.contentionMap[addr]; ok {
			if isWrite {
				return cycles + writePenalty
			}
			return cycles
		}
	}
	cost := baseLatency[regionOf(addr)]
	if isWrite {
		cost += writePenalty
	}
	return cost
}

// ReadByte returns the byte at addr and the cycle cost of the access.
// An address in a region with no installed handler reads as 0xFF.
func (b *BusView) ReadByte(addr uint32) (value byte, cycles int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cycles = b.latency(addr, false)
	h := b.handlers[regionOf(addr)]
	if h == nil {
		b.unmappedReads++
		return 0xFF, cycles
	}
	return h.ReadByte(addr), cycles
}

// WriteByte writes value at addr and returns the cycle cost of the
// access. A write into an unmapped region is silently discarded.
func (b *BusView) WriteByte(addr uint32, value byte) (cycles int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cycles = b.latency(addr, true)
	h := b.handlers[regionOf(addr)]
	if h == nil {
		b.unmappedWrites++
		return cycles
	}
	h.WriteByte(addr, value)
	return cycles
}

// ReadWord/ReadLong widen via two/four ReadByte calls in big-endian
// order, matching 68000 and VDP byte ordering; the returned cost is the
// sum of the individual accesses.
func (b *BusView) ReadWord(addr uint32) (value uint16, cycles int) {
	hi, c1 := b.ReadByte(addr)
	lo, c2 := b.ReadByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo), c1 + c2
}

func (b *BusView) WriteWord(addr uint32, value uint16) (cycles int) {
	c1 := b.WriteByte(addr, byte(value>>8))
	c2 := b.WriteByte(addr+1, byte(value))
	return c1 + c2
}

func (b *BusView) ReadLong(addr uint32) (value uint32, cycles int) {
	hi, c := b.ReadWord(addr)
	lo, c2 := b.ReadWord(addr + 2)
	return uint32(hi)<<16 | uint32(lo), c + c2
}

func (b *BusView) WriteLong(addr uint32, value uint32) (cycles int) {
	c1 := b.WriteWord(addr, uint16(value>>16))
	c2 := b.WriteWord(addr+2, uint16(value))
	return c1 + c2
}

// Stats reports the number of accesses that fell into an unmapped
// region since construction, for optional adapter-level diagnostics.
func (b *BusView) Stats() (unmappedReads, unmappedWrites uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.unmappedReads, b.unmappedWrites
}
