package busview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ramHandler struct{ data [0x2000]byte }

func (r *ramHandler) ReadByte(addr uint32) byte        { return r.data[addr&0x1FFF] }
func (r *ramHandler) WriteByte(addr uint32, v byte)    { r.data[addr&0x1FFF] = v }

func TestUnmappedReadsFF(t *testing.T) {
	b := New()
	v, cycles := b.ReadByte(0x00000000)
	assert.Equal(t, byte(0xFF), v)
	assert.Equal(t, 4, cycles) // region 0 = ROM base latency, still "read cost" even though unmapped
}

func TestRegionLatencyAndHandlerRoundTrip(t *testing.T) {
	b := New()
	ram := &ramHandler{}
	b.SetHandler(RegionWorkRAM, ram)

	addr := uint32(RegionWorkRAM) << 21
	cycles := b.WriteByte(addr, 0x42)
	require.Equal(t, 2+writePenalty, cycles)

	v, cycles := b.ReadByte(addr)
	assert.Equal(t, byte(0x42), v)
	assert.Equal(t, 2, cycles)
}

func TestContentionMapOverridesBase(t *testing.T) {
	b := New()
	b.SetHandler(RegionVDP, &ramHandler{})
	addr := uint32(RegionVDP) << 21
	b.SetContentionMap(map[uint32]int{addr: 9})

	_, cycles := b.ReadByte(addr)
	assert.Equal(t, 9, cycles)
}

func TestContentionFuncTakesPrecedenceOverMap(t *testing.T) {
	b := New()
	addr := uint32(RegionIO) << 21
	b.SetContentionMap(map[uint32]int{addr: 9})
	b.SetContentionFunc(func(a uint32, isWrite bool) (int, bool) {
		if a == addr {
			return 100, true
		}
		return 0, false
	})

	_, cycles := b.ReadByte(addr)
	assert.Equal(t, 100, cycles)
}

func TestWordAndLongWideningIsBigEndian(t *testing.T) {
	b := New()
	ram := &ramHandler{}
	b.SetHandler(RegionROM, ram)

	b.WriteWord(0, 0xABCD)
	assert.Equal(t, byte(0xAB), ram.data[0])
	assert.Equal(t, byte(0xCD), ram.data[1])

	v, _ := b.ReadWord(0)
	assert.Equal(t, uint16(0xABCD), v)

	b.WriteLong(4, 0x01020304)
	v32, _ := b.ReadLong(4)
	assert.Equal(t, uint32(0x01020304), v32)
}

func TestUnmappedWriteDiscardedAndCounted(t *testing.T) {
	b := New()
	b.WriteByte(0, 1)
	reads, writes := b.Stats()
	assert.Equal(t, uint64(0), reads)
	assert.Equal(t, uint64(1), writes)
}
