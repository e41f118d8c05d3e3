package savestate

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/retrocore/hostadapter"
	"github.com/intuitionamiga/retrocore/ppu"
	"github.com/intuitionamiga/retrocore/scheduler"
	"github.com/intuitionamiga/retrocore/z80"
)

type fakeMain struct{ data [1 << 16]byte }

func (m *fakeMain) ReadByte(addr uint32) byte     { return m.data[addr] }
func (m *fakeMain) WriteByte(addr uint32, v byte) { m.data[addr] = v }

type noAudio struct{}

func (noAudio) WriteFM(int, byte) {}
func (noAudio) WritePSG(byte)     {}

type fakeMainCPU struct{}

func (fakeMainCPU) Reset()                     {}
func (fakeMainCPU) RunCycles(n int) int        { return n }
func (fakeMainCPU) RaiseIRQ(level int)         {}
func (fakeMainCPU) ClearIRQ(level int)         {}
func (fakeMainCPU) PC() uint32                 { return 0 }
func (fakeMainCPU) IsHalted() bool             { return false }
func (fakeMainCPU) ShouldSync() bool           { return false }
func (fakeMainCPU) SyncTo(cycleCount uint64)   {}
func (fakeMainCPU) SaveState() ([]byte, error) { return nil, nil }
func (fakeMainCPU) LoadState([]byte) error     { return nil }

func newRig(t *testing.T) (*z80.Core, *hostadapter.Adapter, *ppu.Core, *scheduler.Scheduler) {
	adapter := hostadapter.New(&fakeMain{}, noAudio{})
	adapter.SetReset(false)
	adapter.SetBUSREQ(false)

	// INC A (0x3C) ; JP $0000 (0xC3 00 00): an infinite loop whose
	// only observable state is A and the cycle count, deterministic
	// per instruction executed.
	adapter.Write(0, 0x3C)
	adapter.Write(1, 0xC3)
	adapter.Write(2, 0x00)
	adapter.Write(3, 0x00)

	core := z80.New(adapter)

	p := ppu.New(ppu.Config{Width: 16, Height: 8, Format: ppu.PixelRGBA8888, DotsPerLine: 4, ScanlinesPerFrame: 4, VisibleHeight: 2})
	require.NotNil(t, p)

	s := scheduler.New(scheduler.Config{Main: fakeMainCPU{}, Z80: core, Adapter: adapter, PPU: p, CyclesPerFrame: 1000}, nil)
	return core, adapter, p, s
}

func TestSaveStateRoundTripDeterminism(t *testing.T) {
	coreA, adapterA, ppuA, schedA := newRig(t)

	for i := 0; i < 200; i++ {
		coreA.Step()
	}

	blob, err := SaveAll(coreA, adapterA, ppuA, schedA)
	require.NoError(t, err)

	coreA.Reset()
	adapterA.SetReset(true)

	require.NoError(t, LoadAll(blob, coreA, adapterA, ppuA, schedA))

	for i := 0; i < 200; i++ {
		coreA.Step()
	}

	coreB, _, _, _ := newRig(t)
	for i := 0; i < 400; i++ {
		coreB.Step()
	}

	assert.Equal(t, coreB.A, coreA.A)
	assert.Equal(t, coreB.F, coreA.F)
	assert.Equal(t, coreB.PC, coreA.PC)
	assert.Equal(t, coreB.Cycles, coreA.Cycles)
	assert.Equal(t, coreB.R, coreA.R)
}

func TestLoadAllRejectsBadMagic(t *testing.T) {
	core, adapter, p, sched := newRig(t)
	err := LoadAll([]byte("NOPE"), core, adapter, p, sched)
	assert.Error(t, err)
}

func TestLoadAllRejectsSchemaMismatch(t *testing.T) {
	core, adapter, p, sched := newRig(t)
	blob, err := SaveAll(core, adapter, p, sched)
	require.NoError(t, err)

	// Corrupt the Z80Core region's schema version field, which
	// immediately follows the 12-byte blob header and 4-byte tag.
	corrupted := append([]byte(nil), blob...)
	corrupted[12+4] = 0xFF

	err = LoadAll(corrupted, core, adapter, p, sched)
	assert.Error(t, err)
}

func TestLoadAllRejectsMissingRegion(t *testing.T) {
	core, adapter, p, sched := newRig(t)
	blob, err := SaveAll(adapter, p, sched) // core's region omitted
	require.NoError(t, err)

	err = LoadAll(blob, core, adapter, p, sched)
	assert.Error(t, err)
}

func TestLoadAllRejectsTruncatedRegionBody(t *testing.T) {
	core, adapter, p, sched := newRig(t)
	blob, err := SaveAll(core, adapter, p, sched)
	require.NoError(t, err)

	err = LoadAll(blob[:len(blob)-8], core, adapter, p, sched)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestLoadAllRejectsInflatedBodyLength(t *testing.T) {
	core, adapter, p, sched := newRig(t)
	blob, err := SaveAll(core, adapter, p, sched)
	require.NoError(t, err)

	// The Z80Core region's body-length field immediately follows the
	// 12-byte blob header, 4-byte tag, and 4-byte schema version.
	corrupted := append([]byte(nil), blob...)
	binary.LittleEndian.PutUint32(corrupted[12+4+4:], 0xFFFFFFFF)

	err = LoadAll(corrupted, core, adapter, p, sched)
	require.ErrorIs(t, err, ErrTruncated)
}
