package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/retrocore/hostadapter"
	"github.com/intuitionamiga/retrocore/ppu"
	"github.com/intuitionamiga/retrocore/z80"
)

type fakeMainCPU struct {
	irqsRaised []int
	pc         uint32
}

func (f *fakeMainCPU) Reset()                       {}
func (f *fakeMainCPU) RunCycles(n int) int           { return n }
func (f *fakeMainCPU) RaiseIRQ(level int)            { f.irqsRaised = append(f.irqsRaised, level) }
func (f *fakeMainCPU) ClearIRQ(level int)            {}
func (f *fakeMainCPU) PC() uint32                    { return f.pc }
func (f *fakeMainCPU) IsHalted() bool                { return false }
func (f *fakeMainCPU) ShouldSync() bool              { return false }
func (f *fakeMainCPU) SyncTo(cycleCount uint64)      {}
func (f *fakeMainCPU) SaveState() ([]byte, error)    { return nil, nil }
func (f *fakeMainCPU) LoadState(data []byte) error   { return nil }

type fakeMain struct{ data [1 << 16]byte }

func (m *fakeMain) ReadByte(addr uint32) byte     { return m.data[addr] }
func (m *fakeMain) WriteByte(addr uint32, v byte) { m.data[addr] = v }

type noAudio struct{}

func (noAudio) WriteFM(int, byte) {}
func (noAudio) WritePSG(byte)     {}

type flatZ80Bus struct{ mem [0x10000]byte }

func (b *flatZ80Bus) Read(a uint16) byte      { return b.mem[a] }
func (b *flatZ80Bus) Write(a uint16, v byte)  { b.mem[a] = v }
func (b *flatZ80Bus) In(uint16) byte          { return 0xFF }
func (b *flatZ80Bus) Out(uint16, byte)        {}

func newTestScheduler(t *testing.T, main *fakeMainCPU) (*Scheduler, *hostadapter.Adapter) {
	bus := &flatZ80Bus{}
	bus.mem[0] = 0x76 // HALT, so Step() never loops forever
	cpu := z80.New(bus)

	adapter := hostadapter.New(&fakeMain{}, noAudio{})
	adapter.SetReset(false)
	adapter.SetBUSREQ(false)

	p := ppu.New(ppu.Config{Width: 16, Height: 8, Format: ppu.PixelRGBA8888, DotsPerLine: 4, ScanlinesPerFrame: 4, VisibleHeight: 2})
	require.NotNil(t, p)

	s := New(Config{Main: main, Z80: cpu, Adapter: adapter, PPU: p, CyclesPerFrame: 40}, nil)
	return s, adapter
}

func TestVBlankRoutedToMainCPUIRQ(t *testing.T) {
	main := &fakeMainCPU{}
	s, _ := newTestScheduler(t, main)

	s.RunFrame()
	assert.Contains(t, main.irqsRaised, VBlankIRQLevel)
}

func TestBreakFlagReturnsEarlyWithBudgetIntact(t *testing.T) {
	main := &fakeMainCPU{}
	s, _ := newTestScheduler(t, main)

	s.Break()
	remaining := s.RunFrame()
	assert.Equal(t, 40, remaining)
}

func TestHaltedAdapterSkipsZ80Stepping(t *testing.T) {
	main := &fakeMainCPU{}
	s, adapter := newTestScheduler(t, main)
	adapter.SetBUSREQ(true)

	remaining := s.RunFrame()
	assert.Equal(t, 0, remaining)
	assert.Equal(t, uint64(0), s.z80.Cycles)
}
