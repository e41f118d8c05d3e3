// Package scheduler drives the main CPU, the Z80 co-processor and the
// PPU in lockstep for one frame: converting between their cycle
// domains, routing interrupts, and honouring the debugger's break flag
// at instruction boundaries.
package scheduler

import (
	"log/slog"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/intuitionamiga/retrocore/hostadapter"
	"github.com/intuitionamiga/retrocore/ppu"
	"github.com/intuitionamiga/retrocore/z80"
)

// MainCPU is the black-box 68000-style collaborator. The
// scheduler never inspects its internals, only drives it through this
// contract.
type MainCPU interface {
	Reset()
	RunCycles(n int) (actuallyRan int)
	RaiseIRQ(level int)
	ClearIRQ(level int)
	PC() uint32
	IsHalted() bool
	ShouldSync() bool
	SyncTo(cycleCount uint64)
	SaveState() ([]byte, error)
	LoadState([]byte) error
}

// z80CycleNumerator/Denominator implement the exact 7/15 main-to-Z80
// cycle-domain ratio.
const (
	z80CycleNumerator   = 7
	z80CycleDenominator = 15
)

const sliceSize = 100

// VBlankIRQLevel is the main-CPU interrupt level the scheduler raises
// when the PPU crosses into VBlank, per the Mega-Drive-like profile.
const VBlankIRQLevel = 6

// Config configures a new Scheduler.
type Config struct {
	Main        MainCPU
	Z80         *z80.Core
	Adapter     *hostadapter.Adapter
	PPU         *ppu.Core
	CyclesPerFrame int // defaults to NTSC's ~127000 when zero
}

// Scheduler is the Scheduler (C5); it is the root owner of the adapter
// and the PPU.
type Scheduler struct {
	main    MainCPU
	z80     *z80.Core
	adapter *hostadapter.Adapter
	ppu     *ppu.Core

	cyclesPerFrame int
	z80Remainder   int // fractional Z80 cycles carried between slices

	breakFlag atomic.Bool

	logger *slog.Logger
}

// New constructs a Scheduler wiring the three collaborators together
// and installs the PPU's scanline callback to route VBlank into the
// main CPU's interrupt line.
func New(cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cpf := cfg.CyclesPerFrame
	if cpf == 0 {
		cpf = 127000
	}

	logger.Debug("scheduler starting", "fast_unaligned_loads", cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD)

	s := &Scheduler{
		main:           cfg.Main,
		z80:            cfg.Z80,
		adapter:        cfg.Adapter,
		ppu:            cfg.PPU,
		cyclesPerFrame: cpf,
		logger:         logger,
	}

	s.ppu.OnScanline(func(scanline int) {
		if scanline == mustVisibleHeight(s.ppu) {
			s.main.RaiseIRQ(VBlankIRQLevel)
		}
	})

	return s
}

func mustVisibleHeight(p *ppu.Core) int {
	_, h, _ := p.Dimensions()
	return h
}

// Break requests the scheduler finish the current instruction of the
// active CPU and return early, per the Debugger's break-flag contract
//.
func (s *Scheduler) Break() { s.breakFlag.Store(true) }

func (s *Scheduler) clearBreak() { s.breakFlag.Store(false) }

// RunFrame advances every component by one frame's worth of cycles, or
// returns early (with RemainingCycles > 0) if the break flag was set.
// remainingCycles reports how much of the frame budget was left when it
// returned, so the caller can resume on the next call.
func (s *Scheduler) RunFrame() (remainingCycles int) {
	budget := s.cyclesPerFrame
	for budget > 0 {
		if s.breakFlag.Load() {
			s.clearBreak()
			return budget
		}

		slice := sliceSize
		if slice > budget {
			slice = budget
		}

		ran := s.main.RunCycles(slice)
		budget -= ran

		s.stepZ80For(ran)
		s.ppu.Execute(ran)

		if s.main.ShouldSync() {
			s.main.SyncTo(uint64(s.cyclesPerFrame - budget))
		}

		if ran == 0 {
			break // main CPU made no progress; avoid spinning forever
		}
	}
	return 0
}

// stepZ80For converts mainCycles main-CPU cycles to Z80 T-states using
// the exact 7/15 ratio, carrying the fractional remainder between
// calls so the conversion is exact over many slices rather than
// truncating every time.
func (s *Scheduler) stepZ80For(mainCycles int) {
	if s.adapter.Halted() {
		return
	}

	total := mainCycles*z80CycleNumerator + s.z80Remainder
	z80Cycles := total / z80CycleDenominator
	s.z80Remainder = total % z80CycleDenominator

	consumed := 0
	for consumed < z80Cycles {
		if s.breakFlag.Load() {
			return
		}
		consumed += s.z80.Step()
	}
}
