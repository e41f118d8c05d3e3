package z80

import (
	"log/slog"
	"time"
)

// perfState adds optional MIPS reporting alongside the core's
// cycle-accurate execution; it never affects timing or any observable
// register/flag/cycle result, only what gets logged. A disabled Core
// never touches the clock.
type perfState struct {
	enabled          bool
	instructionCount uint64
	start            time.Time
	lastReport       time.Time
	logger           *slog.Logger
}

// EnablePerfCounters turns on MIPS reporting via logger, checked every
// ~1M instructions and reported at most once a second.
func (c *Core) EnablePerfCounters(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()
	c.perf = perfState{enabled: true, start: now, lastReport: now, logger: logger}
}

func (c *Core) DisablePerfCounters() { c.perf.enabled = false }

// InstructionCount reports the total instructions executed since perf
// counters were last enabled.
func (c *Core) InstructionCount() uint64 { return c.perf.instructionCount }

func (c *Core) recordInstruction() {
	if !c.perf.enabled {
		return
	}
	c.perf.instructionCount++
	if c.perf.instructionCount&0xFFFFF != 0 {
		return
	}
	now := time.Now()
	if now.Sub(c.perf.lastReport) < time.Second {
		return
	}
	elapsed := now.Sub(c.perf.start).Seconds()
	if elapsed <= 0 {
		return
	}
	mips := float64(c.perf.instructionCount) / elapsed / 1_000_000
	c.perf.logger.Debug("z80 perf", "mips", mips, "instructions", c.perf.instructionCount, "elapsed_s", elapsed)
	c.perf.lastReport = now
}
