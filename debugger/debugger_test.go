package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/retrocore/z80"
)

type flatBus struct{ mem [0x10000]byte }

func (b *flatBus) Read(a uint16) byte     { return b.mem[a] }
func (b *flatBus) Write(a uint16, v byte) { b.mem[a] = v }
func (b *flatBus) In(uint16) byte         { return 0xFF }
func (b *flatBus) Out(uint16, byte)       {}

type fakeBreak struct{ hit bool }

func (f *fakeBreak) Break() { f.hit = true }

func newTestDebugger(t *testing.T) (*Debugger, *flatBus, *z80.Core, *fakeBreak) {
	bus := &flatBus{}
	core := z80.New(bus)
	brk := &fakeBreak{}
	d := New(core, func(a uint16) byte { return bus.mem[a] }, brk)
	return d, bus, core, brk
}

func TestAddBreakpointCapacity(t *testing.T) {
	d, _, _, _ := newTestDebugger(t)
	for i := 0; i < maxBreakpoints; i++ {
		id := d.AddBreakpoint(KindExec, 0, 0xFFFF, CondAlways, 0, 0, false, "")
		require.NotEqual(t, -1, id)
	}
	assert.Equal(t, -1, d.AddBreakpoint(KindExec, 0, 0xFFFF, CondAlways, 0, 0, false, ""))
}

func TestRemoveAndEnableBreakpoint(t *testing.T) {
	d, _, _, _ := newTestDebugger(t)
	id := d.AddBreakpoint(KindExec, 0, 0xFFFF, CondAlways, 0, 0, false, "")
	d.Enable(id, false)
	assert.False(t, d.breakpoints[id].Enabled)
	d.RemoveBreakpoint(id)
	_, ok := d.breakpoints[id]
	assert.False(t, ok)
}

func TestConditionOperators(t *testing.T) {
	assert.True(t, evalCondition(CondAlways, 5, 0, 0))
	assert.True(t, evalCondition(CondEQ, 5, 5, 0))
	assert.False(t, evalCondition(CondEQ, 5, 6, 0))
	assert.True(t, evalCondition(CondNE, 5, 6, 0))
	assert.True(t, evalCondition(CondGT, 6, 5, 0))
	assert.True(t, evalCondition(CondLT, 4, 5, 0))
	assert.True(t, evalCondition(CondMask, 0xFF, 0x0F, 0x0F))
	assert.False(t, evalCondition(CondMask, 0xF0, 0x0F, 0x0F))
}

func TestExecBreakpointStopsAtAddress(t *testing.T) {
	d, bus, core, brk := newTestDebugger(t)
	bus.mem[0] = 0x00 // NOP
	bus.mem[1] = 0x00 // NOP
	bus.mem[2] = 0x76 // HALT

	hit := false
	var hitPC uint16
	d.OnBreakpointHit(func(bp Breakpoint, accessed uint16) {
		hit = true
		hitPC = accessed
	})
	d.AddBreakpoint(KindExec, 2, 2, CondAlways, 0, 0, false, "stop at halt")

	for i := 0; i < 5 && !brk.hit; i++ {
		core.Step()
	}
	assert.True(t, hit)
	assert.Equal(t, uint16(2), hitPC)
	assert.True(t, brk.hit)
}

func TestMemWriteBreakpointCondition(t *testing.T) {
	d, bus, core, _ := newTestDebugger(t)
	// LD A,$42 ; LD (100),A
	bus.mem[0] = 0x3E
	bus.mem[1] = 0x42
	bus.mem[2] = 0x32
	bus.mem[3] = 100
	bus.mem[4] = 0

	hit := false
	d.OnBreakpointHit(func(bp Breakpoint, accessed uint16) { hit = true })
	d.AddBreakpoint(KindMemWrite, 100, 100, CondEQ, 0x42, 0, false, "")

	for i := 0; i < 4; i++ {
		core.Step()
	}
	assert.True(t, hit)
}

func TestStepIntoPausesEveryInstruction(t *testing.T) {
	d, bus, core, brk := newTestDebugger(t)
	bus.mem[0] = 0x00
	bus.mem[1] = 0x00

	d.StepInto()
	core.Step()
	assert.True(t, brk.hit)
}

func TestStepOverSkipsCall(t *testing.T) {
	d, bus, core, brk := newTestDebugger(t)
	// CALL $0010 at 0, then HALT at 3; subroutine at $0010 is RET.
	bus.mem[0] = 0xCD
	bus.mem[1] = 0x10
	bus.mem[2] = 0x00
	bus.mem[3] = 0x76
	bus.mem[0x10] = 0xC9 // RET

	d.StepOver()
	assert.Equal(t, StepModeOver, d.stepMode)
	assert.Equal(t, uint16(3), d.stepTarget)

	for i := 0; i < 10 && !brk.hit; i++ {
		core.Step()
	}
	assert.True(t, brk.hit)
	assert.Equal(t, uint16(3), core.PC)
}

func TestStepOutStopsAfterReturn(t *testing.T) {
	d, bus, core, brk := newTestDebugger(t)
	bus.mem[0] = 0xCD // CALL $0010
	bus.mem[1] = 0x10
	bus.mem[2] = 0x00
	bus.mem[3] = 0x76 // HALT
	bus.mem[0x10] = 0x00
	bus.mem[0x11] = 0xC9 // RET

	core.Step() // execute CALL, enters subroutine
	d.StepOut()
	for i := 0; i < 10 && !brk.hit; i++ {
		core.Step()
	}
	assert.True(t, brk.hit)
	assert.Equal(t, uint16(3), core.PC)
}

func TestIntBreakpointFiresOnInterruptAcceptance(t *testing.T) {
	d, bus, core, brk := newTestDebugger(t)
	bus.mem[0] = 0xFB // EI
	bus.mem[1] = 0x00 // NOP
	bus.mem[2] = 0x00 // NOP
	core.IM = 1
	core.SetIRQ(true, 0xFF)

	hit := false
	d.OnBreakpointHit(func(bp Breakpoint, accessed uint16) { hit = true })
	d.AddBreakpoint(KindInt, 0, 0xFFFF, CondAlways, 0, 0, false, "")

	for i := 0; i < 4 && !brk.hit; i++ {
		core.Step()
	}
	assert.True(t, hit)
	assert.True(t, brk.hit)
}

func TestTraceBufferChronologicalAndWraparound(t *testing.T) {
	d, bus, core, _ := newTestDebugger(t)
	for i := 0; i < traceCapacity+5; i++ {
		bus.mem[i%0x10000] = 0x00
	}
	d.EnableTrace(true)
	for i := 0; i < traceCapacity+5; i++ {
		core.Step()
	}
	assert.Equal(t, traceCapacity, d.traceCount)
	first, ok := d.GetTrace(0)
	require.True(t, ok)
	last, ok := d.GetTrace(traceCapacity - 1)
	require.True(t, ok)
	assert.NotEqual(t, first.PC, last.PC)

	_, ok = d.GetTrace(traceCapacity)
	assert.False(t, ok)
}

func TestDumpMemory(t *testing.T) {
	d, bus, _, _ := newTestDebugger(t)
	bus.mem[10] = 1
	bus.mem[11] = 2
	bus.mem[12] = 3
	out := make([]byte, 3)
	n := d.DumpMemory(10, 3, out)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, out)
}

func TestDisassembleRangeBasic(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0] = 0x00 // NOP
	bus.mem[1] = 0xC3 // JP $1234
	bus.mem[2] = 0x34
	bus.mem[3] = 0x12

	ds := NewDisassembler(func(a uint16) byte { return bus.mem[a] })
	lines := ds.DisassembleRange(0, 2)
	require.Len(t, lines, 2)
	assert.Equal(t, "NOP", lines[0].Disasm)
	assert.Equal(t, 1, lines[0].OpcodeLen)
	assert.Equal(t, "JP $1234", lines[1].Disasm)
	assert.Equal(t, 3, lines[1].OpcodeLen)
}
