// Package debugger implements the Debugger (C6): conditional
// breakpoints on execution, memory and I/O, step-into/over/out, a
// circular instruction trace buffer, disassembly and backtrace. It
// installs itself on a z80.Core as a z80.Inspector, so it observes
// (and can veto) execution without the core knowing anything about
// breakpoint kinds or step modes.
package debugger

import (
	"errors"
	"sync"

	"github.com/intuitionamiga/retrocore/z80"
)

// ErrBreakpointFull is returned by Execute when AddBreakpoint's
// 64-entry table is already full.
var ErrBreakpointFull = errors.New("debugger: breakpoint table full")

// Kind is the breakpoint trigger category.
type Kind int

const (
	KindExec Kind = iota
	KindMemRead
	KindMemWrite
	KindIORead
	KindIOWrite
	KindInt
)

// ConditionOp is the comparison operator a breakpoint's condition uses.
type ConditionOp int

const (
	CondAlways ConditionOp = iota
	CondEQ
	CondNE
	CondGT
	CondLT
	CondMask
)

func evalCondition(op ConditionOp, x, value, mask uint16) bool {
	switch op {
	case CondAlways:
		return true
	case CondEQ:
		return x == value
	case CondNE:
		return x != value
	case CondGT:
		return x > value
	case CondLT:
		return x < value
	case CondMask:
		return x&mask == value
	default:
		return false
	}
}

const maxBreakpoints = 64

// Breakpoint is one entry in the debugger's breakpoint table.
type Breakpoint struct {
	ID          int
	Kind        Kind
	Lo, Hi      uint16
	Condition   ConditionOp
	Value, Mask uint16
	Enabled     bool
	Temporary   bool
	Description string
}

// StepMode selects when the debugger's fetch hook requests a pause.
type StepMode int

const (
	StepModeRun StepMode = iota
	StepModeInto
	StepModeOver
	StepModeOut
)

// BreakpointHitFunc is invoked (synchronously, from the fetch/access
// hook) when a breakpoint fires.
type BreakpointHitFunc func(bp Breakpoint, accessed uint16)

// TraceHitFunc is invoked every time a trace entry is appended.
type TraceHitFunc func(entry TraceEntry)

const traceCapacity = 1024

// TraceEntry captures one instruction's pre-execution state.
type TraceEntry struct {
	PC         uint16
	Opcode     [4]byte
	OpcodeLen  int
	AF, BC, DE, HL   uint16
	AF2, BC2, DE2, HL2 uint16
	IX, IY, SP uint16
	Disasm     string
}

// BreakFlag is implemented by the scheduler; the debugger raises it
// after every hit so the scheduler knows to stop at the next boundary.
type BreakFlag interface {
	Break()
}

// Debugger is the Debugger (C6), installed as the core's Inspector.
type Debugger struct {
	mu sync.Mutex

	core  *z80.Core
	read  func(addr uint16) byte
	brk   BreakFlag

	breakpoints map[int]*Breakpoint
	nextID      int

	stepMode   StepMode
	stepTarget uint16 // StepOver target PC
	stepSP     uint16 // StepOut: SP must exceed this

	traceEnabled bool
	trace        [traceCapacity]TraceEntry
	traceHead    int
	traceCount   int

	onHit   BreakpointHitFunc
	onTrace TraceHitFunc
}

// New installs a debugger on core. readMem lets the debugger read
// instruction bytes and memory for tracing/disassembly without owning
// the bus itself; brk is the scheduler's break-flag sink.
func New(core *z80.Core, readMem func(addr uint16) byte, brk BreakFlag) *Debugger {
	d := &Debugger{
		core:        core,
		read:        readMem,
		brk:         brk,
		breakpoints: make(map[int]*Breakpoint),
		nextID:      1,
	}
	core.SetInspector(d)
	return d
}

// OnBreakpointHit / OnTraceEntry register the two callbacks.
func (d *Debugger) OnBreakpointHit(fn BreakpointHitFunc) { d.onHit = fn }
func (d *Debugger) OnTraceEntry(fn TraceHitFunc)         { d.onTrace = fn }

// AddBreakpoint installs a new breakpoint and returns its id, or -1 if
// the table is already at its 64-entry capacity.
func (d *Debugger) AddBreakpoint(kind Kind, lo, hi uint16, cond ConditionOp, value, mask uint16, temporary bool, description string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.breakpoints) >= maxBreakpoints {
		return -1
	}
	id := d.nextID
	d.nextID++
	d.breakpoints[id] = &Breakpoint{
		ID: id, Kind: kind, Lo: lo, Hi: hi,
		Condition: cond, Value: value, Mask: mask,
		Enabled: true, Temporary: temporary, Description: description,
	}
	return id
}

func (d *Debugger) RemoveBreakpoint(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.breakpoints, id)
}

func (d *Debugger) Enable(id int, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if bp, ok := d.breakpoints[id]; ok {
		bp.Enabled = on
	}
}

// Continue clears the step mode so execution runs free until the next
// breakpoint hit.
func (d *Debugger) Continue() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepMode = StepModeRun
}

func (d *Debugger) StepInto() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepMode = StepModeInto
}

// StepOver arms StepOver if the current opcode is a CALL-family
// instruction, computing its target as PC + instruction length;
// otherwise it behaves exactly like StepInto.
func (d *Debugger) StepOver() {
	d.mu.Lock()
	defer d.mu.Unlock()

	pc := d.core.PC
	op := d.read(pc)
	length, isCall := callInstructionLength(op)
	if !isCall {
		d.stepMode = StepModeInto
		return
	}
	d.stepMode = StepModeOver
	d.stepTarget = pc + uint16(length)
}

func callInstructionLength(op byte) (length int, isCall bool) {
	switch op {
	case 0xCD: // CALL nn
		return 3, true
	case 0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC: // CALL cc,nn
		return 3, true
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST n
		return 1, true
	}
	return 0, false
}

func (d *Debugger) StepOut() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepMode = StepModeOut
	d.stepSP = d.core.SP
}

func (d *Debugger) EnableTrace(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.traceEnabled = on
}

// GetTrace returns the i-th entry in chronological order (0 = oldest
// currently retained).
func (d *Debugger) GetTrace(i int) (TraceEntry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= d.traceCount {
		return TraceEntry{}, false
	}
	start := (d.traceHead - d.traceCount + traceCapacity) % traceCapacity
	return d.trace[(start+i)%traceCapacity], true
}

func (d *Debugger) ClearTrace() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.traceHead, d.traceCount = 0, 0
}

// DumpMemory copies len bytes starting at addr into buffer, returning
// the number of bytes written.
func (d *Debugger) DumpMemory(addr uint16, length int, buffer []byte) int {
	n := 0
	for i := 0; i < length && i < len(buffer); i++ {
		buffer[i] = d.read(addr + uint16(i))
		n++
	}
	return n
}
