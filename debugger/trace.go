package debugger

// appendTrace captures the pre-execution state for the instruction
// about to run at pc into the circular trace buffer. Caller must hold
// d.mu.
func (d *Debugger) appendTrace(pc uint16) {
	entry := TraceEntry{
		PC:   pc,
		AF:   d.core.AF(),
		BC:   d.core.BC(),
		DE:   d.core.DE(),
		HL:   d.core.HL(),
		AF2:  d.core.AF2(),
		BC2:  d.core.BC2(),
		DE2:  d.core.DE2(),
		HL2:  d.core.HL2(),
		IX:   d.core.IX,
		IY:   d.core.IY,
		SP:   d.core.SP,
	}

	raw := make([]byte, 4)
	for i := range raw {
		raw[i] = d.read(pc + uint16(i))
	}
	size, mnemonic := decodeInstruction(raw, pc)
	entry.OpcodeLen = size
	copy(entry.Opcode[:], raw[:size])
	entry.Disasm = mnemonic

	d.trace[d.traceHead] = entry
	d.traceHead = (d.traceHead + 1) % traceCapacity
	if d.traceCount < traceCapacity {
		d.traceCount++
	}
	if d.onTrace != nil {
		d.onTrace(entry)
	}
}
