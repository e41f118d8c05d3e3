package z80

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// StateTag and StateSchemaVersion identify this component's save-state
// region; the save-state package matches regions by tag,
// not by position.
const (
	StateTag           = 0x5A383043 // "Z80C"
	StateSchemaVersion = 1
)

// Tag and SchemaVersion implement savestate.StateComponent.
func (c *Core) Tag() uint32           { return StateTag }
func (c *Core) SchemaVersion() uint32 { return StateSchemaVersion }

// SaveState serializes every architectural register, the interrupt
// latches and the cycle counter.
func (c *Core) SaveState() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var buf bytes.Buffer
	regs := []byte{
		c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L,
		c.A2, c.F2, c.B2, c.C2, c.D2, c.E2, c.H2, c.L2,
		c.I, c.R, c.IM,
	}
	buf.Write(regs)
	_ = binary.Write(&buf, binary.LittleEndian, c.IX)
	_ = binary.Write(&buf, binary.LittleEndian, c.IY)
	_ = binary.Write(&buf, binary.LittleEndian, c.SP)
	_ = binary.Write(&buf, binary.LittleEndian, c.PC)
	_ = binary.Write(&buf, binary.LittleEndian, c.Cycles)

	flags := byte(0)
	if c.IFF1 {
		flags |= 1 << 0
	}
	if c.IFF2 {
		flags |= 1 << 1
	}
	if c.state == StateHalted {
		flags |= 1 << 2
	}
	if c.intLine {
		flags |= 1 << 3
	}
	if c.nmiLine {
		flags |= 1 << 4
	}
	if c.nmiLatched {
		flags |= 1 << 5
	}
	if c.eiShadow {
		flags |= 1 << 6
	}
	buf.WriteByte(flags)
	buf.WriteByte(c.intData)

	return buf.Bytes(), nil
}

const z80StateBodyLen = 19 + 2 + 2 + 2 + 2 + 8 + 1 + 1

// LoadState restores a Core from a blob produced by SaveState. It
// refuses truncated bodies and leaves the core untouched in that case
//.
func (c *Core) LoadState(data []byte) error {
	if len(data) < z80StateBodyLen {
		return fmt.Errorf("z80: save-state body too short: got %d want %d", len(data), z80StateBodyLen)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	r := bytes.NewReader(data)
	regs := make([]byte, 19)
	_, _ = r.Read(regs)
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = regs[0], regs[1], regs[2], regs[3], regs[4], regs[5], regs[6], regs[7]
	c.A2, c.F2, c.B2, c.C2, c.D2, c.E2, c.H2, c.L2 = regs[8], regs[9], regs[10], regs[11], regs[12], regs[13], regs[14], regs[15]
	c.I, c.R, c.IM = regs[16], regs[17], regs[18]

	_ = binary.Read(r, binary.LittleEndian, &c.IX)
	_ = binary.Read(r, binary.LittleEndian, &c.IY)
	_ = binary.Read(r, binary.LittleEndian, &c.SP)
	_ = binary.Read(r, binary.LittleEndian, &c.PC)
	_ = binary.Read(r, binary.LittleEndian, &c.Cycles)

	flags, _ := r.ReadByte()
	intData, _ := r.ReadByte()

	c.IFF1 = flags&(1<<0) != 0
	c.IFF2 = flags&(1<<1) != 0
	if flags&(1<<2) != 0 {
		c.state = StateHalted
	} else {
		c.state = StateRunning
	}
	c.intLine = flags&(1<<3) != 0
	c.nmiLine = flags&(1<<4) != 0
	c.nmiLatched = flags&(1<<5) != 0
	c.eiShadow = flags&(1<<6) != 0
	c.intData = intData

	c.nmiEdgePrev = c.nmiLine
	c.prefix = prefixNone
	c.dispFetched = false

	return nil
}
