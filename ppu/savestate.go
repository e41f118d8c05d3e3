package ppu

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	StateTag           = 0x50505543 // "PPUC"
	StateSchemaVersion = 1
)

func (c *Core) Tag() uint32           { return StateTag }
func (c *Core) SchemaVersion() uint32 { return StateSchemaVersion }

// SaveState serializes the dot/scanline machine, the register file and
// the active family's substate, tagged by family id so LoadState can
// refuse a save produced by a differently-configured Core. Framebuffer
// contents are intentionally not serialized; they regenerate on the
// next frame.
func (c *Core) SaveState() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, int32(c.family))
	_ = binary.Write(&buf, binary.LittleEndian, int32(c.dot))
	_ = binary.Write(&buf, binary.LittleEndian, int32(c.scanline))
	_ = binary.Write(&buf, binary.LittleEndian, c.frameCount)
	flags := byte(0)
	if c.inVBlank {
		flags |= 1 << 0
	}
	if c.frameReady {
		flags |= 1 << 1
	}
	buf.WriteByte(flags)
	buf.Write(c.registers[:])

	switch c.family {
	case FamilyNES:
		_ = binary.Write(&buf, binary.LittleEndian, c.nes.V)
		_ = binary.Write(&buf, binary.LittleEndian, c.nes.T)
		buf.WriteByte(c.nes.X)
		buf.WriteByte(boolByte(c.nes.W))
		buf.WriteByte(boolByte(c.nes.Sprite0Hit))
		buf.WriteByte(boolByte(c.nes.NMIOccurred))
	case FamilySNES:
		buf.WriteByte(c.snes.Brightness)
		buf.WriteByte(c.snes.Mode)
		buf.WriteByte(c.snes.Mosaic)
	case FamilyGenesisVDP:
		buf.WriteByte(c.genesis.CodeRegister)
		_ = binary.Write(&buf, binary.LittleEndian, c.genesis.Status)
		_ = binary.Write(&buf, binary.LittleEndian, c.genesis.AddressReg)
		_ = binary.Write(&buf, binary.LittleEndian, c.genesis.DMALength)
		_ = binary.Write(&buf, binary.LittleEndian, c.genesis.DMASource)
		buf.WriteByte(boolByte(c.genesis.DMAPending))
	case FamilyGameBoy:
		buf.WriteByte(c.gameboy.LCDC)
		buf.WriteByte(c.gameboy.STAT)
		buf.WriteByte(c.gameboy.SCX)
		buf.WriteByte(c.gameboy.SCY)
		buf.WriteByte(c.gameboy.WX)
		buf.WriteByte(c.gameboy.WY)
		buf.WriteByte(c.gameboy.LY)
		buf.WriteByte(c.gameboy.LYC)
	}

	return buf.Bytes(), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

const ppuStateFixedLen = 4 + 4 + 4 + 8 + 1 + 256

// familySubstateLen returns the number of trailing bytes LoadState reads
// for family beyond ppuStateFixedLen, matching the fields SaveState
// writes in its own family switch.
func familySubstateLen(family Family) int {
	switch family {
	case FamilyNES:
		return 2 + 2 + 1 + 1 + 1 + 1 // V, T, X, W, Sprite0Hit, NMIOccurred
	case FamilySNES:
		return 1 + 1 + 1 // Brightness, Mode, Mosaic
	case FamilyGenesisVDP:
		return 1 + 2 + 2 + 2 + 4 + 1 // CodeRegister, Status, AddressReg, DMALength, DMASource, DMAPending
	case FamilyGameBoy:
		return 8 // LCDC, STAT, SCX, SCY, WX, WY, LY, LYC
	}
	return 0
}

// LoadState restores the dot/scanline machine, registers and the
// family substate matching the tagged family id. A family mismatch
// between the blob and this Core is refused, matching the
// SchemaMismatch policy of leaving the target state unchanged. The
// length check covers the full body, fixed header plus the active
// family's variable-length tail, so a truncated blob is refused
// up front instead of silently leaving the tail's fields zeroed.
func (c *Core) LoadState(data []byte) error {
	if len(data) < ppuStateFixedLen {
		return fmt.Errorf("ppu: save-state body too short: got %d want at least %d", len(data), ppuStateFixedLen)
	}

	r := bytes.NewReader(data)
	var family, dot, scanline int32
	_ = binary.Read(r, binary.LittleEndian, &family)
	_ = binary.Read(r, binary.LittleEndian, &dot)
	_ = binary.Read(r, binary.LittleEndian, &scanline)

	if Family(family) != c.family {
		return fmt.Errorf("ppu: save-state family %d does not match configured family %d", family, c.family)
	}

	if wantLen := ppuStateFixedLen + familySubstateLen(c.family); len(data) < wantLen {
		return fmt.Errorf("ppu: save-state body too short: got %d want at least %d", len(data), wantLen)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dot = int(dot)
	c.scanline = int(scanline)
	_ = binary.Read(r, binary.LittleEndian, &c.frameCount)
	flags, _ := r.ReadByte()
	c.inVBlank = flags&(1<<0) != 0
	c.frameReady = flags&(1<<1) != 0
	regs := make([]byte, 256)
	_, _ = r.Read(regs)
	copy(c.registers[:], regs)

	switch c.family {
	case FamilyNES:
		_ = binary.Read(r, binary.LittleEndian, &c.nes.V)
		_ = binary.Read(r, binary.LittleEndian, &c.nes.T)
		c.nes.X, _ = r.ReadByte()
		w, _ := r.ReadByte()
		s0, _ := r.ReadByte()
		nmi, _ := r.ReadByte()
		c.nes.W, c.nes.Sprite0Hit, c.nes.NMIOccurred = w != 0, s0 != 0, nmi != 0
	case FamilySNES:
		c.snes.Brightness, _ = r.ReadByte()
		c.snes.Mode, _ = r.ReadByte()
		c.snes.Mosaic, _ = r.ReadByte()
	case FamilyGenesisVDP:
		c.genesis.CodeRegister, _ = r.ReadByte()
		_ = binary.Read(r, binary.LittleEndian, &c.genesis.Status)
		_ = binary.Read(r, binary.LittleEndian, &c.genesis.AddressReg)
		_ = binary.Read(r, binary.LittleEndian, &c.genesis.DMALength)
		_ = binary.Read(r, binary.LittleEndian, &c.genesis.DMASource)
		pending, _ := r.ReadByte()
		c.genesis.DMAPending = pending != 0
	case FamilyGameBoy:
		c.gameboy.LCDC, _ = r.ReadByte()
		c.gameboy.STAT, _ = r.ReadByte()
		c.gameboy.SCX, _ = r.ReadByte()
		c.gameboy.SCY, _ = r.ReadByte()
		c.gameboy.WX, _ = r.ReadByte()
		c.gameboy.WY, _ = r.ReadByte()
		c.gameboy.LY, _ = r.ReadByte()
		c.gameboy.LYC, _ = r.ReadByte()
	}

	return nil
}
