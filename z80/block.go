package z80

// Block instructions. Each *_ir/_dr repeating form
// re-decrements PC by 2 when its loop condition still holds so the
// same instruction is re-fetched and re-executed on the next Step,
// costing 21 T-states per non-final iteration and 16 on the
// terminating one (the I/O forms included) - this is what lets an
// interrupt land between iterations of a long LDIR.

func (c *Core) ldTransfer(forward bool) (bcAfter uint16) {
	value := c.read(c.HL())
	c.write(c.DE(), value)
	if forward {
		c.SetHL(c.HL() + 1)
		c.SetDE(c.DE() + 1)
	} else {
		c.SetHL(c.HL() - 1)
		c.SetDE(c.DE() - 1)
	}
	bcAfter = c.BC() - 1
	c.SetBC(bcAfter)

	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, bcAfter != 0)
	n := value + c.A
	c.F &^= flagF3 | flagF5
	if n&0x02 != 0 {
		c.F |= flagF5
	}
	if n&0x08 != 0 {
		c.F |= flagF3
	}
	return bcAfter
}

func (c *Core) ldi() { c.ldTransfer(true); c.tick(16) }
func (c *Core) ldd() { c.ldTransfer(false); c.tick(16) }

func (c *Core) ldir() {
	bc := c.ldTransfer(true)
	if bc != 0 {
		c.PC -= 2
		c.tick(21)
	} else {
		c.tick(16)
	}
}

func (c *Core) lddr() {
	bc := c.ldTransfer(false)
	if bc != 0 {
		c.PC -= 2
		c.tick(21)
	} else {
		c.tick(16)
	}
}

func (c *Core) cpCompare(forward bool) (bcAfter uint16, match bool) {
	value := c.read(c.HL())
	diff := c.A - value
	halfBorrow := (c.A & 0x0F) < (value & 0x0F)
	if forward {
		c.SetHL(c.HL() + 1)
	} else {
		c.SetHL(c.HL() - 1)
	}
	bcAfter = c.BC() - 1
	c.SetBC(bcAfter)

	c.setFlag(flagS, diff&0x80 != 0)
	c.setFlag(flagZ, diff == 0)
	c.setFlag(flagH, halfBorrow)
	c.setFlag(flagN, true)
	c.setFlag(flagPV, bcAfter != 0)

	n := diff
	if halfBorrow {
		n--
	}
	c.F &^= flagF3 | flagF5
	if n&0x02 != 0 {
		c.F |= flagF5
	}
	if n&0x08 != 0 {
		c.F |= flagF3
	}
	return bcAfter, diff == 0
}

func (c *Core) cpi() { c.cpCompare(true); c.tick(16) }
func (c *Core) cpd() { c.cpCompare(false); c.tick(16) }

func (c *Core) cpir() {
	bc, match := c.cpCompare(true)
	if bc != 0 && !match {
		c.PC -= 2
		c.tick(21)
	} else {
		c.tick(16)
	}
}

func (c *Core) cpdr() {
	bc, match := c.cpCompare(false)
	if bc != 0 && !match {
		c.PC -= 2
		c.tick(21)
	} else {
		c.tick(16)
	}
}

// ioBlockFlags applies the documented-undocumented flag formula shared
// by INI/IND/OUTI/OUTD, per Sean Young's Z80 undocumented-flags notes.
func (c *Core) ioBlockFlags(value byte, newB byte, k int) {
	c.setFlag(flagN, value&0x80 != 0)
	c.setFlag(flagC, k > 255)
	c.setFlag(flagH, k > 255)
	c.setFlag(flagPV, parity(byte(k&7)^newB))
	c.setFlag(flagS, newB&0x80 != 0)
	c.setFlag(flagZ, newB == 0)
	c.F = (c.F &^ (flagF3 | flagF5)) | (newB & (flagF3 | flagF5))
}

func (c *Core) ini() {
	value := c.in(c.BC())
	c.write(c.HL(), value)
	c.SetHL(c.HL() + 1)
	newB := c.B - 1
	c.B = newB
	k := int(value) + int((c.C+1)&0xFF)
	c.ioBlockFlags(value, newB, k)
	c.tick(16)
}

func (c *Core) ind() {
	value := c.in(c.BC())
	c.write(c.HL(), value)
	c.SetHL(c.HL() - 1)
	newB := c.B - 1
	c.B = newB
	k := int(value) + int((c.C-1)&0xFF)
	c.ioBlockFlags(value, newB, k)
	c.tick(16)
}

func (c *Core) inir() {
	c.ini()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *Core) indr() {
	c.ind()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *Core) outi() {
	value := c.read(c.HL())
	c.SetHL(c.HL() + 1)
	newB := c.B - 1
	c.B = newB
	c.out(c.BC(), value)
	k := int(value) + int(c.L)
	c.ioBlockFlags(value, newB, k)
	c.tick(16)
}

func (c *Core) outd() {
	value := c.read(c.HL())
	c.SetHL(c.HL() - 1)
	newB := c.B - 1
	c.B = newB
	c.out(c.BC(), value)
	k := int(value) + int(c.L)
	c.ioBlockFlags(value, newB, k)
	c.tick(16)
}

func (c *Core) otir() {
	c.outi()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *Core) otdr() {
	c.outd()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}
