package z80

// readReg8/writeReg8 decode the 3-bit register field used throughout
// the base opcode map (B,C,D,E,H,L,(HL),A in that order). Under an
// active DD/FD prefix, field 4/5 redirect to IXH/IXL or IYH/IYL
// (documented-but-undocumented) and field 6 redirects to (IX+d)/(IY+d)
// instead of (HL) - this is what makes the same closures registered in
// initBaseOps produce correct DD/FD behaviour without a second table.
// The one documented exception is LD H,(HL)/LD L,(HL)/LD (HL),H/
// LD (HL),L, where the H/L side keeps addressing the real H/L even
// though the (HL) side still redirects; opLDRegReg special-cases that
// pairing with readReg8Plain/writeReg8Plain instead of calling through
// readReg8/writeReg8 on both operands.
func (c *Core) readReg8(code byte) byte {
	switch code {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		if c.prefix == prefixNone {
			return c.H
		}
		return byte(c.indexHighWord() >> 8)
	case 5:
		if c.prefix == prefixNone {
			return c.L
		}
		return byte(c.indexHighWord())
	case 6:
		if c.prefix == prefixNone {
			return c.read(c.HL())
		}
		return c.read(c.indexAddr())
	case 7:
		return c.A
	}
	return 0
}

func (c *Core) writeReg8(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		if c.prefix == prefixNone {
			c.H = value
		} else {
			c.setIndexHighWord((c.indexHighWord() & 0x00FF) | uint16(value)<<8)
		}
	case 5:
		if c.prefix == prefixNone {
			c.L = value
		} else {
			c.setIndexHighWord((c.indexHighWord() & 0xFF00) | uint16(value))
		}
	case 6:
		if c.prefix == prefixNone {
			c.write(c.HL(), value)
		} else {
			c.write(c.indexAddr(), value)
		}
	case 7:
		c.A = value
	}
}

// isMemOperand reports whether reg field code addresses memory under
// the current prefix; used by callers to pick the right cycle cost.
func isMemOperand(code byte) bool { return code == 6 }

func (c *Core) indexHighWord() uint16 {
	if c.prefix == prefixIY {
		return c.IY
	}
	return c.IX
}

func (c *Core) setIndexHighWord(v uint16) {
	if c.prefix == prefixIY {
		c.IY = v
	} else {
		c.IX = v
	}
}

// readReg8Plain/writeReg8Plain never redirect through the active
// prefix; they address the true B,C,D,E,H,L,(HL),A file. CB-prefixed
// bit/shift/rotate opcodes on plain registers use these, since CB
// itself is never combined with DD/FD except via the DDCB/FDCB
// compound form, which has its own addressing rules (always memory).
func (c *Core) readReg8Plain(code byte) byte {
	switch code {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read(c.HL())
	case 7:
		return c.A
	}
	return 0
}

func (c *Core) writeReg8Plain(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		c.H = value
	case 5:
		c.L = value
	case 6:
		c.write(c.HL(), value)
	case 7:
		c.A = value
	}
}

// ldRegRegCycles/ldRegImmCycles/incDecCycles/aluRegCycles return the total T-states for a
// register-field instruction given the field code(s) in play and the
// currently active prefix. These match the well-known Z80 timing
// tables: plain reg=4, (HL)=7/10/11 depending on opcode family,
// prefixed reg (IXH/IXL)=+4, prefixed (IX+d)=19/23 depending on family.
func ldRegRegCycles(prefix prefixKind, dest, src byte) int {
	mem := isMemOperand(dest) || isMemOperand(src)
	switch {
	case prefix != prefixNone && mem:
		return 19
	case prefix != prefixNone:
		return 8
	case mem:
		return 7
	default:
		return 4
	}
}

func ldRegImmCycles(prefix prefixKind, dest byte) int {
	mem := isMemOperand(dest)
	switch {
	case prefix != prefixNone && mem:
		return 19
	case prefix != prefixNone:
		return 11
	case mem:
		return 10
	default:
		return 7
	}
}

func incDecCycles(prefix prefixKind, code byte) int {
	mem := isMemOperand(code)
	switch {
	case prefix != prefixNone && mem:
		return 23
	case prefix != prefixNone:
		return 8
	case mem:
		return 11
	default:
		return 4
	}
}

func aluRegCycles(prefix prefixKind, src byte) int {
	mem := isMemOperand(src)
	switch {
	case prefix != prefixNone && mem:
		return 19
	case prefix != prefixNone:
		return 8
	case mem:
		return 7
	default:
		return 4
	}
}
