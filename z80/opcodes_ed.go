package z80

// readRP/writeRP index the four 16-bit register pairs BC,DE,HL,SP used by
// the ED ADC/SBC/LD(nn) families, selected by bits 4-5 of the opcode.
func (c *Core) readRP(code byte) uint16 {
	switch code {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *Core) writeRP(code byte, v uint16) {
	switch code {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

func (c *Core) initEDOps() {
	for i := range c.edOps {
		// Undefined ED opcodes behave as an 8 T-state NOP on real
		// hardware (the NONI+NOP quirk); still a "defined" behaviour
		//, not an error.
		c.edOps[i] = func(cpu *Core) { cpu.tick(8) }
	}

	for row := byte(0); row < 8; row++ {
		reg := row
		c.edOps[0x40+row*8] = func(cpu *Core) { cpu.opINReg(reg) }
		c.edOps[0x41+row*8] = func(cpu *Core) { cpu.opOUTReg(reg) }
	}
	// ED 0x70/0x71 are the undocumented IN F,(C) / OUT (C),0 forms.
	c.edOps[0x70] = func(cpu *Core) {
		v := cpu.in(cpu.BC())
		cpu.setFlag(flagPV, parity(v))
		cpu.setFlag(flagH, false)
		cpu.setFlag(flagN, false)
		cpu.sz53(v)
		cpu.tick(12)
	}
	c.edOps[0x71] = func(cpu *Core) { cpu.out(cpu.BC(), 0); cpu.tick(12) }

	for row := byte(0); row < 4; row++ {
		rp := row
		c.edOps[0x42+row*0x10] = func(cpu *Core) { cpu.sbcHL(cpu.readRP(rp)); cpu.tick(15) }
		c.edOps[0x4A+row*0x10] = func(cpu *Core) { cpu.adcHL(cpu.readRP(rp)); cpu.tick(15) }
		c.edOps[0x43+row*0x10] = func(cpu *Core) {
			addr := cpu.fetchWord()
			v := cpu.readRP(rp)
			cpu.write(addr, byte(v))
			cpu.write(addr+1, byte(v>>8))
			cpu.tick(20)
		}
		c.edOps[0x4B+row*0x10] = func(cpu *Core) {
			addr := cpu.fetchWord()
			lo := cpu.read(addr)
			hi := cpu.read(addr + 1)
			cpu.writeRP(rp, uint16(hi)<<8|uint16(lo))
			cpu.tick(20)
		}
	}

	for _, op := range []byte{0x44, 0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C} {
		c.edOps[op] = (*Core).opNEG
	}
	for _, op := range []byte{0x45, 0x55, 0x5D, 0x65, 0x6D, 0x75, 0x7D} {
		c.edOps[op] = (*Core).opRETN
	}
	c.edOps[0x4D] = (*Core).opRETI

	for _, op := range []byte{0x46, 0x4E, 0x66, 0x6E} {
		c.edOps[op] = func(cpu *Core) { cpu.IM = 0; cpu.tick(8) }
	}
	c.edOps[0x56] = func(cpu *Core) { c.IM = 1; cpu.tick(8) }
	c.edOps[0x76] = func(cpu *Core) { c.IM = 1; cpu.tick(8) }
	c.edOps[0x5E] = func(cpu *Core) { c.IM = 2; cpu.tick(8) }
	c.edOps[0x7E] = func(cpu *Core) { c.IM = 2; cpu.tick(8) }

	c.edOps[0x47] = func(cpu *Core) { cpu.I = cpu.A; cpu.tick(9) }
	c.edOps[0x4F] = func(cpu *Core) { cpu.R = cpu.A; cpu.tick(9) }
	c.edOps[0x57] = func(cpu *Core) { cpu.opLDAI() }
	c.edOps[0x5F] = func(cpu *Core) { cpu.opLDAR() }

	c.edOps[0x67] = (*Core).opRRD
	c.edOps[0x6F] = (*Core).opRLD

	c.edOps[0xA0] = func(cpu *Core) { cpu.ldi() }
	c.edOps[0xA8] = func(cpu *Core) { cpu.ldd() }
	c.edOps[0xB0] = func(cpu *Core) { cpu.ldir() }
	c.edOps[0xB8] = func(cpu *Core) { cpu.lddr() }
	c.edOps[0xA1] = func(cpu *Core) { cpu.cpi() }
	c.edOps[0xA9] = func(cpu *Core) { cpu.cpd() }
	c.edOps[0xB1] = func(cpu *Core) { cpu.cpir() }
	c.edOps[0xB9] = func(cpu *Core) { cpu.cpdr() }
	c.edOps[0xA2] = func(cpu *Core) { cpu.ini() }
	c.edOps[0xAA] = func(cpu *Core) { cpu.ind() }
	c.edOps[0xB2] = func(cpu *Core) { cpu.inir() }
	c.edOps[0xBA] = func(cpu *Core) { cpu.indr() }
	c.edOps[0xA3] = func(cpu *Core) { cpu.outi() }
	c.edOps[0xAB] = func(cpu *Core) { cpu.outd() }
	c.edOps[0xB3] = func(cpu *Core) { cpu.otir() }
	c.edOps[0xBB] = func(cpu *Core) { cpu.otdr() }
}

func (c *Core) opEDPrefix() {
	opcode := c.fetchOpcode()
	c.edOps[opcode](c)
}

func (c *Core) opINReg(reg byte) {
	v := c.in(c.BC())
	c.writeReg8Plain(reg, v)
	c.setFlag(flagPV, parity(v))
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.sz53(v)
	c.tick(12)
}

func (c *Core) opOUTReg(reg byte) {
	c.out(c.BC(), c.readReg8Plain(reg))
	c.tick(12)
}

func (c *Core) opNEG() {
	v := c.A
	c.A = 0
	c.performALU(aluSub, v)
	c.tick(8)
}

func (c *Core) opRETN() {
	c.IFF1 = c.IFF2
	c.PC = c.popWord()
	c.tick(14)
}

func (c *Core) opRETI() {
	c.IFF1 = c.IFF2
	c.PC = c.popWord()
	c.tick(14)
}

func (c *Core) opLDAI() {
	c.A = c.I
	c.setFlag(flagS, c.A&0x80 != 0)
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, c.IFF2)
	c.F = (c.F &^ (flagF3 | flagF5)) | (c.A & (flagF3 | flagF5))
	c.tick(9)
}

func (c *Core) opLDAR() {
	c.A = c.R
	c.setFlag(flagS, c.A&0x80 != 0)
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, c.IFF2)
	c.F = (c.F &^ (flagF3 | flagF5)) | (c.A & (flagF3 | flagF5))
	c.tick(9)
}

func (c *Core) opRRD() {
	addr := c.HL()
	m := c.read(addr)
	result := (c.A&0x0F)<<4 | (m >> 4)
	c.A = (c.A & 0xF0) | (m & 0x0F)
	c.write(addr, result)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, parity(c.A))
	c.sz53(c.A)
	c.tick(18)
}

func (c *Core) opRLD() {
	addr := c.HL()
	m := c.read(addr)
	result := (m<<4 | c.A&0x0F) & 0xFF
	newA := (c.A & 0xF0) | (m >> 4)
	c.write(addr, result)
	c.A = newA
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, parity(c.A))
	c.sz53(c.A)
	c.tick(18)
}
