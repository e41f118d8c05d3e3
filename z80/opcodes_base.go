package z80

// condition evaluates one of the eight condition codes encoded in bits
// 3-5 of a conditional JP/JR/CALL/RET opcode: NZ,Z,NC,C,PO,PE,P,M.
func (c *Core) condition(code byte) bool {
	switch code {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	case 3:
		return c.flag(flagC)
	case 4:
		return !c.flag(flagPV)
	case 5:
		return c.flag(flagPV)
	case 6:
		return !c.flag(flagS)
	case 7:
		return c.flag(flagS)
	}
	return false
}

func (c *Core) initBaseOps() {
	for i := range c.baseOps {
		c.baseOps[i] = (*Core).opUnimplemented
	}

	c.baseOps[0x00] = (*Core).opNOP
	c.baseOps[0x76] = (*Core).opHALT

	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			continue
		}
		dest := byte((op >> 3) & 7)
		src := byte(op & 7)
		c.baseOps[op] = func(cpu *Core) { cpu.opLDRegReg(dest, src) }
	}

	ldImm := map[byte]byte{0x06: 0, 0x0E: 1, 0x16: 2, 0x1E: 3, 0x26: 4, 0x2E: 5, 0x36: 6, 0x3E: 7}
	for op, reg := range ldImm {
		dest := reg
		c.baseOps[op] = func(cpu *Core) { cpu.opLDRegImm(dest) }
	}

	aluBases := []struct {
		base byte
		op   aluOp
	}{{0x80, aluAdd}, {0x88, aluAdc}, {0x90, aluSub}, {0x98, aluSbc}, {0xA0, aluAnd}, {0xA8, aluXor}, {0xB0, aluOr}, {0xB8, aluCp}}
	for _, ab := range aluBases {
		for src := byte(0); src < 8; src++ {
			op := ab.op
			s := src
			c.baseOps[ab.base+src] = func(cpu *Core) { cpu.opALUReg(op, s) }
		}
	}

	incDecReg := map[byte]byte{0x04: 0, 0x0C: 1, 0x14: 2, 0x1C: 3, 0x24: 4, 0x2C: 5, 0x34: 6, 0x3C: 7}
	for op, reg := range incDecReg {
		r := reg
		c.baseOps[op] = func(cpu *Core) { cpu.opINCReg(r) }
	}
	decReg := map[byte]byte{0x05: 0, 0x0D: 1, 0x15: 2, 0x1D: 3, 0x25: 4, 0x2D: 5, 0x35: 6, 0x3D: 7}
	for op, reg := range decReg {
		r := reg
		c.baseOps[op] = func(cpu *Core) { cpu.opDECReg(r) }
	}

	c.baseOps[0xC6] = func(cpu *Core) { cpu.opALUImm(aluAdd) }
	c.baseOps[0xCE] = func(cpu *Core) { cpu.opALUImm(aluAdc) }
	c.baseOps[0xD6] = func(cpu *Core) { cpu.opALUImm(aluSub) }
	c.baseOps[0xDE] = func(cpu *Core) { cpu.opALUImm(aluSbc) }
	c.baseOps[0xE6] = func(cpu *Core) { cpu.opALUImm(aluAnd) }
	c.baseOps[0xEE] = func(cpu *Core) { cpu.opALUImm(aluXor) }
	c.baseOps[0xF6] = func(cpu *Core) { cpu.opALUImm(aluOr) }
	c.baseOps[0xFE] = func(cpu *Core) { cpu.opALUImm(aluCp) }

	c.baseOps[0x27] = (*Core).opDAA
	c.baseOps[0x2F] = (*Core).opCPL
	c.baseOps[0x37] = (*Core).opSCF
	c.baseOps[0x3F] = (*Core).opCCF

	c.baseOps[0x01] = (*Core).opLDBCNN
	c.baseOps[0x11] = (*Core).opLDDENN
	c.baseOps[0x21] = (*Core).opLDHLNN
	c.baseOps[0x31] = (*Core).opLDSPNN
	c.baseOps[0x09] = func(cpu *Core) { cpu.setActiveHL(cpu.addHL16(cpu.activeHL(), cpu.BC())); cpu.tick(11) }
	c.baseOps[0x19] = func(cpu *Core) { cpu.setActiveHL(cpu.addHL16(cpu.activeHL(), cpu.DE())); cpu.tick(11) }
	c.baseOps[0x29] = func(cpu *Core) { hl := cpu.activeHL(); cpu.setActiveHL(cpu.addHL16(hl, hl)); cpu.tick(11) }
	c.baseOps[0x39] = func(cpu *Core) { cpu.setActiveHL(cpu.addHL16(cpu.activeHL(), cpu.SP)); cpu.tick(11) }
	c.baseOps[0x03] = func(cpu *Core) { cpu.SetBC(cpu.BC() + 1); cpu.tick(6) }
	c.baseOps[0x13] = func(cpu *Core) { cpu.SetDE(cpu.DE() + 1); cpu.tick(6) }
	c.baseOps[0x23] = func(cpu *Core) { cpu.setActiveHL(cpu.activeHL() + 1); cpu.tick(indexedCycles(cpu.prefix, 6, 10)) }
	c.baseOps[0x33] = func(cpu *Core) { cpu.SP++; cpu.tick(6) }
	c.baseOps[0x0B] = func(cpu *Core) { cpu.SetBC(cpu.BC() - 1); cpu.tick(6) }
	c.baseOps[0x1B] = func(cpu *Core) { cpu.SetDE(cpu.DE() - 1); cpu.tick(6) }
	c.baseOps[0x2B] = func(cpu *Core) { cpu.setActiveHL(cpu.activeHL() - 1); cpu.tick(indexedCycles(cpu.prefix, 6, 10)) }
	c.baseOps[0x3B] = func(cpu *Core) { cpu.SP--; cpu.tick(6) }

	c.baseOps[0xC5] = func(cpu *Core) { cpu.pushWord(cpu.BC()); cpu.tick(11) }
	c.baseOps[0xD5] = func(cpu *Core) { cpu.pushWord(cpu.DE()); cpu.tick(11) }
	c.baseOps[0xE5] = func(cpu *Core) { cpu.pushWord(cpu.activeHL()); cpu.tick(indexedCycles(cpu.prefix, 11, 15)) }
	c.baseOps[0xF5] = func(cpu *Core) { cpu.pushWord(cpu.AF()); cpu.tick(11) }
	c.baseOps[0xC1] = func(cpu *Core) { cpu.SetBC(cpu.popWord()); cpu.tick(10) }
	c.baseOps[0xD1] = func(cpu *Core) { cpu.SetDE(cpu.popWord()); cpu.tick(10) }
	c.baseOps[0xE1] = func(cpu *Core) { cpu.setActiveHL(cpu.popWord()); cpu.tick(indexedCycles(cpu.prefix, 10, 14)) }
	c.baseOps[0xF1] = func(cpu *Core) { cpu.SetAF(cpu.popWord()); cpu.tick(10) }

	c.baseOps[0xC3] = (*Core).opJPNN
	c.baseOps[0x18] = (*Core).opJR
	c.baseOps[0x10] = (*Core).opDJNZ
	c.baseOps[0xCD] = (*Core).opCALLNN
	c.baseOps[0xC9] = (*Core).opRET
	c.baseOps[0xE3] = (*Core).opEXSPHL
	c.baseOps[0x08] = func(cpu *Core) { cpu.ExAF(); cpu.tick(4) }
	c.baseOps[0xEB] = func(cpu *Core) { cpu.H, cpu.D = cpu.D, cpu.H; cpu.L, cpu.E = cpu.E, cpu.L; cpu.tick(4) }
	c.baseOps[0xD9] = func(cpu *Core) { cpu.Exx(); cpu.tick(4) }
	c.baseOps[0xE9] = func(cpu *Core) { cpu.PC = cpu.activeHL(); cpu.tick(indexedCycles(cpu.prefix, 4, 8)) }
	c.baseOps[0x22] = (*Core).opLDNNHL
	c.baseOps[0x2A] = (*Core).opLDHLNNMem
	c.baseOps[0x32] = (*Core).opLDNNA
	c.baseOps[0x3A] = (*Core).opLDANN
	c.baseOps[0x02] = func(cpu *Core) { cpu.write(cpu.BC(), cpu.A); cpu.tick(7) }
	c.baseOps[0x0A] = func(cpu *Core) { cpu.A = cpu.read(cpu.BC()); cpu.tick(7) }
	c.baseOps[0x12] = func(cpu *Core) { cpu.write(cpu.DE(), cpu.A); cpu.tick(7) }
	c.baseOps[0x1A] = func(cpu *Core) { cpu.A = cpu.read(cpu.DE()); cpu.tick(7) }
	c.baseOps[0xF9] = func(cpu *Core) { cpu.SP = cpu.activeHL(); cpu.tick(indexedCycles(cpu.prefix, 6, 10)) }
	c.baseOps[0xD3] = func(cpu *Core) { n := cpu.fetchByte(); cpu.out(uint16(cpu.A)<<8|uint16(n), cpu.A); cpu.tick(11) }
	c.baseOps[0xDB] = func(cpu *Core) { n := cpu.fetchByte(); cpu.A = cpu.in(uint16(cpu.A)<<8 | uint16(n)); cpu.tick(11) }

	c.baseOps[0x07] = (*Core).opRLCA
	c.baseOps[0x0F] = (*Core).opRRCA
	c.baseOps[0x17] = (*Core).opRLA
	c.baseOps[0x1F] = (*Core).opRRA

	for n := byte(0); n < 8; n++ {
		addr := uint16(n) * 8
		c.baseOps[0xC7+n*8] = func(cpu *Core) { cpu.opRST(addr) }
	}

	c.baseOps[0xC2] = (*Core).opJPCC
	c.baseOps[0xCA] = (*Core).opJPCC
	c.baseOps[0xD2] = (*Core).opJPCC
	c.baseOps[0xDA] = (*Core).opJPCC
	c.baseOps[0xE2] = (*Core).opJPCC
	c.baseOps[0xEA] = (*Core).opJPCC
	c.baseOps[0xF2] = (*Core).opJPCC
	c.baseOps[0xFA] = (*Core).opJPCC

	c.baseOps[0x20] = (*Core).opJRCC
	c.baseOps[0x28] = (*Core).opJRCC
	c.baseOps[0x30] = (*Core).opJRCC
	c.baseOps[0x38] = (*Core).opJRCC

	c.baseOps[0xC4] = (*Core).opCALLCC
	c.baseOps[0xCC] = (*Core).opCALLCC
	c.baseOps[0xD4] = (*Core).opCALLCC
	c.baseOps[0xDC] = (*Core).opCALLCC
	c.baseOps[0xE4] = (*Core).opCALLCC
	c.baseOps[0xEC] = (*Core).opCALLCC
	c.baseOps[0xF4] = (*Core).opCALLCC
	c.baseOps[0xFC] = (*Core).opCALLCC

	c.baseOps[0xC0] = (*Core).opRETCC
	c.baseOps[0xC8] = (*Core).opRETCC
	c.baseOps[0xD0] = (*Core).opRETCC
	c.baseOps[0xD8] = (*Core).opRETCC
	c.baseOps[0xE0] = (*Core).opRETCC
	c.baseOps[0xE8] = (*Core).opRETCC
	c.baseOps[0xF0] = (*Core).opRETCC
	c.baseOps[0xF8] = (*Core).opRETCC

	c.baseOps[0xCB] = (*Core).opCBPrefix
	c.baseOps[0xDD] = func(cpu *Core) { cpu.dispatchIndexPrefix(prefixIX) }
	c.baseOps[0xFD] = func(cpu *Core) { cpu.dispatchIndexPrefix(prefixIY) }
	c.baseOps[0xED] = (*Core).opEDPrefix
	c.baseOps[0xF3] = func(cpu *Core) { cpu.IFF1, cpu.IFF2 = false, false; cpu.tick(4) }
	c.baseOps[0xFB] = (*Core).opEI
}

// indexedCycles picks the cost of a 16-bit-register opcode depending
// on whether it is currently redirected onto IX/IY (adds 4 T-states
// for the prefix byte's own fetch).
func indexedCycles(prefix prefixKind, base, indexed int) int {
	if prefix == prefixNone {
		return base
	}
	return indexed
}

func (c *Core) opUnimplemented() { c.tick(4) }
func (c *Core) opNOP()           { c.tick(4) }

func (c *Core) opHALT() {
	c.state = StateHalted
	c.tick(4)
}

func (c *Core) opLDRegReg(dest, src byte) {
	// LD H,(HL)/LD L,(HL)/LD (HL),H/LD (HL),L keep addressing the real
	// H/L even under an active DD/FD prefix: the prefix still redirects
	// the (HL) side to (IX+d)/(IY+d) as usual, but the one register
	// side of this particular pairing is the documented exception that
	// is never redirected to IXH/IXL/IYH/IYL.
	mixedHLPair := (dest == 6) != (src == 6) && (dest == 4 || dest == 5 || src == 4 || src == 5)

	var value byte
	if mixedHLPair && src != 6 {
		value = c.readReg8Plain(src)
	} else {
		value = c.readReg8(src)
	}
	if mixedHLPair && dest != 6 {
		c.writeReg8Plain(dest, value)
	} else {
		c.writeReg8(dest, value)
	}
	c.tick(ldRegRegCycles(c.prefix, dest, src))
}

func (c *Core) opLDRegImm(dest byte) {
	// LD (IX+d),n / LD (IY+d),n carries two trailing bytes, displacement
	// then immediate, so the usual "fetch value, then resolve the
	// destination address" order of opLDRegImm would read them swapped;
	// the address must be resolved first here.
	if dest == 6 && c.prefix != prefixNone {
		addr := c.indexAddr()
		value := c.fetchByte()
		c.write(addr, value)
		c.tick(ldRegImmCycles(c.prefix, dest))
		return
	}
	value := c.fetchByte()
	c.writeReg8(dest, value)
	c.tick(ldRegImmCycles(c.prefix, dest))
}

func (c *Core) opALUReg(op aluOp, src byte) {
	value := c.readReg8(src)
	c.performALU(op, value)
	c.tick(aluRegCycles(c.prefix, src))
}

func (c *Core) opALUImm(op aluOp) {
	value := c.fetchByte()
	c.performALU(op, value)
	c.tick(7)
}

func (c *Core) opINCReg(reg byte) {
	c.writeReg8(reg, c.inc8(c.readReg8(reg)))
	c.tick(incDecCycles(c.prefix, reg))
}

func (c *Core) opDECReg(reg byte) {
	c.writeReg8(reg, c.dec8(c.readReg8(reg)))
	c.tick(incDecCycles(c.prefix, reg))
}

func (c *Core) opDAA() { c.daa(); c.tick(4) }

func (c *Core) opCPL() {
	c.A = ^c.A
	c.F = (c.F & (flagS | flagZ | flagPV | flagC)) | flagH | flagN
	c.F |= c.A & (flagF3 | flagF5)
	c.tick(4)
}

func (c *Core) opSCF() {
	c.F = (c.F & (flagS | flagZ | flagPV)) | flagC
	c.F |= c.A & (flagF3 | flagF5)
	c.tick(4)
}

func (c *Core) opCCF() {
	wasC := c.flag(flagC)
	c.F = (c.F & (flagS | flagZ | flagPV)) | (c.A & (flagF3 | flagF5))
	c.setFlag(flagC, !wasC)
	c.setFlag(flagH, wasC)
	c.tick(4)
}

func (c *Core) opLDBCNN() { c.SetBC(c.fetchWord()); c.tick(10) }
func (c *Core) opLDDENN() { c.SetDE(c.fetchWord()); c.tick(10) }
func (c *Core) opLDHLNN() { c.setActiveHL(c.fetchWord()); c.tick(indexedCycles(c.prefix, 10, 14)) }
func (c *Core) opLDSPNN() { c.SP = c.fetchWord(); c.tick(10) }

func (c *Core) opLDNNHL() {
	addr := c.fetchWord()
	v := c.activeHL()
	c.write(addr, byte(v))
	c.write(addr+1, byte(v>>8))
	c.tick(indexedCycles(c.prefix, 16, 20))
}

func (c *Core) opLDHLNNMem() {
	addr := c.fetchWord()
	lo := c.read(addr)
	hi := c.read(addr + 1)
	c.setActiveHL(uint16(hi)<<8 | uint16(lo))
	c.tick(indexedCycles(c.prefix, 16, 20))
}

func (c *Core) opLDNNA() {
	addr := c.fetchWord()
	c.write(addr, c.A)
	c.tick(13)
}

func (c *Core) opLDANN() {
	addr := c.fetchWord()
	c.A = c.read(addr)
	c.tick(13)
}

func (c *Core) opRLCA() {
	carry := c.A&0x80 != 0
	c.A = c.A<<1 | c.A>>7
	c.setFlag(flagC, carry)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.F = (c.F &^ (flagF3 | flagF5)) | (c.A & (flagF3 | flagF5))
	c.tick(4)
}

func (c *Core) opRRCA() {
	carry := c.A&0x01 != 0
	c.A = c.A>>1 | c.A<<7
	c.setFlag(flagC, carry)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.F = (c.F &^ (flagF3 | flagF5)) | (c.A & (flagF3 | flagF5))
	c.tick(4)
}

func (c *Core) opRLA() {
	oldCarry := byte(0)
	if c.flag(flagC) {
		oldCarry = 1
	}
	carry := c.A&0x80 != 0
	c.A = c.A<<1 | oldCarry
	c.setFlag(flagC, carry)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.F = (c.F &^ (flagF3 | flagF5)) | (c.A & (flagF3 | flagF5))
	c.tick(4)
}

func (c *Core) opRRA() {
	oldCarry := byte(0)
	if c.flag(flagC) {
		oldCarry = 0x80
	}
	carry := c.A&0x01 != 0
	c.A = c.A>>1 | oldCarry
	c.setFlag(flagC, carry)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.F = (c.F &^ (flagF3 | flagF5)) | (c.A & (flagF3 | flagF5))
	c.tick(4)
}

func (c *Core) opJPNN() {
	c.PC = c.fetchWord()
	c.tick(10)
}

// opJPCC/opJRCC/opCALLCC/opRETCC are installed verbatim (not via a
// per-opcode closure) for every conditional JP/JR/CALL/RET opcode;
// they recover the condition code from the just-fetched opcode byte
// rather than capturing it at table-build time.
func (c *Core) opJPCC() {
	cond := (c.histPrev1 >> 3) & 7
	target := c.fetchWord()
	if c.condition(cond) {
		c.PC = target
	}
	c.tick(10)
}

func (c *Core) opJRCC() {
	cond := (c.histPrev1 >> 3) & 3
	d := int8(c.fetchByte())
	if c.condition(cond) {
		c.PC = uint16(int32(c.PC) + int32(d))
		c.tick(12)
	} else {
		c.tick(7)
	}
}

func (c *Core) opCALLCC() {
	cond := (c.histPrev1 >> 3) & 7
	target := c.fetchWord()
	if c.condition(cond) {
		c.pushWord(c.PC)
		c.PC = target
		c.tick(17)
	} else {
		c.tick(10)
	}
}

func (c *Core) opRETCC() {
	cond := (c.histPrev1 >> 3) & 7
	if c.condition(cond) {
		c.PC = c.popWord()
		c.tick(11)
	} else {
		c.tick(5)
	}
}

func (c *Core) opJR() {
	d := int8(c.fetchByte())
	c.PC = uint16(int32(c.PC) + int32(d))
	c.tick(12)
}

func (c *Core) opDJNZ() {
	d := int8(c.fetchByte())
	c.B--
	if c.B != 0 {
		c.PC = uint16(int32(c.PC) + int32(d))
		c.tick(13)
	} else {
		c.tick(8)
	}
}

func (c *Core) opCALLNN() {
	target := c.fetchWord()
	c.pushWord(c.PC)
	c.PC = target
	c.tick(17)
}

func (c *Core) opRET() {
	c.PC = c.popWord()
	c.tick(10)
}

func (c *Core) opEXSPHL() {
	lo := c.read(c.SP)
	hi := c.read(c.SP + 1)
	v := c.activeHL()
	c.write(c.SP, byte(v))
	c.write(c.SP+1, byte(v>>8))
	c.setActiveHL(uint16(hi)<<8 | uint16(lo))
	c.tick(indexedCycles(c.prefix, 19, 23))
}

func (c *Core) opRST(addr uint16) {
	c.pushWord(c.PC)
	c.PC = addr
	c.tick(11)
}

func (c *Core) opEI() {
	c.IFF1, c.IFF2 = true, true
	c.eiShadow = true
	c.tick(4)
}
