package z80

// initCBOps builds the 256-entry CB table: rotates/shifts 0x00-0x3F,
// BIT 0x40-0x7F, RES 0x80-0xBF, SET 0xC0-0xFF, each over the eight
// register-field targets B,C,D,E,H,L,(HL),A.
func (c *Core) initCBOps() {
	shiftFns := []func(*Core, byte) byte{
		(*Core).rlc8, (*Core).rrc8, (*Core).rl8, (*Core).rr8,
		(*Core).sla8, (*Core).sra8, (*Core).sll8, (*Core).srl8,
	}
	for row, fn := range shiftFns {
		base := byte(row * 8)
		f := fn
		for reg := byte(0); reg < 8; reg++ {
			r := reg
			c.cbOps[base+r] = func(cpu *Core) {
				v := f(cpu, cpu.readReg8Plain(r))
				cpu.writeReg8Plain(r, v)
				cpu.tick(cbCycles(r))
			}
		}
	}
	for n := byte(0); n < 8; n++ {
		for reg := byte(0); reg < 8; reg++ {
			bit, r := n, reg
			c.cbOps[0x40+bit*8+r] = func(cpu *Core) {
				v := cpu.readReg8Plain(r)
				cpu.bitTest(bit, v, v)
				cpu.tick(cbBitCycles(r))
			}
			c.cbOps[0x80+bit*8+r] = func(cpu *Core) {
				cpu.writeReg8Plain(r, resBit(bit, cpu.readReg8Plain(r)))
				cpu.tick(cbCycles(r))
			}
			c.cbOps[0xC0+bit*8+r] = func(cpu *Core) {
				cpu.writeReg8Plain(r, setBit(bit, cpu.readReg8Plain(r)))
				cpu.tick(cbCycles(r))
			}
		}
	}
}

func cbCycles(reg byte) int {
	if reg == 6 {
		return 15
	}
	return 8
}

func cbBitCycles(reg byte) int {
	if reg == 6 {
		return 12
	}
	return 8
}

func (c *Core) opCBPrefix() {
	opcode := c.fetchOpcode()
	c.cbOps[opcode](c)
}

// dispatchIndexPrefix handles a freshly-seen DD or FD byte. If the very
// next byte is 0xCB this is the compound DDCB/FDCB form (displacement,
// then opcode, always targeting (IX+d)/(IY+d)); otherwise it behaves
// like a transparent prefix over the base table, redirecting HL/H/L/
// (HL) operands onto IX/IY for the single instruction that follows.
func (c *Core) dispatchIndexPrefix(p prefixKind) {
	opcode := c.fetchOpcode()
	if opcode == 0xCB {
		c.execIndexedCB(p)
		return
	}

	savedPrefix, savedDisp := c.prefix, c.dispFetched
	c.prefix = p
	c.dispFetched = false
	c.baseOps[opcode](c)
	c.prefix, c.dispFetched = savedPrefix, savedDisp
}

// execIndexedCB implements DD CB d op / FD CB d op. The displacement
// byte always precedes the opcode byte in this compound form (unlike
// the lazy fetch used elsewhere), and the final opcode byte is read
// via a plain memory access, not an M1 fetch - real hardware does not
// bump R a third time for this instruction.
func (c *Core) execIndexedCB(p prefixKind) {
	d := int8(c.fetchByte())
	op := c.fetchByte()

	base := c.IX
	if p == prefixIY {
		base = c.IY
	}
	addr := uint16(int32(base) + int32(d))
	value := c.read(addr)

	destReg := op & 0x07
	group := op >> 6

	var result byte
	switch group {
	case 0: // rotate/shift
		shiftFns := []func(*Core, byte) byte{
			(*Core).rlc8, (*Core).rrc8, (*Core).rl8, (*Core).rr8,
			(*Core).sla8, (*Core).sra8, (*Core).sll8, (*Core).srl8,
		}
		result = shiftFns[(op>>3)&7](c, value)
	case 1: // BIT n,(IX+d) - no writeback, F3/F5 from the address high byte
		bit := (op >> 3) & 7
		c.bitTest(bit, value, byte(addr>>8))
		c.tick(20)
		return
	case 2: // RES n,(IX+d), optionally dual-written to a register
		bit := (op >> 3) & 7
		result = resBit(bit, value)
	case 3: // SET n,(IX+d), optionally dual-written to a register
		bit := (op >> 3) & 7
		result = setBit(bit, value)
	}

	c.write(addr, result)
	if destReg != 6 {
		c.writeReg8Plain(destReg, result)
	}
	c.tick(23)
}
