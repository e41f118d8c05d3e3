package z80

// Flag bit layout: S Z F5 H F3 P/V N C.
const (
	flagC  byte = 0x01
	flagN  byte = 0x02
	flagPV byte = 0x04
	flagF3 byte = 0x08
	flagH  byte = 0x10
	flagF5 byte = 0x20
	flagZ  byte = 0x40
	flagS  byte = 0x80
)

func parity(v byte) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

// sz53 sets S, Z, F5, F3 from the 8-bit result, as almost every
// instruction does.
func (c *Core) sz53(result byte) {
	c.setFlag(flagS, result&0x80 != 0)
	c.setFlag(flagZ, result == 0)
	c.F = (c.F &^ (flagF3 | flagF5)) | (result & (flagF3 | flagF5))
}

type aluOp byte

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

// performALU applies an 8-bit ALU operation against A, updating all
// flags per the documented tables.
func (c *Core) performALU(op aluOp, value byte) {
	a := c.A
	switch op {
	case aluAdd, aluAdc:
		carryIn := byte(0)
		if op == aluAdc && c.flag(flagC) {
			carryIn = 1
		}
		res16 := uint16(a) + uint16(value) + uint16(carryIn)
		res := byte(res16)
		c.setFlag(flagC, res16 > 0xFF)
		c.setFlag(flagH, (a&0x0F)+(value&0x0F)+carryIn > 0x0F)
		c.setFlag(flagPV, (a^value)&0x80 == 0 && (a^res)&0x80 != 0)
		c.setFlag(flagN, false)
		c.A = res
		c.sz53(res)
	case aluSub, aluSbc, aluCp:
		carryIn := byte(0)
		if op == aluSbc && c.flag(flagC) {
			carryIn = 1
		}
		res16 := uint16(a) - uint16(value) - uint16(carryIn)
		res := byte(res16)
		c.setFlag(flagC, res16 > 0xFF)
		c.setFlag(flagH, (a&0x0F) < (value&0x0F)+carryIn)
		c.setFlag(flagPV, (a^value)&0x80 != 0 && (a^res)&0x80 != 0)
		c.setFlag(flagN, true)
		if op == aluCp {
			c.setFlag(flagS, res&0x80 != 0)
			c.setFlag(flagZ, res == 0)
			// CP mirrors F3/F5 from the operand, not the result.
			c.F = (c.F &^ (flagF3 | flagF5)) | (value & (flagF3 | flagF5))
		} else {
			c.A = res
			c.sz53(res)
		}
	case aluAnd:
		res := a & value
		c.A = res
		c.F = 0
		c.setFlag(flagH, true)
		c.setFlag(flagPV, parity(res))
		c.sz53(res)
	case aluXor:
		res := a ^ value
		c.A = res
		c.F = 0
		c.setFlag(flagPV, parity(res))
		c.sz53(res)
	case aluOr:
		res := a | value
		c.A = res
		c.F = 0
		c.setFlag(flagPV, parity(res))
		c.sz53(res)
	}
}

func (c *Core) inc8(v byte) byte {
	res := v + 1
	c.setFlag(flagPV, v == 0x7F)
	c.setFlag(flagH, v&0x0F == 0x0F)
	c.setFlag(flagN, false)
	c.sz53(res)
	return res
}

func (c *Core) dec8(v byte) byte {
	res := v - 1
	c.setFlag(flagPV, v == 0x80)
	c.setFlag(flagH, v&0x0F == 0x00)
	c.setFlag(flagN, true)
	c.sz53(res)
	return res
}

// addHL16 implements ADD HL/IX/IY,rr: affects H, N, C and the
// undocumented F3/F5 (from the result's high byte); S, Z, P/V are kept.
func (c *Core) addHL16(dest, value uint16) uint16 {
	res32 := uint32(dest) + uint32(value)
	c.setFlag(flagN, false)
	c.setFlag(flagC, res32 > 0xFFFF)
	c.setFlag(flagH, (dest&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	res := uint16(res32)
	c.F = (c.F &^ (flagF3 | flagF5)) | (byte(res>>8) & (flagF3 | flagF5))
	return res
}

// adcHL/sbcHL implement ED ADC HL,rr / SBC HL,rr: full S/Z/PV/C update.
func (c *Core) adcHL(value uint16) {
	hl := c.HL()
	carry := uint32(0)
	if c.flag(flagC) {
		carry = 1
	}
	res32 := uint32(hl) + uint32(value) + carry
	res := uint16(res32)
	c.setFlag(flagC, res32 > 0xFFFF)
	c.setFlag(flagH, (hl&0x0FFF)+(value&0x0FFF)+uint16(carry) > 0x0FFF)
	c.setFlag(flagPV, (hl^value)&0x8000 == 0 && (hl^res)&0x8000 != 0)
	c.setFlag(flagN, false)
	c.setFlag(flagS, res&0x8000 != 0)
	c.setFlag(flagZ, res == 0)
	c.F = (c.F &^ (flagF3 | flagF5)) | (byte(res>>8) & (flagF3 | flagF5))
	c.SetHL(res)
}

func (c *Core) sbcHL(value uint16) {
	hl := c.HL()
	carry := uint32(0)
	if c.flag(flagC) {
		carry = 1
	}
	res32 := uint32(hl) - uint32(value) - carry
	res := uint16(res32)
	c.setFlag(flagC, res32 > 0xFFFF)
	c.setFlag(flagH, (hl&0x0FFF) < (value&0x0FFF)+uint16(carry))
	c.setFlag(flagPV, (hl^value)&0x8000 != 0 && (hl^res)&0x8000 != 0)
	c.setFlag(flagN, true)
	c.setFlag(flagS, res&0x8000 != 0)
	c.setFlag(flagZ, res == 0)
	c.F = (c.F &^ (flagF3 | flagF5)) | (byte(res>>8) & (flagF3 | flagF5))
	c.SetHL(res)
}

func (c *Core) daa() {
	a := c.A
	adj := byte(0)
	carry := c.flag(flagC)
	if c.flag(flagH) || (!c.flag(flagN) && (a&0x0F) > 0x09) {
		adj |= 0x06
	}
	if carry || (!c.flag(flagN) && a > 0x99) {
		adj |= 0x60
	}

	var res byte
	if c.flag(flagN) {
		res = a - adj
	} else {
		res = a + adj
	}

	newH := false
	if c.flag(flagN) {
		newH = c.flag(flagH) && (a&0x0F) < 0x06
	} else {
		newH = (a & 0x0F) > 0x09
	}

	c.A = res
	c.F &^= flagS | flagZ | flagPV | flagH | flagC | flagF3 | flagF5
	c.setFlag(flagH, newH)
	c.setFlag(flagC, carry || a > 0x99)
	c.setFlag(flagPV, parity(res))
	c.sz53(res)
}
