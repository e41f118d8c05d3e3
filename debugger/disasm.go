package debugger

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"
)

// bareHPattern/bareLPattern match a standalone H or L register operand
// token (not the H/L inside a longer identifier like HALT, and not
// inside an already-substituted (IX+d)/(IY+d) memory operand, which
// never contains a bare H or L).
var bareHPattern = regexp.MustCompile(`\bH\b`)
var bareLPattern = regexp.MustCompile(`\bL\b`)

var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var rpNames = [4]string{"BC", "DE", "HL", "SP"}
var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var aluMnemonics = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}

// decodeInstruction returns the instruction length and mnemonic for
// the bytes at pc, following the same base/CB/ED/DD/FD/DDCB/FDCB
// dispatch shape the core uses to execute them.
func decodeInstruction(data []byte, pc uint16) (int, string) {
	if len(data) == 0 {
		return 1, "?"
	}
	op := data[0]
	switch op {
	case 0xCB:
		if len(data) < 2 {
			return 1, fmt.Sprintf("db $%02X", op)
		}
		return 2, decodeCB(data[1])
	case 0xED:
		if len(data) < 2 {
			return 1, fmt.Sprintf("db $%02X", op)
		}
		n, m := decodeED(data[1:])
		return n + 1, m
	case 0xDD:
		return decodeIndexed(data, pc, "IX")
	case 0xFD:
		return decodeIndexed(data, pc, "IY")
	}
	return decodeBase(data, pc)
}

func decodeBase(data []byte, pc uint16) (int, string) {
	op := data[0]
	switch {
	case op == 0x00:
		return 1, "NOP"
	case op == 0x76:
		return 1, "HALT"
	case op >= 0x40 && op <= 0x7F:
		dest, src := reg8Names[(op>>3)&7], reg8Names[op&7]
		return 1, fmt.Sprintf("LD %s,%s", dest, src)
	case op&0xC7 == 0x06:
		if len(data) < 2 {
			return 1, "LD ?,n"
		}
		return 2, fmt.Sprintf("LD %s,$%02X", reg8Names[(op>>3)&7], data[1])
	case op >= 0x80 && op <= 0xBF:
		return 1, fmt.Sprintf("%s %s", aluMnemonics[(op>>3)&7], reg8Names[op&7])
	case op&0xC7 == 0xC6:
		if len(data) < 2 {
			return 1, "ALU n"
		}
		return 2, fmt.Sprintf("%s $%02X", aluMnemonics[(op>>3)&7], data[1])
	case op&0xCF == 0x01:
		if len(data) < 3 {
			return 1, "LD rr,nn"
		}
		return 3, fmt.Sprintf("LD %s,$%04X", rpNames[(op>>4)&3], uint16(data[1])|uint16(data[2])<<8)
	case op == 0xC3:
		if len(data) < 3 {
			return 1, "JP nn"
		}
		return 3, fmt.Sprintf("JP $%04X", uint16(data[1])|uint16(data[2])<<8)
	case op&0xC7 == 0xC2:
		if len(data) < 3 {
			return 1, "JP cc,nn"
		}
		return 3, fmt.Sprintf("JP %s,$%04X", condNames[(op>>3)&7], uint16(data[1])|uint16(data[2])<<8)
	case op == 0x18:
		if len(data) < 2 {
			return 1, "JR d"
		}
		return 2, fmt.Sprintf("JR $%04X", uint16(int32(pc)+2+int32(int8(data[1]))))
	case op&0xE7 == 0x20:
		if len(data) < 2 {
			return 1, "JR cc,d"
		}
		return 2, fmt.Sprintf("JR %s,$%04X", condNames[(op>>3)&3], uint16(int32(pc)+2+int32(int8(data[1]))))
	case op == 0x10:
		if len(data) < 2 {
			return 1, "DJNZ d"
		}
		return 2, fmt.Sprintf("DJNZ $%04X", uint16(int32(pc)+2+int32(int8(data[1]))))
	case op == 0xCD:
		if len(data) < 3 {
			return 1, "CALL nn"
		}
		return 3, fmt.Sprintf("CALL $%04X", uint16(data[1])|uint16(data[2])<<8)
	case op&0xC7 == 0xC4:
		if len(data) < 3 {
			return 1, "CALL cc,nn"
		}
		return 3, fmt.Sprintf("CALL %s,$%04X", condNames[(op>>3)&7], uint16(data[1])|uint16(data[2])<<8)
	case op == 0xC9:
		return 1, "RET"
	case op&0xC7 == 0xC0:
		return 1, fmt.Sprintf("RET %s", condNames[(op>>3)&7])
	case op&0xC7 == 0xC7:
		return 1, fmt.Sprintf("RST $%02X", op&0x38)
	case op == 0xF3:
		return 1, "DI"
	case op == 0xFB:
		return 1, "EI"
	case op == 0x2F:
		return 1, "CPL"
	case op == 0x27:
		return 1, "DAA"
	case op == 0x37:
		return 1, "SCF"
	case op == 0x3F:
		return 1, "CCF"
	case op == 0xEB:
		return 1, "EX DE,HL"
	case op == 0xE3:
		return 1, "EX (SP),HL"
	case op == 0xD9:
		return 1, "EXX"
	case op == 0x08:
		return 1, "EX AF,AF'"
	}
	return 1, fmt.Sprintf("db $%02X", op)
}

var shiftMnemonics = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

func decodeCB(op byte) string {
	reg := reg8Names[op&7]
	switch {
	case op < 0x40:
		return fmt.Sprintf("%s %s", shiftMnemonics[op>>3], reg)
	case op < 0x80:
		return fmt.Sprintf("BIT %d,%s", (op>>3)&7, reg)
	case op < 0xC0:
		return fmt.Sprintf("RES %d,%s", (op>>3)&7, reg)
	default:
		return fmt.Sprintf("SET %d,%s", (op>>3)&7, reg)
	}
}

func decodeED(data []byte) (int, string) {
	if len(data) == 0 {
		return 0, "?"
	}
	op := data[0]
	switch op {
	case 0x44, 0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C:
		return 1, "NEG"
	case 0x45, 0x55, 0x5D, 0x65, 0x6D, 0x75, 0x7D:
		return 1, "RETN"
	case 0x4D:
		return 1, "RETI"
	case 0x47:
		return 1, "LD I,A"
	case 0x4F:
		return 1, "LD R,A"
	case 0x57:
		return 1, "LD A,I"
	case 0x5F:
		return 1, "LD A,R"
	case 0x67:
		return 1, "RRD"
	case 0x6F:
		return 1, "RLD"
	case 0xA0:
		return 1, "LDI"
	case 0xA8:
		return 1, "LDD"
	case 0xB0:
		return 1, "LDIR"
	case 0xB8:
		return 1, "LDDR"
	case 0xA1:
		return 1, "CPI"
	case 0xA9:
		return 1, "CPD"
	case 0xB1:
		return 1, "CPIR"
	case 0xB9:
		return 1, "CPDR"
	case 0xA2:
		return 1, "INI"
	case 0xAA:
		return 1, "IND"
	case 0xB2:
		return 1, "INIR"
	case 0xBA:
		return 1, "INDR"
	case 0xA3:
		return 1, "OUTI"
	case 0xAB:
		return 1, "OUTD"
	case 0xB3:
		return 1, "OTIR"
	case 0xBB:
		return 1, "OTDR"
	}
	if op&0xCF == 0x43 || op&0xCF == 0x4B {
		if len(data) < 3 {
			return 1, "db $ED"
		}
		rp := rpNames[(op>>4)&3]
		addr := uint16(data[1]) | uint16(data[2])<<8
		if op&0xCF == 0x43 {
			return 3, fmt.Sprintf("LD ($%04X),%s", addr, rp)
		}
		return 3, fmt.Sprintf("LD %s,($%04X)", rp, addr)
	}
	if op&0xCF == 0x42 {
		return 1, fmt.Sprintf("SBC HL,%s", rpNames[(op>>4)&3])
	}
	if op&0xCF == 0x4A {
		return 1, fmt.Sprintf("ADC HL,%s", rpNames[(op>>4)&3])
	}
	if op&0xC7 == 0x40 {
		return 1, fmt.Sprintf("IN %s,(C)", reg8Names[(op>>3)&7])
	}
	if op&0xC7 == 0x41 {
		return 1, fmt.Sprintf("OUT (C),%s", reg8Names[(op>>3)&7])
	}
	return 1, "db $ED"
}

// decodeIndexed covers the DD/FD-prefixed instructions used commonly
// enough to be worth a readable mnemonic; anything else falls through
// to the underlying base-table mnemonic with HL replaced by the index
// register name, matching the core's own transparent-prefix behaviour.
func decodeIndexed(data []byte, pc uint16, ixiy string) (int, string) {
	if len(data) < 2 {
		return 1, fmt.Sprintf("db $%02X", data[0])
	}
	if data[1] == 0xCB {
		if len(data) < 4 {
			return len(data), fmt.Sprintf("db $%02X", data[0])
		}
		d := int8(data[2])
		cbOp := data[3]
		target := fmt.Sprintf("(%s%+d)", ixiy, d)
		mnemonic := decodeCB(cbOp)
		mnemonic = strings.Replace(mnemonic, "(HL)", target, 1)
		return 4, mnemonic
	}
	op := data[1]
	// Forms with an (HL) operand carry a displacement byte right after
	// the opcode, ahead of any immediate; the base mnemonic is decoded
	// from the opcode plus the bytes that follow the displacement.
	tail := data[1:]
	dispLen := 0
	if op == 0x34 || op == 0x35 || op == 0x36 ||
		(op >= 0x40 && op <= 0x7F && op != 0x76 && (op&7 == 6 || (op>>3)&7 == 6)) ||
		(op >= 0x80 && op <= 0xBF && op&7 == 6) {
		if len(data) < 3 {
			return len(data), fmt.Sprintf("db $%02X", data[0])
		}
		dispLen = 1
		tail = append([]byte{op}, data[3:]...)
	}
	n, m := decodeBase(tail, pc+1)
	m = strings.ReplaceAll(m, "(HL)", "("+ixiy+"+d)")

	// LD H,(HL)/LD L,(HL)/LD (HL),H/LD (HL),L are the one documented
	// exception: the (HL) side above still redirects to (IX+d)/(IY+d),
	// but the H/L side keeps addressing the real register, matching
	// opLDRegReg's own special case.
	switch op {
	case 0x66, 0x6E, 0x74, 0x75:
		return n + 1 + dispLen, m
	}

	m = bareHPattern.ReplaceAllString(m, ixiy+"H")
	m = bareLPattern.ReplaceAllString(m, ixiy+"L")
	m = strings.ReplaceAll(m, "HL", ixiy)
	return n + 1 + dispLen, m
}

// Disassembler wraps decodeInstruction with singleflight so that
// concurrent disassemble_range calls over the same address range from
// multiple inspector goroutines share one decode pass.
type Disassembler struct {
	read  func(addr uint16) byte
	group singleflight.Group
}

func NewDisassembler(read func(addr uint16) byte) *Disassembler {
	return &Disassembler{read: read}
}

// DisassembleRange decodes count instructions starting at lo.
func (ds *Disassembler) DisassembleRange(lo uint16, count int) []TraceEntry {
	key := fmt.Sprintf("%04X:%d", lo, count)
	v, _, _ := ds.group.Do(key, func() (interface{}, error) {
		lines := make([]TraceEntry, 0, count)
		addr := lo
		for i := 0; i < count; i++ {
			raw := make([]byte, 4)
			for j := range raw {
				raw[j] = ds.read(addr + uint16(j))
			}
			size, mnemonic := decodeInstruction(raw, addr)
			entry := TraceEntry{PC: addr, OpcodeLen: size, Disasm: mnemonic}
			copy(entry.Opcode[:], raw[:size])
			lines = append(lines, entry)
			addr += uint16(size)
		}
		return lines, nil
	})
	return v.([]TraceEntry)
}
