package asmsrc

import "github.com/nesilc/nesilc/internal/obj"

// modeSet is the subset of addressing modes a mnemonic supports, each
// mapped to its opcode byte. Built once from the conventional 6502
// assembler dialect's mnemonic table.
type modeSet map[obj.Mode]byte

var mnemonics = map[string]modeSet{
	"LDA": {obj.ModeImmediate: obj.OpLDA_imm, obj.ModeZeroPage: obj.OpLDA_zp, obj.ModeZeroPageX: obj.OpLDA_zpx,
		obj.ModeAbsolute: obj.OpLDA_abs, obj.ModeAbsoluteX: obj.OpLDA_absx, obj.ModeAbsoluteY: obj.OpLDA_absy,
		obj.ModeIndirectX: obj.OpLDA_izx, obj.ModeIndirectY: obj.OpLDA_izy},
	"LDX": {obj.ModeImmediate: obj.OpLDX_imm, obj.ModeZeroPage: obj.OpLDX_zp, obj.ModeZeroPageY: obj.OpLDX_zpy,
		obj.ModeAbsolute: obj.OpLDX_abs, obj.ModeAbsoluteY: obj.OpLDX_absy},
	"LDY": {obj.ModeImmediate: obj.OpLDY_imm, obj.ModeZeroPage: obj.OpLDY_zp, obj.ModeZeroPageX: obj.OpLDY_zpx,
		obj.ModeAbsolute: obj.OpLDY_abs, obj.ModeAbsoluteX: obj.OpLDY_absx},
	"STA": {obj.ModeZeroPage: obj.OpSTA_zp, obj.ModeZeroPageX: obj.OpSTA_zpx, obj.ModeAbsolute: obj.OpSTA_abs,
		obj.ModeAbsoluteX: obj.OpSTA_absx, obj.ModeAbsoluteY: obj.OpSTA_absy,
		obj.ModeIndirectX: obj.OpSTA_izx, obj.ModeIndirectY: obj.OpSTA_izy},
	"STX": {obj.ModeZeroPage: obj.OpSTX_zp, obj.ModeZeroPageY: obj.OpSTX_zpy, obj.ModeAbsolute: obj.OpSTX_abs},
	"STY": {obj.ModeZeroPage: obj.OpSTY_zp, obj.ModeZeroPageX: obj.OpSTY_zpx, obj.ModeAbsolute: obj.OpSTY_abs},
	"ADC": {obj.ModeImmediate: obj.OpADC_imm, obj.ModeZeroPage: obj.OpADC_zp, obj.ModeZeroPageX: obj.OpADC_zpx,
		obj.ModeAbsolute: obj.OpADC_abs, obj.ModeAbsoluteX: obj.OpADC_absx, obj.ModeAbsoluteY: obj.OpADC_absy,
		obj.ModeIndirectX: obj.OpADC_izx, obj.ModeIndirectY: obj.OpADC_izy},
	"SBC": {obj.ModeImmediate: obj.OpSBC_imm, obj.ModeZeroPage: obj.OpSBC_zp, obj.ModeZeroPageX: obj.OpSBC_zpx,
		obj.ModeAbsolute: obj.OpSBC_abs, obj.ModeAbsoluteX: obj.OpSBC_absx, obj.ModeAbsoluteY: obj.OpSBC_absy,
		obj.ModeIndirectX: obj.OpSBC_izx, obj.ModeIndirectY: obj.OpSBC_izy},
	"AND": {obj.ModeImmediate: obj.OpAND_imm, obj.ModeZeroPage: obj.OpAND_zp, obj.ModeZeroPageX: obj.OpAND_zpx,
		obj.ModeAbsolute: obj.OpAND_abs, obj.ModeAbsoluteX: obj.OpAND_absx, obj.ModeAbsoluteY: obj.OpAND_absy,
		obj.ModeIndirectX: obj.OpAND_izx, obj.ModeIndirectY: obj.OpAND_izy},
	"ORA": {obj.ModeImmediate: obj.OpORA_imm, obj.ModeZeroPage: obj.OpORA_zp, obj.ModeZeroPageX: obj.OpORA_zpx,
		obj.ModeAbsolute: obj.OpORA_abs, obj.ModeAbsoluteX: obj.OpORA_absx, obj.ModeAbsoluteY: obj.OpORA_absy,
		obj.ModeIndirectX: obj.OpORA_izx, obj.ModeIndirectY: obj.OpORA_izy},
	"EOR": {obj.ModeImmediate: obj.OpEOR_imm, obj.ModeZeroPage: obj.OpEOR_zp, obj.ModeZeroPageX: obj.OpEOR_zpx,
		obj.ModeAbsolute: obj.OpEOR_abs, obj.ModeAbsoluteX: obj.OpEOR_absx, obj.ModeAbsoluteY: obj.OpEOR_absy,
		obj.ModeIndirectX: obj.OpEOR_izx, obj.ModeIndirectY: obj.OpEOR_izy},
	"CMP": {obj.ModeImmediate: obj.OpCMP_imm, obj.ModeZeroPage: obj.OpCMP_zp, obj.ModeZeroPageX: obj.OpCMP_zpx,
		obj.ModeAbsolute: obj.OpCMP_abs, obj.ModeAbsoluteX: obj.OpCMP_absx, obj.ModeAbsoluteY: obj.OpCMP_absy,
		obj.ModeIndirectX: obj.OpCMP_izx, obj.ModeIndirectY: obj.OpCMP_izy},
	"CPX": {obj.ModeImmediate: obj.OpCPX_imm, obj.ModeZeroPage: obj.OpCPX_zp, obj.ModeAbsolute: obj.OpCPX_abs},
	"CPY": {obj.ModeImmediate: obj.OpCPY_imm, obj.ModeZeroPage: obj.OpCPY_zp, obj.ModeAbsolute: obj.OpCPY_abs},
	"INC": {obj.ModeZeroPage: obj.OpINC_zp, obj.ModeZeroPageX: obj.OpINC_zpx, obj.ModeAbsolute: obj.OpINC_abs, obj.ModeAbsoluteX: obj.OpINC_absx},
	"DEC": {obj.ModeZeroPage: obj.OpDEC_zp, obj.ModeZeroPageX: obj.OpDEC_zpx, obj.ModeAbsolute: obj.OpDEC_abs, obj.ModeAbsoluteX: obj.OpDEC_absx},
	"ASL": {obj.ModeNone: obj.OpASL_a, obj.ModeZeroPage: obj.OpASL_zp, obj.ModeZeroPageX: obj.OpASL_zpx, obj.ModeAbsolute: obj.OpASL_abs, obj.ModeAbsoluteX: obj.OpASL_absx},
	"LSR": {obj.ModeNone: obj.OpLSR_a, obj.ModeZeroPage: obj.OpLSR_zp, obj.ModeZeroPageX: obj.OpLSR_zpx, obj.ModeAbsolute: obj.OpLSR_abs, obj.ModeAbsoluteX: obj.OpLSR_absx},
	"ROL": {obj.ModeNone: obj.OpROL_a, obj.ModeZeroPage: obj.OpROL_zp, obj.ModeZeroPageX: obj.OpROL_zpx, obj.ModeAbsolute: obj.OpROL_abs, obj.ModeAbsoluteX: obj.OpROL_absx},
	"ROR": {obj.ModeNone: obj.OpROR_a, obj.ModeZeroPage: obj.OpROR_zp, obj.ModeZeroPageX: obj.OpROR_zpx, obj.ModeAbsolute: obj.OpROR_abs, obj.ModeAbsoluteX: obj.OpROR_absx},
	"BIT": {obj.ModeZeroPage: obj.OpBIT_zp, obj.ModeAbsolute: obj.OpBIT_abs},

	"JMP": {obj.ModeAbsolute: obj.OpJMP_abs, obj.ModeIndirect: obj.OpJMP_ind},
	"JSR": {obj.ModeAbsolute: obj.OpJSR},

	"BPL": {obj.ModeRelative: obj.OpBPL}, "BMI": {obj.ModeRelative: obj.OpBMI},
	"BVC": {obj.ModeRelative: obj.OpBVC}, "BVS": {obj.ModeRelative: obj.OpBVS},
	"BCC": {obj.ModeRelative: obj.OpBCC}, "BCS": {obj.ModeRelative: obj.OpBCS},
	"BNE": {obj.ModeRelative: obj.OpBNE}, "BEQ": {obj.ModeRelative: obj.OpBEQ},

	"TAX": {obj.ModeNone: obj.OpTAX}, "TXA": {obj.ModeNone: obj.OpTXA},
	"TAY": {obj.ModeNone: obj.OpTAY}, "TYA": {obj.ModeNone: obj.OpTYA},
	"TXS": {obj.ModeNone: obj.OpTXS}, "TSX": {obj.ModeNone: obj.OpTSX},
	"DEX": {obj.ModeNone: obj.OpDEX}, "DEY": {obj.ModeNone: obj.OpDEY},
	"INX": {obj.ModeNone: obj.OpINX}, "INY": {obj.ModeNone: obj.OpINY},
	"PHA": {obj.ModeNone: obj.OpPHA}, "PLA": {obj.ModeNone: obj.OpPLA},
	"PHP": {obj.ModeNone: obj.OpPHP}, "PLP": {obj.ModeNone: obj.OpPLP},
	"CLC": {obj.ModeNone: obj.OpCLC}, "SEC": {obj.ModeNone: obj.OpSEC},
	"CLI": {obj.ModeNone: obj.OpCLI}, "SEI": {obj.ModeNone: obj.OpSEI},
	"CLV": {obj.ModeNone: obj.OpCLV}, "CLD": {obj.ModeNone: obj.OpCLD}, "SED": {obj.ModeNone: obj.OpSED},
	"NOP": {obj.ModeNone: obj.OpNOP}, "BRK": {obj.ModeNone: obj.OpBRK},
	"RTI": {obj.ModeNone: obj.OpRTI}, "RTS": {obj.ModeNone: obj.OpRTS},
}

// branchMnemonics is consulted by the parser to decide whether a label
// operand should be emitted as a relative branch vs. an absolute
// reference.
var branchMnemonics = map[string]bool{
	"BPL": true, "BMI": true, "BVC": true, "BVS": true,
	"BCC": true, "BCS": true, "BNE": true, "BEQ": true,
}
