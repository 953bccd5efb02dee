// Package obj is the target-machine object model: instructions, addressing
// modes, blocks and programs for the 6502 code the compiler emits.
package obj

// Mode is a 6502 addressing mode as used by the operand of an Instruction.
type Mode int

const (
	ModeNone       Mode = iota // implied/accumulator, no operand bytes
	ModeImmediate              // #$nn
	ModeZeroPage               // $nn
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute // $nnnn
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect
	ModeIndirectX
	ModeIndirectY
	ModeRelative // branch, signed byte
	ModeLabel    // full 16-bit address of a label
	ModeLabelLo  // low byte of a label's address
	ModeLabelHi  // high byte of a label's address
	ModeRelLabel // relative-to-label, resolved at link time
)

// OperandKind distinguishes the operand's concrete representation. An
// Instruction carries exactly one of these at a time.
type OperandKind int

const (
	OperandAbsent OperandKind = iota
	OperandByte               // a raw compile-time byte (immediate, zero-page addr, relative offset)
	OperandWord               // a raw compile-time 16-bit address
	OperandLabel              // a named label reference, resolved by the linker
	OperandRaw                // a literal run of bytes (for .byte/.word data blocks)
)

// Operand is the tagged union of everything an Instruction can carry.
type Operand struct {
	Kind  OperandKind
	Byte  byte
	Word  uint16
	Label string
	Raw   []byte
}

// Kind distinguishes a real 6502 opcode instruction from the object
// model's own data markers. A data marker's Operand isn't encoded via any
// 6502 addressing-mode rule, so it can't share the Opcode byte's value
// space with actual instructions — every byte 0x00-0xFF names a real (or
// undefined) 6502 opcode, and the assembly reader can emit any of them
// from external source, so a marker glued onto an opcode value would
// eventually alias one a hand-written file names (as OpLabelWord/
// OpLabelWordMinus1 used to alias OpINC_absx/OpSBC_absx).
type Kind int

const (
	KindOpcode          Kind = iota // an ordinary instruction, or a raw OpData span
	KindLabelWord                   // a 2-byte little-endian word holding a label's resolved address
	KindLabelWordMinus1             // ...minus one, for the push-then-RTS destructor trampoline
)

// Instruction is one emitted 6502 instruction or raw data unit.
type Instruction struct {
	Opcode  byte // the 6502 opcode byte; Data instructions use OpData; meaningless unless Kind == KindOpcode
	Kind    Kind
	Mode    Mode
	Operand Operand
}

// OpData marks an Instruction as a raw data span rather than a real 6502
// opcode; Mode is ignored and Operand.Raw holds the bytes verbatim.
const OpData byte = 0xFF

// LabelWord builds a data word holding a label's resolved address.
func LabelWord(label string) Instruction {
	return Instruction{Kind: KindLabelWord, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// LabelWordMinus1 builds a data word holding a label's resolved address
// minus one.
func LabelWordMinus1(label string) Instruction {
	return Instruction{Kind: KindLabelWordMinus1, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// Size returns the instruction's length in bytes once emitted.
func (in Instruction) Size() int {
	if in.Opcode == OpData {
		return len(in.Operand.Raw)
	}
	if in.Kind == KindLabelWord || in.Kind == KindLabelWordMinus1 {
		return 2
	}
	switch in.Mode {
	case ModeNone:
		return 1
	case ModeImmediate, ModeZeroPage, ModeZeroPageX, ModeZeroPageY,
		ModeIndirectX, ModeIndirectY, ModeRelative, ModeRelLabel:
		return 2
	case ModeAbsolute, ModeAbsoluteX, ModeAbsoluteY, ModeIndirect, ModeLabel:
		return 3
	case ModeLabelLo, ModeLabelHi:
		return 2
	}
	return 1
}

// Raw builds a data Instruction carrying a literal byte run.
func Raw(b []byte) Instruction {
	return Instruction{Opcode: OpData, Operand: Operand{Kind: OperandRaw, Raw: b}}
}

// Imm builds an immediate-mode instruction.
func Imm(opcode byte, value byte) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeImmediate, Operand: Operand{Kind: OperandByte, Byte: value}}
}

// ZP builds a zero-page instruction.
func ZP(opcode byte, addr byte) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeZeroPage, Operand: Operand{Kind: OperandByte, Byte: addr}}
}

// ZPX builds a zero-page,X instruction.
func ZPX(opcode byte, addr byte) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeZeroPageX, Operand: Operand{Kind: OperandByte, Byte: addr}}
}

// Abs builds an absolute-mode instruction.
func Abs(opcode byte, addr uint16) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeAbsolute, Operand: Operand{Kind: OperandWord, Word: addr}}
}

// AbsX builds an absolute,X instruction.
func AbsX(opcode byte, addr uint16) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeAbsoluteX, Operand: Operand{Kind: OperandWord, Word: addr}}
}

// AbsY builds an absolute,Y instruction.
func AbsY(opcode byte, addr uint16) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeAbsoluteY, Operand: Operand{Kind: OperandWord, Word: addr}}
}

// IndX builds an (indirect,X) instruction.
func IndX(opcode byte, addr byte) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeIndirectX, Operand: Operand{Kind: OperandByte, Byte: addr}}
}

// IndY builds an (indirect),Y instruction.
func IndY(opcode byte, addr byte) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeIndirectY, Operand: Operand{Kind: OperandByte, Byte: addr}}
}

// Impl builds an implied/accumulator instruction with no operand bytes.
func Impl(opcode byte) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeNone}
}

// ToLabel builds an absolute jump/call to a label, resolved at link time.
func ToLabel(opcode byte, label string) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeLabel, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// AbsXLabel builds an absolute,X instruction whose base is a label.
func AbsXLabel(opcode byte, label string) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeAbsoluteX, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// AbsLabel builds an absolute-mode instruction whose address is a label.
func AbsLabel(opcode byte, label string) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeAbsolute, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// LabelLo builds an immediate-mode load of a label's low byte (LDA #<label).
func LabelLo(opcode byte, label string) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeLabelLo, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// LabelHi builds an immediate-mode load of a label's high byte (LDX #>label).
func LabelHi(opcode byte, label string) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeLabelHi, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// Branch builds a relative branch to a label, resolved (and range-checked)
// at link time.
func Branch(opcode byte, label string) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeRelLabel, Operand: Operand{Kind: OperandLabel, Label: label}}
}

// Rel builds a relative branch with a raw, already-computed signed offset.
func Rel(opcode byte, offset int8) Instruction {
	return Instruction{Opcode: opcode, Mode: ModeRelative, Operand: Operand{Kind: OperandByte, Byte: byte(offset)}}
}
