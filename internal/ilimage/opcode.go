// Package ilimage decodes a compiled program-image file: the stack-IL
// byte stream for every static method plus the metadata (types, fields,
// methods, string pool, embedded byte arrays) the IL's token operands
// refer to.
package ilimage

// Opcode is one IL instruction in the subset of the stack-IL dialect this
// compiler accepts. An extended form is encoded as a distinguished lead
// byte (OpcodeExtendedPrefix) followed by one opcode byte; the decoder
// strips the lead byte and keeps only that byte, so every Opcode value is
// below 0x100 and an extended form decodes to the same Opcode as its
// byte on its own.
type Opcode int

// OperandShape describes what follows the opcode byte(s) in the stream.
type OperandShape int

const (
	ShapeNone       OperandShape = iota
	ShapeI1                      // 1-byte signed
	ShapeU1                      // 1-byte unsigned
	ShapeI2                      // 2-byte little-endian signed/unsigned word
	ShapeI4                      // 4-byte little-endian branch offset
	ShapeToken                   // 4-byte metadata token
	ShapeSwitch                  // 4-byte case count N, then N*4-byte branch offsets
)

const OpcodeExtendedPrefix = 0xFE

const (
	OpNop Opcode = iota
	OpLdcI4S    // 1-byte immediate
	OpLdcI4     // 4-byte immediate
	OpLdcI40    // constant folded into opcode, no operand
	OpLdloc0
	OpLdloc1
	OpLdloc2
	OpLdloc3
	OpLdlocS // 1-byte local index
	OpStloc0
	OpStloc1
	OpStloc2
	OpStloc3
	OpStlocS // 1-byte local index
	OpLdargS // 1-byte arg index (mapped to locals by the reader)
	OpLdtoken
	OpLdstr // token → user-string heap
	OpDup
	OpPop
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpNeg
	OpConvU1 // widen/narrow "convert to byte" — also used as widen-to-u1
	OpConvU2 // widen-to-16-bit ("conv.u2")
	OpConvI4
	OpCeq
	OpCgt
	OpCltUn
	OpBr    // 4-byte offset, unconditional
	OpBrfalse
	OpBrtrue
	OpBeq
	OpBne
	OpBlt
	OpBle
	OpBgt
	OpBge
	OpSwitch
	OpCall  // token → method
	OpRet
	OpLdelemU1 // array byte load
	OpStelemI1 // array byte store
	OpLdelema  // token → struct type, for struct-array element addressing
	OpLdloca   // address-of-local (struct base)
	OpStfld    // token → field
	OpLdfld    // token → field
	OpNewarr   // token → element type
	OpNop2     // reserved for future extension, decodes as a no-op
)

// Instr is one decoded IL instruction.
type Instr struct {
	Op        Opcode
	Offset    int    // byte offset within the method body
	HasInt    bool
	Int       int32  // decoded I1/U1/I2/I4 operand, or branch target offset
	HasToken  bool
	Token     uint32
	Name      string // token resolved to a name (method/field/type) or literal (ldstr)
	Raw       []byte // embedded byte array
	Switch    []int32 // switch-table targets (offsets)
}

// operandShapes is the static table mapping opcode to operand shape,
// consulted once per decode step.
var operandShapes = map[Opcode]OperandShape{
	OpNop:      ShapeNone,
	OpLdcI4S:   ShapeI1,
	OpLdcI4:    ShapeI4,
	OpLdcI40:   ShapeNone,
	OpLdloc0:   ShapeNone,
	OpLdloc1:   ShapeNone,
	OpLdloc2:   ShapeNone,
	OpLdloc3:   ShapeNone,
	OpLdlocS:   ShapeU1,
	OpStloc0:   ShapeNone,
	OpStloc1:   ShapeNone,
	OpStloc2:   ShapeNone,
	OpStloc3:   ShapeNone,
	OpStlocS:   ShapeU1,
	OpLdargS:   ShapeU1,
	OpLdtoken:  ShapeToken,
	OpLdstr:    ShapeToken,
	OpDup:      ShapeNone,
	OpPop:      ShapeNone,
	OpAdd:      ShapeNone,
	OpSub:      ShapeNone,
	OpMul:      ShapeNone,
	OpDiv:      ShapeNone,
	OpRem:      ShapeNone,
	OpAnd:      ShapeNone,
	OpOr:       ShapeNone,
	OpXor:      ShapeNone,
	OpShl:      ShapeNone,
	OpShr:      ShapeNone,
	OpNeg:      ShapeNone,
	OpConvU1:   ShapeNone,
	OpConvU2:   ShapeNone,
	OpConvI4:   ShapeNone,
	OpCeq:      ShapeNone,
	OpCgt:      ShapeNone,
	OpCltUn:    ShapeNone,
	OpBr:       ShapeI4,
	OpBrfalse:  ShapeI4,
	OpBrtrue:   ShapeI4,
	OpBeq:      ShapeI4,
	OpBne:      ShapeI4,
	OpBlt:      ShapeI4,
	OpBle:      ShapeI4,
	OpBgt:      ShapeI4,
	OpBge:      ShapeI4,
	OpSwitch:   ShapeSwitch,
	OpCall:     ShapeToken,
	OpRet:      ShapeNone,
	OpLdelemU1: ShapeNone,
	OpStelemI1: ShapeNone,
	OpLdelema:  ShapeToken,
	OpLdloca:   ShapeU1,
	OpStfld:    ShapeToken,
	OpLdfld:    ShapeToken,
	OpNewarr:   ShapeToken,
	OpNop2:     ShapeNone,
}
