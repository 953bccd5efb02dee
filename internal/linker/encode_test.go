package linker

import (
	"testing"

	"github.com/nesilc/nesilc/internal/obj"
)

func TestEncodeInstructionAbsoluteLabel(t *testing.T) {
	resolve := resolverFor(map[string]int{"target": 0x8010}, nil)
	bytes, err := encodeInstruction(obj.ToLabel(obj.OpJMP_abs, "target"), 0x8000, resolve)
	assert(t, err == nil, "encodeInstruction returned %v", err)
	assert(t, len(bytes) == 3, "got %d bytes, want 3", len(bytes))
	assert(t, bytes[0] == obj.OpJMP_abs, "opcode byte = %#x", bytes[0])
	assert(t, bytes[1] == 0x10 && bytes[2] == 0x80, "operand bytes = %#x %#x, want 10 80", bytes[1], bytes[2])
}

func TestEncodeInstructionLocalPreferredOverGlobal(t *testing.T) {
	resolve := resolverFor(map[string]int{"loop": 0x9000}, map[string]int{"loop": 0x8002})
	bytes, err := encodeInstruction(obj.Branch(obj.OpBEQ, "loop"), 0x8000, resolve)
	assert(t, err == nil, "encodeInstruction returned %v", err)
	// relative offset = target - (addr+2) = 0x8002 - 0x8002 = 0
	assert(t, bytes[1] == 0x00, "branch offset = %d, want 0 (local label should win)", int8(bytes[1]))
}

func TestEncodeInstructionBranchOutOfRange(t *testing.T) {
	resolve := resolverFor(map[string]int{"far": 0x9000}, nil)
	_, err := encodeInstruction(obj.Branch(obj.OpBEQ, "far"), 0x8000, resolve)
	assert(t, err != nil, "expected a branch-range error")
}

func TestEncodeInstructionUnresolvedLabel(t *testing.T) {
	resolve := resolverFor(map[string]int{}, nil)
	_, err := encodeInstruction(obj.ToLabel(obj.OpJMP_abs, "nowhere"), 0x8000, resolve)
	assert(t, err != nil, "expected an unresolved-label error")
}

func TestEncodeInstructionLabelWordMinus1(t *testing.T) {
	resolve := resolverFor(map[string]int{"dtor": 0x8101}, nil)
	bytes, err := encodeInstruction(obj.LabelWordMinus1("dtor"), 0x8200, resolve)
	assert(t, err == nil, "encodeInstruction returned %v", err)
	assert(t, len(bytes) == 2, "got %d bytes, want 2", len(bytes))
	got := int(bytes[0]) | int(bytes[1])<<8
	assert(t, got == 0x8100, "label word minus one = %#x, want %#x", got, 0x8100)
}

func TestEncodeInstructionIncAbsXDoesNotAliasLabelWord(t *testing.T) {
	// OpINC_absx and OpSBC_absx share their byte value with the old
	// OpLabelWord/OpLabelWordMinus1 opcode-byte markers; an ordinary
	// instruction using either opcode must still encode by addressing
	// mode, not be mistaken for a label-word data marker.
	resolve := resolverFor(nil, nil)
	in := obj.AbsX(obj.OpINC_absx, 0x0300)
	assert(t, in.Kind == obj.KindOpcode, "an ordinary instruction must default to KindOpcode")
	assert(t, in.Size() == 3, "INC $nnnn,X size = %d, want 3", in.Size())

	bytes, err := encodeInstruction(in, 0x8000, resolve)
	assert(t, err == nil, "encodeInstruction returned %v", err)
	assert(t, len(bytes) == 3, "got %d bytes, want 3", len(bytes))
	assert(t, bytes[0] == obj.OpINC_absx, "opcode byte = %#x, want OpINC_absx", bytes[0])
	assert(t, bytes[1] == 0x00 && bytes[2] == 0x03, "operand bytes = %#x %#x, want 00 03", bytes[1], bytes[2])
}

func TestEncodeInstructionRawData(t *testing.T) {
	resolve := resolverFor(nil, nil)
	bytes, err := encodeInstruction(obj.Raw([]byte{0xDE, 0xAD}), 0, resolve)
	assert(t, err == nil, "encodeInstruction returned %v", err)
	assert(t, bytes[0] == 0xDE && bytes[1] == 0xAD, "raw data not passed through verbatim")
}
