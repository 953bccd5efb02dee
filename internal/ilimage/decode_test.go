package ilimage

import (
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestDecoderShapeNone(t *testing.T) {
	img := &Image{il: []byte{byte(OpNop), byte(OpRet)}}
	m := MethodRecord{Name: "m", ILStart: 0, ILLen: len(img.il)}
	dec := NewDecoder(img, m)

	in, err := dec.Next()
	assert(t, err == nil, "Next returned %v", err)
	assert(t, in.Op == OpNop, "op = %v, want OpNop", in.Op)
	assert(t, !in.HasInt, "nop should carry no operand")

	in, err = dec.Next()
	assert(t, err == nil, "Next returned %v", err)
	assert(t, in.Op == OpRet, "op = %v, want OpRet", in.Op)
	assert(t, dec.Done(), "decoder should be exhausted after the method body")
}

func TestDecoderShapeI1(t *testing.T) {
	img := &Image{il: []byte{byte(OpLdcI4S), 0x7F}}
	m := MethodRecord{Name: "m", ILStart: 0, ILLen: len(img.il)}
	dec := NewDecoder(img, m)

	in, err := dec.Next()
	assert(t, err == nil, "Next returned %v", err)
	assert(t, in.HasInt, "ldc.i4.s should carry an integer operand")
	assert(t, in.Int == 0x7F, "operand = %d, want 127", in.Int)
}

func TestDecoderShapeI4LittleEndian(t *testing.T) {
	// -2 as a 4-byte little-endian signed branch offset.
	img := &Image{il: []byte{byte(OpBr), 0xFE, 0xFF, 0xFF, 0xFF}}
	m := MethodRecord{Name: "m", ILStart: 0, ILLen: len(img.il)}
	dec := NewDecoder(img, m)

	in, err := dec.Next()
	assert(t, err == nil, "Next returned %v", err)
	assert(t, in.Op == OpBr, "op = %v, want OpBr", in.Op)
	assert(t, in.Int == -2, "branch offset = %d, want -2", in.Int)
}

func TestDecoderTruncatedOperandErrors(t *testing.T) {
	img := &Image{il: []byte{byte(OpLdcI4), 0x01, 0x02}} // needs 4 bytes, only 2 given
	m := MethodRecord{Name: "m", ILStart: 0, ILLen: len(img.il)}
	dec := NewDecoder(img, m)

	_, err := dec.Next()
	assert(t, err != nil, "expected a truncated-operand error")
}

func TestDecoderUnknownOpcodeErrors(t *testing.T) {
	img := &Image{il: []byte{0xF0}} // not in operandShapes, not the extended prefix
	m := MethodRecord{Name: "m", ILStart: 0, ILLen: len(img.il)}
	dec := NewDecoder(img, m)

	_, err := dec.Next()
	assert(t, err != nil, "expected an unsupported-opcode error")
}

func TestDecoderTruncatedExtendedOpcodeErrors(t *testing.T) {
	img := &Image{il: []byte{OpcodeExtendedPrefix}} // prefix with no following byte
	m := MethodRecord{Name: "m", ILStart: 0, ILLen: len(img.il)}
	dec := NewDecoder(img, m)

	_, err := dec.Next()
	assert(t, err != nil, "expected a truncated-extended-opcode error")
}
