package codegen

import (
	"testing"

	"github.com/nesilc/nesilc/internal/ilimage"
	"github.com/nesilc/nesilc/internal/obj"
	"github.com/nesilc/nesilc/internal/runtimelib"
)

func newTestGeneratorWithMethods(methods ...ilimage.MethodRecord) *Generator {
	g := newTestGenerator()
	g.mod.prog.Methods = methods
	return g
}

func TestCallToUnknownMethodIsUnresolved(t *testing.T) {
	g := newTestGeneratorWithMethods()
	err := g.call("nope", 0)
	assert(t, err != nil, "expected an unresolved-call error for a method with no metadata")
}

func TestCallOrdinaryMethodEmitsJSR(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: "helper", Linkage: ilimage.LinkageInternal, Params: 1})
	g.push(stackVal{isConst: true, value: 1})

	err := g.call("helper", 0)
	assert(t, err == nil, "call returned %v", err)

	found := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpJSR && in.Operand.Kind == obj.OperandLabel && in.Operand.Label == "helper" {
			found = true
		}
	}
	assert(t, found, "expected a JSR to the callee's own label for internal linkage")
}

func TestCallExternalMethodPrefixesLabel(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: "helper", Linkage: ilimage.LinkageExternal})

	err := g.call("helper", 0)
	assert(t, err == nil, "call returned %v", err)

	found := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpJSR && in.Operand.Label == "_helper" {
			found = true
		}
	}
	assert(t, found, "expected an external call's label to be prefixed with an underscore")
}

func TestCallIntrinsicDispatchesInsteadOfJSRToSelf(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: runtimelib.NamePadPoll, Linkage: ilimage.LinkageBuiltin})

	err := g.call(runtimelib.NamePadPoll, 0)
	assert(t, err == nil, "call returned %v", err)
	assert(t, g.pad == padResultLive, "expected controllerPoll's intrinsic to enter the ResultLive peephole state")

	foundJSR := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpJSR && in.Operand.Label == runtimelib.NamePadPoll {
			foundJSR = true
		}
	}
	assert(t, foundJSR, "expected the intrinsic to still call through to the runtime routine")
}

func TestNametableAddressFoldsConstantCoordinates(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: "nametable_address_a", Linkage: ilimage.LinkageBuiltin})
	g.push(stackVal{isConst: true, value: 2}) // x
	g.push(stackVal{isConst: true, value: 1}) // y

	err := g.call("nametable_address_a", 0)
	assert(t, err == nil, "call returned %v", err)

	top, err := g.pop()
	assert(t, err == nil, "pop returned %v", err)
	want := int32(0x2000 + 1*32 + 2)
	assert(t, top.isConst && top.value == want, "folded nametable address = %+v, want const %d", top, want)
}

func TestPrintLoadsStringLengthBeforeCall(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: "print", Linkage: ilimage.LinkageBuiltin, Params: 1})
	g.push(stackVal{value: 0, strLit: "HI", hasStrLit: true})

	err := g.call("print", 0)
	assert(t, err == nil, "call returned %v", err)

	var ldx, lda, jsr = -1, -1, -1
	for i, in := range g.block.Instrs() {
		switch {
		case in.Opcode == obj.OpLDX_imm:
			ldx = i
		case in.Opcode == obj.OpLDA_imm:
			lda = i
		case in.Opcode == obj.OpJSR && in.Operand.Label == "print":
			jsr = i
		}
	}
	assert(t, ldx >= 0 && lda >= 0 && jsr >= 0, "expected LDX/LDA #imm then JSR print, got %+v", g.block.Instrs())
	assert(t, ldx < jsr && lda < jsr, "the length load must precede the call")
	assert(t, g.block.Instrs()[ldx].Operand.Byte == 0, "high byte of a 2-char length should be 0")
	assert(t, g.block.Instrs()[lda].Operand.Byte == 2, "low byte of \"HI\"'s length should be 2")
}

func TestPrintOfNonLiteralIsOutOfDialect(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: "print", Linkage: ilimage.LinkageBuiltin, Params: 1})
	g.push(stackVal{value: 0})

	err := g.call("print", 0)
	assert(t, err != nil, "expected an error when the string pointer has no known literal")
}

func TestPokeRequiresConstantAddress(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: "poke", Linkage: ilimage.LinkageBuiltin})
	g.push(stackVal{value: 0}) // runtime address
	g.push(stackVal{isConst: true, value: 7})

	err := g.call("poke", 0)
	assert(t, err != nil, "expected an error for a poke to a non-constant address")
}

func TestPokeEmitsLoadAndStore(t *testing.T) {
	g := newTestGeneratorWithMethods(ilimage.MethodRecord{Name: "poke", Linkage: ilimage.LinkageBuiltin})
	g.push(stackVal{isConst: true, value: 0x0300})
	g.push(stackVal{isConst: true, value: 9})

	err := g.call("poke", 0)
	assert(t, err == nil, "call returned %v", err)

	foundStore := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpSTA_abs && in.Operand.Word == 0x0300 {
			foundStore = true
		}
	}
	assert(t, foundStore, "expected poke to store directly at the constant target address")
}
