package codegen

import (
	"testing"

	"github.com/nesilc/nesilc/internal/ilimage"
	"github.com/nesilc/nesilc/internal/obj"
	"github.com/nesilc/nesilc/internal/runtimelib"
)

func newTestGenerator() *Generator {
	mod := &Module{
		prog:           &ilimage.Program{Layouts: map[string]ilimage.StructLayout{}},
		nextLocal:      runtimelib.ZeroPageBase,
		stringLabel:    map[string]string{},
		byteArrayLabel: map[string]string{},
		byteArrayData:  map[string][]byte{},
		musicTables:    map[string][]uint16{},
	}
	return newGenerator(mod, ilimage.MethodRecord{Name: "m"})
}

func TestAddConstantsFold(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{isConst: true, value: 2})
	g.push(stackVal{isConst: true, value: 3})

	err := g.addOrSub(true, 0)
	assert(t, err == nil, "addOrSub returned %v", err)
	assert(t, g.block.Len() > 0, "expected a constant load to be emitted")

	top, err := g.pop()
	assert(t, err == nil, "pop returned %v", err)
	assert(t, top.isConst && top.value == 5, "folded sum = %+v, want isConst=true value=5", top)
}

func TestSubRuntimeOperandEmitsSBC(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{value: 0}) // runtime a
	g.push(stackVal{isConst: true, value: 1})

	err := g.addOrSub(false, 0)
	assert(t, err == nil, "addOrSub returned %v", err)

	foundSBC := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpSBC_imm {
			foundSBC = true
		}
	}
	assert(t, foundSBC, "expected an SBC #imm for a runtime-minus-constant subtraction")
}

func TestAddConstantFirstOperandEmitsImmediateADC(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{isConst: true, value: 5}) // constant a
	g.push(stackVal{value: 0})                // runtime b

	err := g.addOrSub(true, 0)
	assert(t, err == nil, "addOrSub returned %v", err)

	foundImm := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpADC_imm && in.Operand.Byte == 5 {
			foundImm = true
		}
	}
	assert(t, foundImm, "expected ADC #5 when the constant is the first operand")
}

func TestMulByPowerOfTwoShifts(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{value: 0}) // runtime operand
	g.push(stackVal{isConst: true, value: 4})

	err := g.mul(0)
	assert(t, err == nil, "mul returned %v", err)

	count := 0
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpASL_a {
			count++
		}
	}
	assert(t, count == 2, "expected 2 ASL for a *4, got %d", count)
}

func TestMulByNonPowerOfTwoIsOutOfDialect(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{value: 0})
	g.push(stackVal{isConst: true, value: 3})

	err := g.mul(0)
	assert(t, err != nil, "expected an error for runtime multiply by 3")
}

func TestDivOrRemConstantsFold(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{isConst: true, value: 17})
	g.push(stackVal{isConst: true, value: 4})

	err := g.divOrRem(true, 0)
	assert(t, err == nil, "divOrRem returned %v", err)
	top, _ := g.pop()
	assert(t, top.isConst && top.value == 1, "17 %% 4 folded = %+v, want 1", top)
}

func TestDivOrRemRuntimeUsesShiftOrMask(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{value: 0})
	g.push(stackVal{isConst: true, value: 8})

	err := g.divOrRem(false, 0)
	assert(t, err == nil, "divOrRem returned %v", err)
	count := 0
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpLSR_a {
			count++
		}
	}
	assert(t, count == 3, "expected 3 LSR for /8, got %d", count)
}

func TestShiftOpConstantsFold(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{isConst: true, value: 1})
	g.push(stackVal{isConst: true, value: 3})

	err := g.shiftOp(true, 0)
	assert(t, err == nil, "shiftOp returned %v", err)
	top, _ := g.pop()
	assert(t, top.isConst && top.value == 8, "1<<3 folded = %+v, want 8", top)
}

func TestShiftOpRuntimeAmountIsOutOfDialect(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{isConst: true, value: 1})
	g.push(stackVal{value: 0}) // runtime shift amount

	err := g.shiftOp(true, 0)
	assert(t, err != nil, "expected an error for a runtime shift amount")
}

func TestNegConstantFolds(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{isConst: true, value: 5})

	err := g.neg()
	assert(t, err == nil, "neg returned %v", err)
	top, _ := g.pop()
	assert(t, top.isConst && top.value == -5, "neg(5) folded = %+v, want -5", top)
}

func TestBitwiseOpAgainstConstant(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{value: 0}) // runtime a
	g.push(stackVal{isConst: true, value: 0x0F})

	err := g.bitwiseOp(obj.OpAND_imm, obj.OpAND_zp, 0)
	assert(t, err == nil, "bitwiseOp returned %v", err)

	found := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpAND_imm && in.Operand.Byte == 0x0F {
			found = true
		}
	}
	assert(t, found, "expected an AND #$0F against the constant operand")
}

func TestBitwiseOpAfterControllerPollRereadsShadow(t *testing.T) {
	g := newTestGenerator()
	g.pad = padResultLive
	g.push(stackVal{value: 0})
	g.push(stackVal{isConst: true, value: 0x01})

	err := g.bitwiseOp(obj.OpAND_imm, obj.OpAND_zp, 0)
	assert(t, err == nil, "bitwiseOp returned %v", err)
	assert(t, g.pad == padResultLiveAnd, "first mask test should enter ResultLiveAnd")

	g.push(stackVal{value: 0})
	g.push(stackVal{isConst: true, value: 0x02})
	err = g.bitwiseOp(obj.OpAND_imm, obj.OpAND_zp, 0)
	assert(t, err == nil, "bitwiseOp returned %v", err)

	foundReload := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpLDA_zp {
			foundReload = true
		}
	}
	assert(t, foundReload, "expected a second mask test to reload from the pad shadow temp")
}

func TestNegRuntimeEmitsTwosComplement(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{value: 0})

	err := g.neg()
	assert(t, err == nil, "neg returned %v", err)
	foundEOR := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpEOR_imm {
			foundEOR = true
		}
	}
	assert(t, foundEOR, "expected an EOR #$FF/ADC #1 two's-complement sequence")
}
