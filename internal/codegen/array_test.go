package codegen

import (
	"testing"

	"github.com/nesilc/nesilc/internal/obj"
)

func TestLoadElemU1ConstantIndex(t *testing.T) {
	g := newTestGenerator()
	slot := g.allocLocal(0, false)
	g.locals[0] = localSlot{addr: slot.addr, isArray: true, arrayElem: 1}

	g.push(stackVal{value: 0})                // array reference
	g.push(stackVal{isConst: true, value: 3}) // index

	err := g.loadElemU1(0, 0)
	assert(t, err == nil, "loadElemU1 returned %v", err)

	found := false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpLDA_abs && int(in.Operand.Word) == slot.addr+3 {
			found = true
		}
	}
	assert(t, found, "expected an absolute load at base+3 for a constant index")
}

func TestLoadElemU1RuntimeIndexUsesAbsoluteX(t *testing.T) {
	g := newTestGenerator()
	slot := g.allocLocal(0, false)
	g.locals[0] = localSlot{addr: slot.addr, isArray: true, arrayElem: 1}

	g.push(stackVal{value: 0}) // array reference
	g.push(stackVal{value: 0}) // runtime index

	err := g.loadElemU1(0, 0)
	assert(t, err == nil, "loadElemU1 returned %v", err)

	foundTAX, foundAbsX := false, false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpTAX {
			foundTAX = true
		}
		if in.Opcode == obj.OpLDA_absx {
			foundAbsX = true
		}
	}
	assert(t, foundTAX && foundAbsX, "expected transfer-to-X then an absolute,X load for a runtime index")
}

func TestStoreElemI1ConstantIndexAndValueCollapses(t *testing.T) {
	g := newTestGenerator()
	slot := g.allocLocal(0, false)
	g.locals[0] = localSlot{addr: slot.addr, isArray: true, arrayElem: 1}
	g.checkpoint(0)

	g.push(stackVal{value: 0})                // array reference
	g.push(stackVal{isConst: true, value: 2})  // index
	g.push(stackVal{isConst: true, value: 99}) // value

	err := g.storeElemI1(0, 0)
	assert(t, err == nil, "storeElemI1 returned %v", err)

	foundImm, foundStore := false, false
	for _, in := range g.block.Instrs() {
		if in.Opcode == obj.OpLDA_imm && in.Operand.Byte == 99 {
			foundImm = true
		}
		if in.Opcode == obj.OpSTA_abs && int(in.Operand.Word) == slot.addr+2 {
			foundStore = true
		}
	}
	assert(t, foundImm && foundStore, "expected a direct immediate-load + absolute-store pair for const index/value")
}

func TestStoreElemI1OnStructArrayErrors(t *testing.T) {
	g := newTestGenerator()
	g.locals[0] = localSlot{addr: 0, isStruct: true, structTy: "Point"}

	g.push(stackVal{value: 0})
	g.push(stackVal{isConst: true, value: 0})
	g.push(stackVal{isConst: true, value: 1})

	err := g.storeElemI1(0, 0)
	assert(t, err != nil, "expected an error for stelem_i1 on a struct-element array")
}

func TestNewarrRequiresConstantSize(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{value: 0}) // runtime length

	err := g.newarr("byte", 0)
	assert(t, err != nil, "expected an error for a runtime-computed array length")
}

func TestNewarrRecordsPendingSize(t *testing.T) {
	g := newTestGenerator()
	g.push(stackVal{isConst: true, value: 10})

	err := g.newarr("byte", 0)
	assert(t, err == nil, "newarr returned %v", err)
	assert(t, g.pendingNewarrSize == 10, "pendingNewarrSize = %d, want 10", g.pendingNewarrSize)
}
