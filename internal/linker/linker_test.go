package linker

import (
	"fmt"
	"testing"

	"github.com/nesilc/nesilc/internal/codegen"
	"github.com/nesilc/nesilc/internal/obj"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func minimalResult() *codegen.Result {
	main := obj.NewBlock("main")
	main.Append(obj.Impl(obj.OpNOP))
	main.Append(obj.ToLabel(obj.OpJMP_abs, "main"))
	return &codegen.Result{
		MethodBlocks: []*obj.Block{main},
		UsedBuiltin:  map[string]bool{},
	}
}

func TestLinkProducesHeaderAndSize(t *testing.T) {
	rom, err := Link(Input{Codegen: minimalResult(), Mirroring: MirrorHorizontal})
	assert(t, err == nil, "Link returned %v", err)

	wantLen := 16 + 2*bankSize + charBank
	assert(t, len(rom) == wantLen, "ROM length = %d, want %d", len(rom), wantLen)
	assert(t, string(rom[0:3]) == "NES", "bad magic %q", rom[0:3])
	assert(t, rom[3] == 0x1A, "bad magic terminator %#x", rom[3])
	assert(t, rom[4] == 2, "program-bank count = %d, want 2", rom[4])
	assert(t, rom[5] == 1, "char-bank count = %d, want 1", rom[5])
	assert(t, rom[6]&0x01 == 0, "horizontal mirroring bit set unexpectedly")
}

func TestLinkVerticalMirroringBit(t *testing.T) {
	rom, err := Link(Input{Codegen: minimalResult(), Mirroring: MirrorVertical})
	assert(t, err == nil, "Link returned %v", err)
	assert(t, rom[6]&0x01 == 1, "vertical mirroring bit not set")
}

func TestLinkVectorTriplePointsIntoSecondBank(t *testing.T) {
	rom, err := Link(Input{Codegen: minimalResult(), Mirroring: MirrorHorizontal})
	assert(t, err == nil, "Link returned %v", err)

	bank2 := rom[16+bankSize : 16+2*bankSize]
	nmiLo, nmiHi := bank2[bankSize-6], bank2[bankSize-5]
	resetLo, resetHi := bank2[bankSize-4], bank2[bankSize-3]
	irqLo, irqHi := bank2[bankSize-2], bank2[bankSize-1]

	nmi := int(nmiLo) | int(nmiHi)<<8
	reset := int(resetLo) | int(resetHi)<<8
	irq := int(irqLo) | int(irqHi)<<8

	assert(t, nmi >= obj.BaseAddr, "nmi vector %#x below code base", nmi)
	assert(t, reset >= obj.BaseAddr, "reset vector %#x below code base", reset)
	assert(t, irq == reset, "irq vector %#x should alias reset %#x", irq, reset)
}

func TestLinkMissingMainProducesError(t *testing.T) {
	other := obj.NewBlock("helper")
	other.Append(obj.Impl(obj.OpRTS))
	result := &codegen.Result{
		MethodBlocks: []*obj.Block{other},
		UsedBuiltin:  map[string]bool{},
	}
	// The reset routine always ends in `JMP main`; without a user "main"
	// block that label never resolves, so linking must fail rather than
	// silently produce a ROM that jumps into undefined memory.
	_, err := Link(Input{Codegen: result, Mirroring: MirrorHorizontal})
	assert(t, err != nil, "expected an error when no main method is present")
}

func TestDestructorTableBlockShape(t *testing.T) {
	b, has := destructorTableBlock([]string{"dtor_a", "dtor_b"})
	assert(t, has, "expected a destructor table for a non-empty list")
	assert(t, b.Size() == 2*2+2, "destructor table size = %d, want %d", b.Size(), 6)

	_, has = destructorTableBlock(nil)
	assert(t, !has, "expected no destructor table for an empty list")
}
