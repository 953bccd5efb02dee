// Package linker assembles the code generator's method blocks, the
// runtime library, and any external assembly files into one program
// image, resolves every label across two passes, and emits the final NES
// ROM (spec §4.5).
package linker

import (
	"fmt"

	"github.com/nesilc/nesilc/internal/asmsrc"
	"github.com/nesilc/nesilc/internal/codegen"
	"github.com/nesilc/nesilc/internal/diag"
	"github.com/nesilc/nesilc/internal/obj"
	"github.com/nesilc/nesilc/internal/runtimelib"
)

// Mirroring selects the cartridge's nametable-mirroring flag bit.
type Mirroring int

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
)

// Input is everything the linker needs to produce a ROM image.
type Input struct {
	Codegen   *codegen.Result
	AsmFiles  []*asmsrc.File
	Mirroring Mirroring
}

const (
	bankSize   = 0x4000 // 16 KiB program bank
	charBank   = 0x2000 // 8 KiB character bank
	vectorSize = 6       // NMI, RESET, IRQ, 2 bytes each
)

// Link builds the full program in layout order (spec §4.5 "Layout"),
// resolves addresses in two passes, and emits the ROM bytes.
func Link(in Input) ([]byte, error) {
	lib := runtimelib.Build(in.Codegen.UsedBuiltin)

	mainBlock, userBlocks := splitMain(in.Codegen.MethodBlocks)

	var asmBlocks []*obj.Block
	var chars []byte
	for _, f := range in.AsmFiles {
		asmBlocks = append(asmBlocks, f.Blocks...)
		chars = append(chars, f.Chars...)
	}

	destructorTable, hasDestructors := destructorTableBlock(in.Codegen.Destructors)

	prog := obj.NewProgram()

	// (1)+(2) reset/interrupt block followed by the rest of the runtime
	// helpers — CoreRoutines() already places reset and nmi first, so this
	// single append satisfies both layout slots at once.
	for _, b := range lib.All() {
		prog.Add(b)
	}
	// (3) compile-time constant subroutines: blocks contributed by
	// external assembly files' CODE segment.
	for _, b := range asmBlocks {
		prog.Add(b)
	}
	// (4) main, (5) the rest of the user's methods.
	if mainBlock != nil {
		prog.Add(mainBlock)
	}
	for _, b := range userBlocks {
		prog.Add(b)
	}
	// (6) epilogue helpers whose body depends on the local count.
	prog.Add(runtimelib.BssZero(in.Codegen.LocalCount))
	prog.Add(runtimelib.Donelib("destructor_table", hasDestructors))
	// (7) data tables.
	for _, b := range in.Codegen.DataBlocks {
		prog.Add(b)
	}
	// (8) destructor-table trampoline data.
	if hasDestructors {
		prog.Add(destructorTable)
	}

	if err := prog.ResolvePass1(obj.BaseAddr); err != nil {
		return nil, diag.Wrap(diag.Unresolved, "address resolution", err)
	}

	code, err := emit(prog)
	if err != nil {
		return nil, err
	}

	return assembleROM(code, prog.Globals, chars, in.Mirroring)
}

// splitMain separates out the method block named "main" (spec §4.5
// layout item 4) so it can be placed immediately after the compile-time
// constant subroutines and before the remaining user methods.
func splitMain(blocks []*obj.Block) (*obj.Block, []*obj.Block) {
	var main *obj.Block
	var rest []*obj.Block
	for _, b := range blocks {
		if b.Label == "main" && main == nil {
			main = b
			continue
		}
		rest = append(rest, b)
	}
	return main, rest
}

// destructorTableBlock builds the indirection table donelib walks: each
// entry is a destructor's address minus one (the classic push-then-RTS
// calling idiom), terminated by a zero sentinel word.
func destructorTableBlock(destructors []string) (*obj.Block, bool) {
	if len(destructors) == 0 {
		return nil, false
	}
	b := obj.NewBlock("destructor_table")
	for _, label := range destructors {
		b.Append(obj.LabelWordMinus1(label))
	}
	b.Append(obj.Raw([]byte{0x00, 0x00}))
	return b, true
}

// emit runs the second resolution pass: walking every block's
// instructions in order, resolving each against the combined
// local-then-global label map, and concatenating the resulting bytes.
func emit(prog *obj.Program) ([]byte, error) {
	var code []byte
	addr := obj.BaseAddr
	for _, b := range prog.Blocks {
		locals := b.LocalLabels(addr)
		resolve := resolverFor(prog.Globals, locals)
		for _, in := range b.Instrs() {
			bytes, err := encodeInstruction(in, addr, resolve)
			if err != nil {
				return nil, fmt.Errorf("linker: block %q: %w", b.Label, err)
			}
			code = append(code, bytes...)
			addr += len(bytes)
		}
	}
	return code, nil
}
