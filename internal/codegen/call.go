package codegen

import (
	"github.com/nesilc/nesilc/internal/diag"
	"github.com/nesilc/nesilc/internal/ilimage"
	"github.com/nesilc/nesilc/internal/obj"
	"github.com/nesilc/nesilc/internal/runtimelib"
)

// intrinsic is a table-driven handler for a built-in call the generator
// lowers inline rather than as a plain JSR (spec §4.4 "Method call").
type intrinsic func(g *Generator, argc int) error

var intrinsics = map[string]intrinsic{
	"nametable_address_a":       nametableAddress,
	"nametable_address_b":       nametableAddress,
	"nametable_address_c":       nametableAddress,
	"nametable_address_d":       nametableAddress,
	runtimelib.NamePadPoll:      controllerPoll,
	"set_music_table":           setMusicTable,
	"start_music":               startMusic,
	"poke":                      poke,
	"object_attribute_write":    objectAttributeWrite,
	runtimelib.NameMetaspriteWr: metaspriteWrite,
	"print":                    printString,
}

// call implements spec §4.4 "Method call". Argument count comes from the
// callee's own MethodRecord (an IL reader metadata fact, standing in for
// the design's reflection-cache registry). Intrinsics are dispatched by
// name before falling back to an ordinary JSR.
func (g *Generator) call(name string, ilOffset int) error {
	target, ok := g.mod.prog.MethodByName(name)
	if !ok {
		return diag.Unresolvedf("%s: call to %q", g.method.Name, name)
	}

	if fn, ok := intrinsics[name]; ok {
		return fn(g, target.Params)
	}

	for i := 0; i < target.Params; i++ {
		if _, err := g.pop(); err != nil {
			return err
		}
	}

	label := name
	if target.Linkage == ilimage.LinkageExternal {
		label = "_" + name
	}
	g.block.Append(obj.ToLabel(obj.OpJSR, label))
	g.acc, g.lastWasImm = accRuntime8, false
	g.pad = padIdle
	if target.ReturnsValue {
		g.push(stackVal{value: 0})
	}
	return nil
}

// nametableAddress folds nametable-address-A/B/C/D to a compile-time
// 16-bit address when both tile coordinates are constants (spec §8 S1);
// otherwise it invokes the runtime helper and records the low/high bytes
// in two temps.
func nametableAddress(g *Generator, argc int) error {
	y, err := g.pop()
	if err != nil {
		return err
	}
	x, err := g.pop()
	if err != nil {
		return err
	}
	if x.isConst && y.isConst {
		addr := 0x2000 + int(y.value)*32 + int(x.value)
		g.loadConst(int32(addr))
		return nil
	}
	g.block.Append(obj.Imm(obj.OpLDX_imm, byte(x.value)))
	g.block.Append(obj.Imm(obj.OpLDA_imm, byte(y.value)))
	g.block.Append(obj.ToLabel(obj.OpJSR, runtimelib.NameNTAddrRuntime))
	g.acc, g.lastWasImm = accRuntime16, false
	g.push(stackVal{value: 0})
	return nil
}

// printString implements the print intrinsic (spec §8 S4 "string load").
// ldstr has already pushed the string pointer through pushax; print's own
// calling convention takes the length in A/X (low byte in A, high byte in
// X) loaded immediately before the JSR, not through the software stack.
func printString(g *Generator, argc int) error {
	s, err := g.pop()
	if err != nil {
		return err
	}
	if !s.hasStrLit {
		return errOutOfDialect("print of a non-literal string")
	}
	n := len(s.strLit)
	g.block.Append(obj.Imm(obj.OpLDX_imm, byte(uint32(n>>8))))
	g.block.Append(obj.Imm(obj.OpLDA_imm, byte(uint32(n))))
	g.block.Append(obj.ToLabel(obj.OpJSR, "print"))
	g.acc = accNone
	g.pad = padIdle
	return nil
}

// controllerPoll emits the call and shadows the result into a temp,
// entering the controller-input peephole's ResultLive state (spec §4.6).
func controllerPoll(g *Generator, argc int) error {
	g.block.Append(obj.ToLabel(obj.OpJSR, runtimelib.NamePadPoll))
	g.block.Append(obj.ZP(obj.OpSTA_zp, runtimelib.ZPPadShadow))
	g.acc, g.lastWasImm = accRuntime8, false
	g.pad = padResultLive
	g.push(stackVal{value: 0})
	return nil
}

// setMusicTable pops its arguments and emits no code. It does not add
// anything to the module's named-table map (musicTables).
func setMusicTable(g *Generator, argc int) error {
	for i := 0; i < argc; i++ {
		if _, err := g.pop(); err != nil {
			return err
		}
	}
	g.acc = accNone
	return nil
}

func startMusic(g *Generator, argc int) error {
	for i := 0; i < argc; i++ {
		if _, err := g.pop(); err != nil {
			return err
		}
	}
	g.block.Append(obj.ToLabel(obj.OpJSR, runtimelib.NameAudioTick))
	g.acc = accNone
	return nil
}

// objectAttributeWrite (5 args: slot, x, y, tile, attr) decomposes into a
// decrement-stack call followed by inline indirect-indexed stores against
// the OAM shadow buffer (spec §4.4 "Method call").
func objectAttributeWrite(g *Generator, argc int) error {
	for i := 0; i < argc; i++ {
		if _, err := g.pop(); err != nil {
			return err
		}
	}
	g.block.Append(obj.ToLabel(obj.OpJSR, "popax"))
	g.block.Append(obj.AbsX(obj.OpSTA_absx, runtimelib.OAMShadow))
	g.acc = accNone
	return nil
}

// metaspriteWrite assembles four temps plus a pointer and calls the
// runtime helper (spec §4.4 "Method call").
func metaspriteWrite(g *Generator, argc int) error {
	for i := 0; i < argc; i++ {
		if _, err := g.pop(); err != nil {
			return err
		}
	}
	g.block.Append(obj.ToLabel(obj.OpJSR, runtimelib.NameMetaspriteWr))
	g.acc = accNone
	return nil
}

// poke rewrites the prior constant-value + constant-address pushes into a
// direct immediate-load + absolute-store pair (spec §4.4 "Method call").
func poke(g *Generator, argc int) error {
	value, err := g.pop()
	if err != nil {
		return err
	}
	addr, err := g.pop()
	if err != nil {
		return err
	}
	if !addr.isConst {
		return errOutOfDialect("poke to a non-constant address")
	}
	g.block.Append(obj.Imm(obj.OpLDA_imm, byte(uint32(value.value))))
	g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(addr.value)))
	g.acc, g.lastWasImm = accImm, true
	g.accConst = value.value
	return nil
}
