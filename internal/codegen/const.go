package codegen

import "github.com/nesilc/nesilc/internal/obj"

// loadConst implements "constant loads" (spec §4.4): push the value on the
// abstract stack, spilling a clobbered accumulator first, and suppress a
// redundant reload when the accumulator already holds this exact
// compile-time value.
func (g *Generator) loadConst(v int32) {
	g.push(stackVal{isConst: true, value: v})
	g.note(histEntry{kind: histLoadConst, value: v})

	if g.acc == accImm && g.accConst == v && g.lastWasImm {
		return
	}
	if g.acc == accRuntime8 || g.acc == accRuntime16 {
		g.spillAcc()
	}

	if v >= 0 && v <= 255 {
		g.block.Append(obj.Imm(obj.OpLDA_imm, byte(v)))
		g.acc, g.accConst, g.lastWasImm = accImm, v, true
		g.pad = padIdle
		return
	}
	lo := byte(uint32(v))
	hi := byte(uint32(v) >> 8)
	g.block.Append(obj.Imm(obj.OpLDA_imm, lo))
	g.block.Append(obj.Imm(obj.OpLDX_imm, hi))
	g.acc, g.accConst, g.lastWasImm = accRuntime16, v, false
	g.pad = padIdle
}
