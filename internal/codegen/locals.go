package codegen

import (
	"github.com/nesilc/nesilc/internal/obj"
)

// loadLocal implements "local load" (spec §4.4): byte-array alias locals
// push their address via pushax then load their size; word locals load
// both bytes into A:X; otherwise a single byte loads from the local's
// absolute address. A live runtime value already in the accumulator is
// spilled first.
func (g *Generator) loadLocal(index int, ilOffset int) {
	g.note(histEntry{kind: histLoadLocal, index: index, ilOffset: ilOffset})
	slot := g.localSlot(index, g.wordLocal(index))

	if g.acc == accRuntime8 || g.acc == accRuntime16 {
		g.spillAcc()
	}

	if slot.isArray {
		if slot.arrayRom {
			g.block.Append(obj.LabelLo(obj.OpLDA_imm, slot.romLabel))
			g.block.Append(obj.LabelHi(obj.OpLDX_imm, slot.romLabel))
		} else {
			g.block.Append(obj.Imm(obj.OpLDA_imm, byte(slot.addr)))
			g.block.Append(obj.Imm(obj.OpLDX_imm, byte(slot.addr>>8)))
		}
		g.block.Append(obj.ToLabel(obj.OpJSR, "pushax"))
		g.block.Append(obj.Imm(obj.OpLDA_imm, byte(slot.arrayElem)))
		g.acc, g.lastWasImm = accImm, true
		g.accConst = int32(slot.arrayElem)
		g.push(stackVal{value: 0})
		return
	}

	if slot.word {
		g.block.Append(obj.Abs(obj.OpLDA_abs, uint16(slot.addr)))
		g.block.Append(obj.Abs(obj.OpLDX_abs, uint16(slot.addr+1)))
		g.acc, g.lastWasImm = accRuntime16, false
		g.push(stackVal{value: 0})
		return
	}

	g.block.Append(obj.Abs(obj.OpLDA_abs, uint16(slot.addr)))
	g.acc, g.lastWasImm = accRuntime8, false
	g.pad = padIdle
	g.push(stackVal{value: 0})
}

// storeLocal implements "local store" (spec §4.4). Path selection:
// pending INC/DEC tracker, ldtoken-preceded byte-array alias, newarr alloc,
// runtime-value store, or compile-time re-target of the just-emitted
// immediate load.
func (g *Generator) storeLocal(index int, ilOffset int) {
	if g.pendingIncDec && g.pendingIncLocal == index {
		g.applyPendingIncDec(ilOffset)
		return
	}

	if g.pendingByteArrayLiteral != "" {
		label := g.pendingByteArrayLiteral
		g.pendingByteArrayLiteral = ""
		g.locals[index] = localSlot{isArray: true, arrayRom: true, romLabel: label, arrayElem: 1}
		g.discardAccAfterStore()
		return
	}

	if g.pendingNewarrSize > 0 {
		size := g.pendingNewarrSize
		structTy := g.pendingNewarrStructTy
		g.pendingNewarrSize, g.pendingNewarrStructTy = 0, ""
		elem := 1
		if structTy != "" {
			if layout, ok := g.mod.prog.Layouts[structTy]; ok {
				elem = layout.Size
			}
		}
		addr := g.mod.nextLocal
		g.mod.nextLocal += size * elem
		if g.mod.nextLocal > g.mod.maxLocal {
			g.mod.maxLocal = g.mod.nextLocal
		}
		g.locals[index] = localSlot{addr: addr, isArray: true, arrayElem: elem, isStruct: structTy != "", structTy: structTy}
		g.discardAccAfterStore()
		return
	}

	top := g.peek()
	needsWord := top.isConst && (top.value < 0 || top.value > 255)
	wordHint := g.wordLocal(index) || g.acc == accRuntime16 || needsWord
	slot := g.localSlot(index, wordHint)

	switch g.acc {
	case accImm:
		// Re-target the just-emitted immediate load: remove it and
		// re-emit directly against the local's absolute address.
		if instrs := g.block.Instrs(); len(instrs) > 0 {
			last := instrs[len(instrs)-1]
			if last.Opcode == obj.OpLDA_imm && last.Operand.Byte == byte(uint32(g.accConst)) {
				g.block.RemoveLastN(1)
			}
		}
		g.storeConstAt(g.accConst, slot)
	case accRuntime16:
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr)))
		g.block.Append(obj.Impl(obj.OpTXA))
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr+1)))
		g.block.Append(obj.Impl(obj.OpTXA)) // restore X-carrying convention is moot post-store
	default:
		if top.isConst {
			// The value never passed through loadConst (a folded
			// intrinsic result, e.g. nametableAddress's compile-time
			// fold) — nothing has been loaded into A yet, so it must be
			// materialized here rather than stored from whatever A holds.
			g.storeConstAt(top.value, slot)
		} else {
			g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr)))
			if slot.word {
				g.block.Append(obj.Imm(obj.OpLDA_imm, 0x00))
				g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr+1)))
			}
		}
	}
	g.discardAccAfterStore()
}

// storeConstAt emits the immediate-load/absolute-store pair(s) for a
// compile-time constant, sized by either the local's own word-ness or the
// value's own range — a fold can reach a local the word-local pre-pass
// never flagged (e.g. nametableAddress's 16-bit address fold).
func (g *Generator) storeConstAt(v int32, slot localSlot) {
	if slot.word || v < 0 || v > 255 {
		g.block.Append(obj.Imm(obj.OpLDA_imm, byte(uint32(v))))
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr)))
		g.block.Append(obj.Imm(obj.OpLDA_imm, byte(uint32(v)>>8)))
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr+1)))
		return
	}
	g.block.Append(obj.Imm(obj.OpLDA_imm, byte(v)))
	g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr)))
}

func (g *Generator) discardAccAfterStore() {
	g.pop()
	g.acc, g.lastWasImm = accNone, false
	g.pad = padIdle
}

// applyPendingIncDec finalizes the load-local/load-1/add-or-sub/store-local
// idiom into a single INC/DEC at the local's address, undoing everything
// the three prior IL instructions emitted via their checkpoints.
func (g *Generator) applyPendingIncDec(ilOffset int) {
	slot := g.locals[g.pendingIncLocal]
	g.undo(g.pendingIncDecStartOffset)
	op := byte(obj.OpINC_abs)
	if !g.pendingIncIsAdd {
		op = obj.OpDEC_abs
	}
	g.block.Append(obj.Abs(op, uint16(slot.addr)))
	g.pendingIncDec = false
	g.pop()
	g.acc, g.lastWasImm = accNone, false
}

// loadArg maps ldarg_s to the local allocated for that parameter index;
// the prologue has already popped every parameter off the software stack
// into these slots (spec §4.4 "method call" prologue convention).
func (g *Generator) loadArg(index int, ilOffset int) {
	g.loadLocal(index, ilOffset)
}

// wordLocal reports whether the word-local pre-pass (spec §4.1) flagged
// this local index for the current method.
func (g *Generator) wordLocal(index int) bool {
	return g.mod.prog.WordLocals[g.method.Name][index]
}
