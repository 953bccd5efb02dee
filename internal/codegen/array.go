package codegen

import "github.com/nesilc/nesilc/internal/obj"

// loadElemU1 implements spec §4.4 "Array load (ldelem_u1)". A constant
// index emits an absolute (or absolute,X-with-zero-base) load; a runtime
// index loads it into X first, then indexes off the array's base address
// or label.
func (g *Generator) loadElemU1(arrayLocal int, ilOffset int) error {
	idx, err := g.pop()
	if err != nil {
		return err
	}
	if _, err := g.pop(); err != nil { // array reference itself
		return err
	}
	slot := g.locals[arrayLocal]

	if g.acc == accRuntime8 || g.acc == accRuntime16 {
		g.spillAcc()
	}

	if idx.isConst {
		if slot.arrayRom {
			g.block.Append(obj.AbsLabel(obj.OpLDA_abs, slot.romLabel))
		} else if idx.value == 0 {
			g.block.Append(obj.Abs(obj.OpLDA_abs, uint16(slot.addr)))
		} else {
			g.block.Append(obj.Abs(obj.OpLDA_abs, uint16(slot.addr+int(idx.value))))
		}
	} else {
		g.block.Append(obj.Impl(obj.OpTAX))
		if slot.arrayRom {
			g.block.Append(obj.AbsXLabel(obj.OpLDA_absx, slot.romLabel))
		} else {
			g.block.Append(obj.AbsX(obj.OpLDA_absx, uint16(slot.addr)))
		}
	}
	g.acc, g.lastWasImm = accRuntime8, false
	g.note(histEntry{kind: histLdelemU1, index: arrayLocal, ilOffset: ilOffset})
	g.push(stackVal{value: 0})
	return nil
}

// storeElemI1 implements spec §4.4 "Array store (stelem_i1)". The full
// design calls for a backward scan that re-synthesizes the index/value
// expressions from scratch; this generator takes the equivalent but
// simpler route of emitting the value and index expressions in the
// ordinary left-to-right order (since the abstract stack already holds
// their folded/runtime results by the time stelem_i1 is reached) and
// still uses the checkpoint/undo facility to collapse a constant index
// and constant value to a single absolute store.
func (g *Generator) storeElemI1(arrayLocal int, ilOffset int) error {
	value, err := g.pop()
	if err != nil {
		return err
	}
	idx, err := g.pop()
	if err != nil {
		return err
	}
	if _, err := g.pop(); err != nil { // array reference
		return err
	}
	slot := g.locals[arrayLocal]
	if slot.isStruct {
		return dialectErrorf("stelem_i1 on a struct-element array (use stfld)")
	}

	if idx.isConst && value.isConst {
		start := ilOffset
		for i := len(g.history) - 1; i >= 0; i-- {
			if g.history[i].kind == histLoadLocal && g.history[i].index == arrayLocal {
				start = g.history[i].ilOffset
				break
			}
		}
		g.undo(start)
		g.block.Append(obj.Imm(obj.OpLDA_imm, byte(uint32(value.value))))
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr+int(idx.value))))
		g.acc, g.accConst, g.lastWasImm = accImm, value.value, true
		return nil
	}

	if idx.isConst {
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr+int(idx.value))))
	} else {
		g.block.Append(obj.Impl(obj.OpTAX))
		g.block.Append(obj.AbsX(obj.OpSTA_absx, uint16(slot.addr)))
	}
	g.acc, g.lastWasImm = accNone, false
	return nil
}

// newarr records the pending array-allocation request, consumed by the
// following stloc (spec §4.4 "Local store", path (c)).
func (g *Generator) newarr(elemType string, ilOffset int) error {
	size, err := g.pop()
	if err != nil {
		return err
	}
	if !size.isConst {
		return dialectErrorf("newarr with a runtime-computed length")
	}
	g.note(histEntry{kind: histNewarr, ilOffset: ilOffset})
	g.pendingNewarrSize = int(size.value)
	if _, ok := g.mod.prog.Layouts[elemType]; ok {
		g.pendingNewarrStructTy = elemType
	}
	return nil
}

func dialectErrorf(detail string) error { return errOutOfDialect(detail) }
