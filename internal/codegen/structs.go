package codegen

import "github.com/nesilc/nesilc/internal/obj"

// loadLocalAddr implements `ldloca`. The opcode itself carries no type
// token, so the struct's zero-page allocation is deferred to the first
// stfld/ldfld that names a field — at that point the field token's owning
// type gives the layout (spec §4.4 "Struct fields" "on first use").
func (g *Generator) loadLocalAddr(index int) {
	g.pendingStructLocal = index
	if slot, ok := g.locals[index]; ok && slot.isStruct {
		g.push(stackVal{value: int32(slot.addr)})
		return
	}
	g.push(stackVal{value: -1}) // resolved lazily once the field's type is known
}

// structSlotFor returns (allocating if necessary) the zero-page slot for
// a ldloca-addressed local once its struct type is known from a field
// token.
func (g *Generator) structSlotFor(index int, structTy string) localSlot {
	if slot, ok := g.locals[index]; ok && slot.isStruct {
		return slot
	}
	size := 0
	if layout, ok := g.mod.prog.Layouts[structTy]; ok {
		size = layout.Size
	}
	addr := g.mod.nextLocal
	g.mod.nextLocal += size
	if g.mod.nextLocal > g.mod.maxLocal {
		g.mod.maxLocal = g.mod.nextLocal
	}
	slot := localSlot{addr: addr, isStruct: true, structTy: structTy}
	g.locals[index] = slot
	return slot
}

// storeField implements `stfld`: an absolute store at base+field-offset,
// where base came from a preceding ldloca or ldelema (spec §4.4 "Struct
// fields"). A base of -1 marks a ldloca whose allocation was deferred
// until this field token revealed the struct's type.
func (g *Generator) storeField(structTy, fieldName string, ilOffset int) error {
	value, err := g.pop()
	if err != nil {
		return err
	}
	base, err := g.pop()
	if err != nil {
		return err
	}
	addr, static, err := g.fieldAddr(base, structTy, fieldName)
	if err != nil {
		return err
	}

	if !static {
		baseAddr, offset, err := g.fieldAddrX(g.pendingStructLocal, structTy, fieldName)
		if err != nil {
			return err
		}
		if value.isConst {
			g.block.Append(obj.Imm(obj.OpLDA_imm, byte(uint32(value.value))))
			g.acc, g.accConst, g.lastWasImm = accImm, value.value, true
		}
		g.block.Append(obj.AbsX(obj.OpSTA_absx, uint16(baseAddr+offset)))
		if !value.isConst {
			g.acc, g.lastWasImm = accNone, false
		}
		return nil
	}

	if value.isConst {
		g.block.Append(obj.Imm(obj.OpLDA_imm, byte(uint32(value.value))))
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(addr)))
		g.acc, g.accConst, g.lastWasImm = accImm, value.value, true
	} else {
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(addr)))
		g.acc, g.lastWasImm = accNone, false
	}
	return nil
}

// loadField implements `ldfld`.
func (g *Generator) loadField(structTy, fieldName string) error {
	base, err := g.pop()
	if err != nil {
		return err
	}
	addr, static, err := g.fieldAddr(base, structTy, fieldName)
	if err != nil {
		return err
	}
	if g.acc == accRuntime8 || g.acc == accRuntime16 {
		g.spillAcc()
	}
	if !static {
		baseAddr, offset, err := g.fieldAddrX(g.pendingStructLocal, structTy, fieldName)
		if err != nil {
			return err
		}
		g.block.Append(obj.AbsX(obj.OpLDA_absx, uint16(baseAddr+offset)))
	} else {
		g.block.Append(obj.Abs(obj.OpLDA_abs, uint16(addr)))
	}
	g.acc, g.lastWasImm = accRuntime8, false
	g.push(stackVal{value: 0})
	return nil
}

// elemAddrRuntimeSentinel marks a stackVal pushed by loadElemAddr's
// runtime-index path: the element's base address isn't known at compile
// time, only reachable via absolute,X with X already holding the
// struct-sized byte offset into arrayLocal's slot.
const elemAddrRuntimeSentinel = -2

// fieldAddr resolves base+field-offset, allocating a deferred
// ldloca-addressed struct the first time its type becomes known. ok is
// false when the base is only reachable via absolute,X (a runtime-indexed
// ldelema); the caller must use fieldAddrX instead.
func (g *Generator) fieldAddr(base stackVal, structTy, fieldName string) (addr int, ok bool, err error) {
	if base.value == elemAddrRuntimeSentinel {
		return 0, false, nil
	}
	baseAddr := int(base.value)
	if base.value == -1 {
		slot := g.structSlotFor(g.pendingStructLocal, structTy)
		baseAddr = slot.addr
	}
	layout, has := g.mod.prog.Layouts[structTy]
	if !has {
		return 0, true, dialectErrorf("unknown struct type " + structTy)
	}
	offset, has := layout.FieldOffset(fieldName)
	if !has {
		return 0, true, dialectErrorf("unknown struct field " + structTy + "." + fieldName)
	}
	return baseAddr + offset, true, nil
}

// fieldAddrX resolves the field offset alone for the absolute,X path; the
// array slot's own base address is the instruction's operand and X already
// carries the element's byte offset into it (spec §4.4 "Struct fields").
func (g *Generator) fieldAddrX(arrayLocal int, structTy, fieldName string) (baseAddr, offset int, err error) {
	slot := g.locals[arrayLocal]
	layout, ok := g.mod.prog.Layouts[structTy]
	if !ok {
		return 0, 0, dialectErrorf("unknown struct type " + structTy)
	}
	offset, ok = layout.FieldOffset(fieldName)
	if !ok {
		return 0, 0, dialectErrorf("unknown struct field " + structTy + "." + fieldName)
	}
	return slot.addr, offset, nil
}

// loadElemAddr implements `ldelema` on a struct array (spec §4.4 "Struct
// fields"): a constant index computes base+index*size at compile time; a
// runtime index multiplies by the struct size via shift-and-add (only
// power-of-two sizes are supported at runtime, matching the generator's
// general power-of-two-only multiply restriction), leaving the element
// offset addressable via absolute,X for the following field access.
func (g *Generator) loadElemAddr(arrayLocal int, structTy string, ilOffset int) error {
	idx, err := g.pop()
	if err != nil {
		return err
	}
	if _, err := g.pop(); err != nil {
		return err
	}
	slot := g.locals[arrayLocal]
	layout := g.mod.prog.Layouts[structTy]

	if idx.isConst {
		addr := slot.addr + int(idx.value)*layout.Size
		g.pendingStructLocal = arrayLocal
		g.push(stackVal{isConst: true, value: int32(addr)})
		return nil
	}

	shift, ok := powerOfTwoShift(stackVal{isConst: true, value: int32(layout.Size)})
	if !ok {
		return dialectErrorf("runtime struct-array index with a non-power-of-two element size")
	}
	for i := 0; i < shift; i++ {
		g.block.Append(obj.Impl(obj.OpASL_a))
	}
	g.block.Append(obj.Impl(obj.OpTAX))
	g.pendingStructLocal = arrayLocal
	g.push(stackVal{value: elemAddrRuntimeSentinel})
	return nil
}
