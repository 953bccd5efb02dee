package codegen

import (
	"fmt"

	"github.com/nesilc/nesilc/internal/diag"
	"github.com/nesilc/nesilc/internal/ilimage"
	"github.com/nesilc/nesilc/internal/obj"
)

// run lowers the method's whole decoded-IL body into g.block.
func (g *Generator) run() error {
	g.prologue()

	dec := ilimage.NewDecoder(g.mod.prog.Image, g.method)
	for !dec.Done() {
		in, err := dec.Next()
		if err != nil {
			return fmt.Errorf("codegen: %s: %w", g.method.Name, err)
		}
		g.block.SetNextLabel(g.offsetLabel(in.Offset))
		g.checkpoint(in.Offset)
		if err := g.step(in); err != nil {
			return fmt.Errorf("codegen: %s at IL offset %d: %w", g.method.Name, in.Offset, err)
		}
	}

	g.epilogue()
	return nil
}

// prologue pops each parameter off the software stack into an allocated
// local slot, in reverse declaration order (the caller pushes arguments
// in declaration order, so the last one is on top, spec §4.4 "Method
// call").
func (g *Generator) prologue() {
	for i := g.method.Params - 1; i >= 0; i-- {
		slot := g.allocLocal(i, false)
		g.block.Append(obj.ToLabel(obj.OpJSR, "popa"))
		g.block.Append(obj.Abs(obj.OpSTA_abs, uint16(slot.addr)))
	}
}

func (g *Generator) epilogue() {
	g.block.Append(obj.Impl(obj.OpRTS))
}

// step dispatches one decoded IL instruction to its handler.
func (g *Generator) step(in ilimage.Instr) error {
	switch in.Op {
	case ilimage.OpNop, ilimage.OpNop2:
		return nil

	case ilimage.OpLdcI4S, ilimage.OpLdcI4:
		g.loadConst(in.Int)
		return nil
	case ilimage.OpLdcI40:
		g.loadConst(0)
		return nil

	case ilimage.OpLdloc0:
		g.loadLocal(0, in.Offset)
		return nil
	case ilimage.OpLdloc1:
		g.loadLocal(1, in.Offset)
		return nil
	case ilimage.OpLdloc2:
		g.loadLocal(2, in.Offset)
		return nil
	case ilimage.OpLdloc3:
		g.loadLocal(3, in.Offset)
		return nil
	case ilimage.OpLdlocS:
		g.loadLocal(int(in.Int), in.Offset)
		return nil

	case ilimage.OpStloc0:
		g.storeLocal(0, in.Offset)
		return nil
	case ilimage.OpStloc1:
		g.storeLocal(1, in.Offset)
		return nil
	case ilimage.OpStloc2:
		g.storeLocal(2, in.Offset)
		return nil
	case ilimage.OpStloc3:
		g.storeLocal(3, in.Offset)
		return nil
	case ilimage.OpStlocS:
		g.storeLocal(int(in.Int), in.Offset)
		return nil

	case ilimage.OpLdargS:
		g.loadArg(int(in.Int), in.Offset)
		return nil

	case ilimage.OpLdtoken:
		// A byte-array alias: the token resolved to the literal's raw
		// bytes (spec §4.1 "embedded byte arrays"); stash the label for
		// the stloc that follows (spec §4.4 "Local store" path (b)).
		if in.Raw != nil {
			g.pendingByteArrayLiteral = g.mod.internByteArray(in.Raw)
		}
		return nil

	case ilimage.OpLdstr:
		label := g.mod.internString(in.Name)
		if g.acc == accRuntime8 || g.acc == accRuntime16 {
			g.spillAcc()
		}
		g.block.Append(obj.LabelLo(obj.OpLDA_imm, label))
		g.block.Append(obj.LabelHi(obj.OpLDX_imm, label))
		g.block.Append(obj.ToLabel(obj.OpJSR, "pushax"))
		g.acc, g.lastWasImm = accRuntime16, false
		g.push(stackVal{value: 0, strLit: in.Name, hasStrLit: true})
		return nil

	case ilimage.OpDup:
		if len(g.stack) == 0 {
			return fmt.Errorf("dup on an empty abstract stack")
		}
		g.push(g.stack[len(g.stack)-1])
		return nil
	case ilimage.OpPop:
		_, err := g.pop()
		return err

	case ilimage.OpAdd:
		return g.addOrSub(true, in.Offset)
	case ilimage.OpSub:
		return g.addOrSub(false, in.Offset)
	case ilimage.OpMul:
		return g.mul(in.Offset)
	case ilimage.OpDiv:
		return g.divOrRem(false, in.Offset)
	case ilimage.OpRem:
		return g.divOrRem(true, in.Offset)
	case ilimage.OpAnd:
		return g.bitwiseOp(obj.OpAND_imm, obj.OpAND_zp, in.Offset)
	case ilimage.OpOr:
		return g.bitwiseOp(obj.OpORA_imm, obj.OpORA_zp, in.Offset)
	case ilimage.OpXor:
		return g.bitwiseOp(obj.OpEOR_imm, obj.OpEOR_zp, in.Offset)
	case ilimage.OpShl:
		return g.shiftOp(true, in.Offset)
	case ilimage.OpShr:
		return g.shiftOp(false, in.Offset)
	case ilimage.OpNeg:
		return g.neg()

	case ilimage.OpConvU1, ilimage.OpConvU2, ilimage.OpConvI4:
		// Widening/narrowing is a bookkeeping no-op at the instruction
		// level; conv.u2 immediately preceding a store is what the
		// word-local pre-pass already captured (spec §4.1).
		return nil

	case ilimage.OpCeq:
		return g.compare(cmpEq)
	case ilimage.OpCgt:
		return g.compare(cmpGt)
	case ilimage.OpCltUn:
		return g.compare(cmpLtUn)

	case ilimage.OpBr:
		return g.branch("br", in.Int)
	case ilimage.OpBrfalse:
		return g.branch("brfalse", in.Int)
	case ilimage.OpBrtrue:
		return g.branch("brtrue", in.Int)
	case ilimage.OpBeq:
		return g.branch("beq", in.Int)
	case ilimage.OpBne:
		return g.branch("bne", in.Int)
	case ilimage.OpBlt:
		return g.branch("blt", in.Int)
	case ilimage.OpBle:
		return g.branch("ble", in.Int)
	case ilimage.OpBgt:
		return g.branch("bgt", in.Int)
	case ilimage.OpBge:
		return g.branch("bge", in.Int)

	case ilimage.OpSwitch:
		return g.switchOp(in.Switch)

	case ilimage.OpCall:
		return g.call(in.Name, in.Offset)
	case ilimage.OpRet:
		return nil // epilogue emits the RTS once the body is fully walked

	case ilimage.OpLdelemU1:
		arrayLocal, ok := g.lastArrayLocalHint()
		if !ok {
			return diag.Unsupportedf("ldelem.u1 without a preceding recognizable array-local load")
		}
		return g.loadElemU1(arrayLocal, in.Offset)
	case ilimage.OpStelemI1:
		arrayLocal, ok := g.lastArrayLocalHint()
		if !ok {
			return diag.Unsupportedf("stelem.i1 without a preceding recognizable array-local load")
		}
		return g.storeElemI1(arrayLocal, in.Offset)
	case ilimage.OpLdelema:
		arrayLocal, ok := g.lastArrayLocalHint()
		if !ok {
			return diag.Unsupportedf("ldelema without a preceding recognizable array-local load")
		}
		return g.loadElemAddr(arrayLocal, in.Name, in.Offset)

	case ilimage.OpLdloca:
		g.loadLocalAddr(int(in.Int))
		return nil
	case ilimage.OpStfld:
		typ, field := splitTypeField(in.Name)
		return g.storeField(typ, field, in.Offset)
	case ilimage.OpLdfld:
		typ, field := splitTypeField(in.Name)
		return g.loadField(typ, field)

	case ilimage.OpNewarr:
		return g.newarr(in.Name, in.Offset)
	}
	return diag.Unsupportedf("IL opcode %v", in.Op)
}

// lastArrayLocalHint recovers which local index an array-element access
// refers to from the history trail left by the preceding ldloc.
func (g *Generator) lastArrayLocalHint() (int, bool) {
	for i := len(g.history) - 1; i >= 0; i-- {
		if g.history[i].kind == histLoadLocal {
			return g.history[i].index, true
		}
	}
	return 0, false
}

func splitTypeField(name string) (typ, field string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}
