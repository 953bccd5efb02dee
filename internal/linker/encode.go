package linker

import (
	"github.com/nesilc/nesilc/internal/diag"
	"github.com/nesilc/nesilc/internal/obj"
)

// resolver looks up a label's absolute address, preferring a block's own
// intra-block labels over the program-wide map (spec §4.5 "local-then-
// global label preference").
type resolver func(name string) (int, bool)

func resolverFor(globals, locals map[string]int) resolver {
	return func(name string) (int, bool) {
		if v, ok := locals[name]; ok {
			return v, true
		}
		if v, ok := globals[name]; ok {
			return v, true
		}
		return 0, false
	}
}

// encodeInstruction turns one already-placed Instruction into its final
// bytes, resolving any label operand against resolve. addr is the byte
// address the instruction itself starts at, needed for relative-branch
// range checks.
func encodeInstruction(in obj.Instruction, addr int, resolve resolver) ([]byte, error) {
	if in.Opcode == obj.OpData {
		return in.Operand.Raw, nil
	}
	if in.Kind == obj.KindLabelWord || in.Kind == obj.KindLabelWordMinus1 {
		target, ok := resolve(in.Operand.Label)
		if !ok {
			return nil, diag.Unresolvedf("label %q", in.Operand.Label)
		}
		if in.Kind == obj.KindLabelWordMinus1 {
			target--
		}
		return []byte{byte(target), byte(target >> 8)}, nil
	}

	switch in.Mode {
	case obj.ModeNone:
		return []byte{in.Opcode}, nil

	case obj.ModeImmediate, obj.ModeZeroPage, obj.ModeZeroPageX, obj.ModeZeroPageY,
		obj.ModeIndirectX, obj.ModeIndirectY:
		b, err := resolveByte(in.Operand, resolve)
		if err != nil {
			return nil, err
		}
		return []byte{in.Opcode, b}, nil

	case obj.ModeRelative:
		return []byte{in.Opcode, in.Operand.Byte}, nil

	case obj.ModeRelLabel:
		target, ok := resolve(in.Operand.Label)
		if !ok {
			return nil, diag.Unresolvedf("branch target %q", in.Operand.Label)
		}
		offset := target - (addr + 2)
		if offset < -128 || offset > 127 {
			return nil, diag.BranchRangef("branch to %q is %d bytes away", in.Operand.Label, offset)
		}
		return []byte{in.Opcode, byte(int8(offset))}, nil

	case obj.ModeAbsolute, obj.ModeAbsoluteX, obj.ModeAbsoluteY, obj.ModeIndirect, obj.ModeLabel:
		w, err := resolveWord(in.Operand, resolve)
		if err != nil {
			return nil, err
		}
		return []byte{in.Opcode, byte(w), byte(w >> 8)}, nil

	case obj.ModeLabelLo:
		target, ok := resolve(in.Operand.Label)
		if !ok {
			return nil, diag.Unresolvedf("label %q", in.Operand.Label)
		}
		return []byte{in.Opcode, byte(target)}, nil

	case obj.ModeLabelHi:
		target, ok := resolve(in.Operand.Label)
		if !ok {
			return nil, diag.Unresolvedf("label %q", in.Operand.Label)
		}
		return []byte{in.Opcode, byte(target >> 8)}, nil
	}
	return nil, diag.Malformedf("instruction with unrecognized addressing mode %v", in.Mode)
}

func resolveByte(op obj.Operand, resolve resolver) (byte, error) {
	switch op.Kind {
	case obj.OperandByte:
		return op.Byte, nil
	case obj.OperandLabel:
		target, ok := resolve(op.Label)
		if !ok {
			return 0, diag.Unresolvedf("label %q", op.Label)
		}
		return byte(target), nil
	}
	return 0, diag.Malformedf("expected a byte operand, found %v", op.Kind)
}

func resolveWord(op obj.Operand, resolve resolver) (uint16, error) {
	switch op.Kind {
	case obj.OperandWord:
		return op.Word, nil
	case obj.OperandLabel:
		target, ok := resolve(op.Label)
		if !ok {
			return 0, diag.Unresolvedf("label %q", op.Label)
		}
		return uint16(target), nil
	}
	return 0, diag.Malformedf("expected a word operand, found %v", op.Kind)
}
