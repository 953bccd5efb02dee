package asmsrc

import (
	"fmt"
	"strings"

	"github.com/nesilc/nesilc/internal/obj"
)

// encodeInstruction parses operand syntax for one mnemonic line and picks
// the addressing mode the modeSet supports for it.
func encodeInstruction(mnemonic string, modes modeSet, operand string) (obj.Instruction, error) {
	if operand == "" {
		if op, ok := modes[obj.ModeNone]; ok {
			return obj.Impl(op), nil
		}
		return obj.Instruction{}, fmt.Errorf("%s requires an operand", mnemonic)
	}

	if strings.HasPrefix(operand, "#") {
		v, err := operandValue(operand[1:])
		if err != nil {
			return obj.Instruction{}, err
		}
		if op, ok := modes[obj.ModeImmediate]; ok {
			return obj.Imm(op, byte(v.lit)), nil
		}
		return obj.Instruction{}, fmt.Errorf("%s has no immediate mode", mnemonic)
	}

	if strings.HasPrefix(operand, "(") {
		return encodeIndirect(mnemonic, modes, operand)
	}

	// zero-page/absolute, optionally indexed by ,X or ,Y
	base := operand
	indexed := ""
	if i := strings.LastIndex(operand, ","); i >= 0 {
		base = strings.TrimSpace(operand[:i])
		indexed = strings.ToUpper(strings.TrimSpace(operand[i+1:]))
	}

	if branchMnemonics[mnemonic] {
		if op, ok := modes[obj.ModeRelative]; ok {
			return obj.Branch(op, base), nil
		}
	}

	v, err := operandValue(base)
	if err != nil {
		return obj.Instruction{}, err
	}

	switch indexed {
	case "":
		if v.isLabel {
			if mnemonic == "JMP" || mnemonic == "JSR" {
				if op, ok := modes[obj.ModeAbsolute]; ok {
					return obj.ToLabel(op, v.label), nil
				}
			}
			if op, ok := modes[obj.ModeAbsolute]; ok {
				return obj.AbsLabel(op, v.label), nil
			}
			if op, ok := modes[obj.ModeZeroPage]; ok {
				return obj.Instruction{Opcode: op, Mode: obj.ModeZeroPage,
					Operand: obj.Operand{Kind: obj.OperandLabel, Label: v.label}}, nil
			}
		}
		if v.lit <= 0xFF {
			if op, ok := modes[obj.ModeZeroPage]; ok {
				return obj.ZP(op, byte(v.lit)), nil
			}
		}
		if op, ok := modes[obj.ModeAbsolute]; ok {
			return obj.Abs(op, uint16(v.lit)), nil
		}
	case "X":
		if v.isLabel {
			if op, ok := modes[obj.ModeAbsoluteX]; ok {
				return obj.AbsXLabel(op, v.label), nil
			}
		}
		if v.lit <= 0xFF {
			if op, ok := modes[obj.ModeZeroPageX]; ok {
				return obj.ZPX(op, byte(v.lit)), nil
			}
		}
		if op, ok := modes[obj.ModeAbsoluteX]; ok {
			return obj.AbsX(op, uint16(v.lit)), nil
		}
	case "Y":
		if v.lit <= 0xFF {
			if op, ok := modes[obj.ModeZeroPageY]; ok {
				return obj.Instruction{Opcode: op, Mode: obj.ModeZeroPageY,
					Operand: obj.Operand{Kind: obj.OperandByte, Byte: byte(v.lit)}}, nil
			}
		}
		if op, ok := modes[obj.ModeAbsoluteY]; ok {
			return obj.AbsY(op, uint16(v.lit)), nil
		}
	}
	return obj.Instruction{}, fmt.Errorf("%s has no addressing mode matching operand %q", mnemonic, operand)
}

func encodeIndirect(mnemonic string, modes modeSet, operand string) (obj.Instruction, error) {
	// (addr,X) or (addr),Y or (addr)
	close := strings.IndexByte(operand, ')')
	if close < 0 {
		return obj.Instruction{}, fmt.Errorf("unterminated ( in operand %q", operand)
	}
	inner := operand[1:close]
	trailer := strings.ToUpper(strings.TrimSpace(operand[close+1:]))

	v, err := operandValue(strings.TrimSpace(inner))
	if err != nil {
		return obj.Instruction{}, err
	}
	switch {
	case strings.HasSuffix(strings.ToUpper(inner), ",X"):
		base := strings.TrimSpace(inner[:len(inner)-2])
		v, err = operandValue(base)
		if err != nil {
			return obj.Instruction{}, err
		}
		if op, ok := modes[obj.ModeIndirectX]; ok {
			return obj.IndX(op, byte(v.lit)), nil
		}
	case trailer == ",Y":
		if op, ok := modes[obj.ModeIndirectY]; ok {
			return obj.IndY(op, byte(v.lit)), nil
		}
	default:
		if op, ok := modes[obj.ModeIndirect]; ok {
			if v.isLabel {
				return obj.Instruction{Opcode: op, Mode: obj.ModeIndirect, Operand: obj.Operand{Kind: obj.OperandLabel, Label: v.label}}, nil
			}
			return obj.Instruction{Opcode: op, Mode: obj.ModeIndirect, Operand: obj.Operand{Kind: obj.OperandWord, Word: uint16(v.lit)}}, nil
		}
	}
	return obj.Instruction{}, fmt.Errorf("%s has no indirect addressing mode matching %q", mnemonic, operand)
}

type value struct {
	lit     int64
	isLabel bool
	label   string
}

func operandValue(tok string) (value, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return value{}, fmt.Errorf("empty operand")
	}
	if strings.HasPrefix(tok, "$") || strings.HasPrefix(tok, "%") || isDigit(tok[0]) {
		n, err := parseNumber(tok)
		if err != nil {
			return value{}, err
		}
		return value{lit: n}, nil
	}
	return value{isLabel: true, label: tok}, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
