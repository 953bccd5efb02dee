// Package asmsrc parses external textual 6502 assembly files — the
// conventional dialect's segments, labels, data directives and
// import/export declarations — into obj.Blocks that feed the same
// program the code generator and runtime library emit into.
package asmsrc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nesilc/nesilc/internal/obj"
)

// Segment names the file recognizes. CHARS supplies the character-pattern
// bank bytes; CODE supplies executable blocks and data tables.
const (
	SegmentCode  = "CODE"
	SegmentChars = "CHARS"
)

// File is one parsed assembly file.
type File struct {
	Blocks  []*obj.Block // from the CODE segment (and any other non-CHARS segment)
	Chars   []byte       // concatenated CHARS segment data
	Imports []string
	Exports []string
}

// Parse parses the text of one assembly file.
func Parse(text string) (*File, error) {
	f := &File{}
	segment := SegmentCode
	var cur *obj.Block

	flushBlock := func() {
		if cur != nil && cur.Len() > 0 {
			f.Blocks = append(f.Blocks, cur)
		}
		cur = nil
	}
	ensureBlock := func(label string) {
		if cur == nil {
			cur = obj.NewBlock(label)
		} else if label != "" && cur.Label == "" && cur.Len() == 0 {
			cur.Label = label
		} else if label != "" {
			flushBlock()
			cur = obj.NewBlock(label)
		}
	}

	lines := strings.Split(text, "\n")
	for lineNo, raw := range lines {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".segment") {
			name, err := directiveStringArg(line)
			if err != nil {
				return nil, fmt.Errorf("asmsrc: line %d: %w", lineNo+1, err)
			}
			flushBlock()
			segment = name
			continue
		}
		if strings.HasPrefix(line, ".import") {
			f.Imports = append(f.Imports, splitNames(line[len(".import"):])...)
			continue
		}
		if strings.HasPrefix(line, ".export") {
			f.Exports = append(f.Exports, splitNames(line[len(".export"):])...)
			continue
		}

		label, rest := splitLabel(line)
		if segment == SegmentChars {
			bytes, err := charsData(rest)
			if err != nil {
				return nil, fmt.Errorf("asmsrc: line %d: %w", lineNo+1, err)
			}
			f.Chars = append(f.Chars, bytes...)
			continue
		}

		if label != "" {
			ensureBlock(label)
		}
		if rest == "" {
			continue
		}
		if err := parseStatement(&cur, rest, ensureBlock); err != nil {
			return nil, fmt.Errorf("asmsrc: line %d: %w", lineNo+1, err)
		}
	}
	flushBlock()
	return f, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// splitLabel splits a "label: rest" line into its label and the
// remainder. Only a leading identifier followed immediately by ':' is a
// label; any other line (a directive, a mnemonic, or an identifier
// without a colon) is returned whole as the remainder with no label.
func splitLabel(line string) (label, rest string) {
	if line[0] == '.' || line[0] == ' ' || line[0] == '\t' {
		return "", strings.TrimSpace(line)
	}
	i := 0
	for i < len(line) && (isIdentByte(line[i])) {
		i++
	}
	if i > 0 && i < len(line) && line[i] == ':' {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return "", strings.TrimSpace(line)
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func splitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func directiveStringArg(line string) (string, error) {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return "", fmt.Errorf("expected quoted segment name in %q", line)
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end < 0 {
		return "", fmt.Errorf("unterminated string in %q", line)
	}
	return line[start+1 : start+1+end], nil
}

func parseStatement(cur **obj.Block, rest string, ensureBlock func(string)) error {
	fields := strings.SplitN(rest, " ", 2)
	mnemonic := strings.ToUpper(strings.TrimSpace(fields[0]))
	operand := ""
	if len(fields) > 1 {
		operand = strings.TrimSpace(fields[1])
	}

	switch mnemonic {
	case ".BYTE":
		bytes, err := parseByteList(operand)
		if err != nil {
			return err
		}
		ensureBlock("")
		(*cur).Append(obj.Raw(bytes))
		return nil
	case ".WORD":
		ensureBlock("")
		return parseWordDirective(*cur, operand)
	case ".RES":
		n, err := strconv.Atoi(strings.TrimSpace(operand))
		if err != nil {
			return fmt.Errorf(".res: %w", err)
		}
		ensureBlock("")
		(*cur).Append(obj.Raw(make([]byte, n)))
		return nil
	}

	modes, ok := mnemonics[mnemonic]
	if !ok {
		return fmt.Errorf("unrecognized mnemonic or directive %q", mnemonic)
	}
	ensureBlock("")
	in, err := encodeInstruction(mnemonic, modes, operand)
	if err != nil {
		return err
	}
	(*cur).Append(in)
	return nil
}

func parseWordDirective(b *obj.Block, operand string) error {
	for _, item := range strings.Split(operand, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.HasPrefix(item, "$") || (item[0] >= '0' && item[0] <= '9') {
			v, err := parseNumber(item)
			if err != nil {
				return err
			}
			b.Append(obj.Raw([]byte{byte(v), byte(v >> 8)}))
			continue
		}
		b.Append(obj.Instruction{Opcode: obj.OpData, Mode: obj.ModeLabel,
			Operand: obj.Operand{Kind: obj.OperandLabel, Label: item}})
	}
	return nil
}

func parseByteList(operand string) ([]byte, error) {
	var out []byte
	for _, item := range strings.Split(operand, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.HasPrefix(item, "\"") {
			s := strings.Trim(item, "\"")
			out = append(out, []byte(s)...)
			continue
		}
		v, err := parseNumber(item)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func parseNumber(tok string) (int64, error) {
	tok = strings.TrimSpace(tok)
	if strings.HasPrefix(tok, "$") {
		return strconv.ParseInt(tok[1:], 16, 32)
	}
	if strings.HasPrefix(tok, "%") {
		return strconv.ParseInt(tok[1:], 2, 32)
	}
	return strconv.ParseInt(tok, 10, 32)
}

// charsData parses a CHARS-segment statement, which is always a .byte run
// in practice (raw tile pattern bytes).
func charsData(rest string) ([]byte, error) {
	fields := strings.SplitN(rest, " ", 2)
	mnemonic := strings.ToUpper(strings.TrimSpace(fields[0]))
	if mnemonic != ".BYTE" || len(fields) < 2 {
		return nil, fmt.Errorf("CHARS segment expects .byte data, got %q", rest)
	}
	return parseByteList(fields[1])
}
