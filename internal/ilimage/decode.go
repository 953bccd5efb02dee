package ilimage

import (
	"encoding/binary"
	"fmt"
)

// Decoder decodes one method's IL byte stream into a lazy sequence of
// Instr, resolving token operands against the owning Image's metadata as
// it goes. It is used once per method and is not safe for concurrent use.
type Decoder struct {
	img    *Image
	body   []byte
	offset int
}

// NewDecoder starts a decode pass over m's IL body.
func NewDecoder(img *Image, m MethodRecord) *Decoder {
	return &Decoder{img: img, body: img.MethodBody(m)}
}

// Done reports whether the decoder has consumed the whole method body.
func (d *Decoder) Done() bool { return d.offset >= len(d.body) }

// Next decodes the instruction at the current offset and advances past
// it. It is the IL Reader's sole decode entry point: every opcode is one
// byte (extended forms are prefixed by OpcodeExtendedPrefix), the static
// operandShapes table gives the operand's shape, and token operands are
// resolved immediately against the Image's metadata tables so the rest of
// the compiler never touches raw token values.
func (d *Decoder) Next() (Instr, error) {
	start := d.offset
	if d.Done() {
		return Instr{}, fmt.Errorf("ilimage: Next called past end of method body")
	}
	lead := d.body[d.offset]
	d.offset++
	var op Opcode
	if lead == OpcodeExtendedPrefix {
		if d.Done() {
			return Instr{}, fmt.Errorf("ilimage: truncated extended opcode at offset %d", start)
		}
		op = Opcode(int(d.body[d.offset]) + 0x100)
		d.offset++
	} else {
		op = Opcode(lead)
	}

	shape, ok := operandShapes[op&0xFF]
	if !ok {
		return Instr{}, fmt.Errorf("ilimage: unsupported IL opcode 0x%02X at offset %d", op, start)
	}

	in := Instr{Op: op & 0xFF, Offset: start}
	switch shape {
	case ShapeNone:
		// no operand bytes
	case ShapeI1:
		v, err := d.readI1()
		if err != nil {
			return Instr{}, err
		}
		in.HasInt, in.Int = true, int32(v)
	case ShapeU1:
		v, err := d.readU1()
		if err != nil {
			return Instr{}, err
		}
		in.HasInt, in.Int = true, int32(v)
	case ShapeI2:
		v, err := d.readI2()
		if err != nil {
			return Instr{}, err
		}
		in.HasInt, in.Int = true, int32(v)
	case ShapeI4:
		v, err := d.readI4()
		if err != nil {
			return Instr{}, err
		}
		in.HasInt, in.Int = true, v
	case ShapeToken:
		tok, err := d.readToken()
		if err != nil {
			return Instr{}, err
		}
		in.HasToken, in.Token = true, tok
		if err := d.img.resolveToken(op&0xFF, tok, &in); err != nil {
			return Instr{}, err
		}
	case ShapeSwitch:
		count, err := d.readI4()
		if err != nil {
			return Instr{}, err
		}
		targets := make([]int32, count)
		for i := range targets {
			t, err := d.readI4()
			if err != nil {
				return Instr{}, fmt.Errorf("ilimage: truncated switch table entry %d: %w", i, err)
			}
			targets[i] = t
		}
		in.Switch = targets
	}
	return in, nil
}

func (d *Decoder) readI1() (int8, error) {
	if d.offset+1 > len(d.body) {
		return 0, fmt.Errorf("ilimage: truncated 1-byte operand at offset %d", d.offset)
	}
	v := int8(d.body[d.offset])
	d.offset++
	return v, nil
}

func (d *Decoder) readU1() (uint8, error) {
	if d.offset+1 > len(d.body) {
		return 0, fmt.Errorf("ilimage: truncated 1-byte operand at offset %d", d.offset)
	}
	v := d.body[d.offset]
	d.offset++
	return v, nil
}

func (d *Decoder) readI2() (int16, error) {
	if d.offset+2 > len(d.body) {
		return 0, fmt.Errorf("ilimage: truncated 2-byte operand at offset %d", d.offset)
	}
	v := int16(binary.LittleEndian.Uint16(d.body[d.offset:]))
	d.offset += 2
	return v, nil
}

func (d *Decoder) readI4() (int32, error) {
	if d.offset+4 > len(d.body) {
		return 0, fmt.Errorf("ilimage: truncated 4-byte operand at offset %d", d.offset)
	}
	v := int32(binary.LittleEndian.Uint32(d.body[d.offset:]))
	d.offset += 4
	return v, nil
}

func (d *Decoder) readToken() (uint32, error) {
	if d.offset+4 > len(d.body) {
		return 0, fmt.Errorf("ilimage: truncated token operand at offset %d", d.offset)
	}
	v := binary.LittleEndian.Uint32(d.body[d.offset:])
	d.offset += 4
	return v, nil
}

// tokenKind is encoded in a token's top byte, following the usual
// metadata-token convention: the kind selects which table the low 24 bits
// index into.
type tokenKind byte

const (
	tokenMethod    tokenKind = 0x06
	tokenField     tokenKind = 0x04
	tokenType      tokenKind = 0x02
	tokenString    tokenKind = 0x70
	tokenByteArray tokenKind = 0x71 // field-RVA data, a pack-specific extension
)

// resolveToken follows a token through the image's metadata tables to a
// name (method/field/type) or a literal (ldstr, embedded byte array) and
// fills the relevant Instr fields.
func (img *Image) resolveToken(op Opcode, tok uint32, in *Instr) error {
	kind := tokenKind(tok >> 24)
	index := int(tok & 0x00FFFFFF)
	switch kind {
	case tokenMethod:
		if index < 0 || index >= len(img.Methods) {
			return fmt.Errorf("ilimage: method token %d out of range", index)
		}
		in.Name = img.Methods[index].Name
	case tokenType:
		if index < 0 || index >= len(img.Types) {
			return fmt.Errorf("ilimage: type token %d out of range", index)
		}
		in.Name = img.Types[index].Name
	case tokenField:
		// Encoded as (typeIndex<<12 | fieldIndex) within the low 24 bits so
		// stfld/ldfld/ldelema can name both the owning type and the field
		// without a second table.
		typeIdx := index >> 12
		fieldIdx := index & 0xFFF
		if typeIdx < 0 || typeIdx >= len(img.Types) {
			return fmt.Errorf("ilimage: field token type index %d out of range", typeIdx)
		}
		t := img.Types[typeIdx]
		if fieldIdx < 0 || fieldIdx >= len(t.Fields) {
			return fmt.Errorf("ilimage: field token field index %d out of range in type %s", fieldIdx, t.Name)
		}
		in.Name = t.Name + "." + t.Fields[fieldIdx].Name
	case tokenString:
		if index < 0 || index >= len(img.Strings) {
			return fmt.Errorf("ilimage: string token %d out of range", index)
		}
		in.Name = string(img.Strings[index])
	case tokenByteArray:
		if index < 0 || index >= len(img.ByteArrays) {
			return fmt.Errorf("ilimage: byte-array token %d out of range", index)
		}
		in.Raw = img.ByteArrays[index]
	default:
		return fmt.Errorf("ilimage: unrecognized token kind 0x%02X for opcode %v", kind, op)
	}
	return nil
}
