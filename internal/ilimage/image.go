package ilimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// magicILIM identifies the program-image container: four bytes "ILIM"
// followed by a version byte, mirroring the way the runtime object-file
// formats in the retrieved corpus (ELF, PE, Mach-O) all lead with a
// magic-plus-version header before any section table.
var magicILIM = [4]byte{'I', 'L', 'I', 'M'}

const imageVersion = 1

// Image is the fully decoded program-image: every section read off disk,
// kept as raw bytes until a caller asks to decode a specific method or
// resolve a specific token.
type Image struct {
	Strings    [][]byte // user-string heap, indexed by string token index
	ByteArrays [][]byte // field-RVA blobs, indexed by array token index
	Methods    []MethodRecord
	Types      []TypeRecord
	il         []byte // concatenated method bodies
}

// MethodRecord is the on-disk method descriptor: everything the IL Reader
// needs before it decodes a single instruction.
type MethodRecord struct {
	Name      string
	Params    int
	ReturnsValue bool
	Linkage   Linkage
	ILStart   int
	ILLen     int
}

// Linkage classifies how a method's body should be lowered.
type Linkage int

const (
	LinkageInternal Linkage = iota // ordinary user method, has an IL body
	LinkageBuiltin                 // runtime-library routine, resolved by name only
	LinkageExternal                // external assembly symbol, underscore-prefixed at link time
	LinkageIntrinsic               // lowered inline by the code generator, never JSR'd
)

// TypeRecord is a user-defined struct's layout source: field order and
// each field's size in bytes (1 byte/sbyte/bool, 2 short/ushort, 4
// int/uint). The reader turns this into a cumulative-offset layout map.
type TypeRecord struct {
	Name   string
	Fields []FieldRecord
}

// FieldRecord is one struct field before offset assignment.
type FieldRecord struct {
	Name string
	Size int
}

// ReadImage parses a program-image container from r.
func ReadImage(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ilimage: read image: %w", err)
	}
	if len(data) < 5 {
		return nil, fmt.Errorf("ilimage: image too short to contain a header")
	}
	if !bytes.Equal(data[0:4], magicILIM[:]) {
		return nil, fmt.Errorf("ilimage: bad magic, not a program image")
	}
	if data[4] != imageVersion {
		return nil, fmt.Errorf("ilimage: unsupported image version %d", data[4])
	}
	br := bytes.NewReader(data[5:])

	img := &Image{}
	if err := readStringSection(br, &img.Strings); err != nil {
		return nil, err
	}
	if err := readByteArraySection(br, &img.ByteArrays); err != nil {
		return nil, err
	}
	if err := readMethodSection(br, &img.Methods); err != nil {
		return nil, err
	}
	if err := readTypeSection(br, &img.Types); err != nil {
		return nil, err
	}
	ilLen, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("ilimage: read IL section length: %w", err)
	}
	img.il = make([]byte, ilLen)
	if _, err := io.ReadFull(br, img.il); err != nil {
		return nil, fmt.Errorf("ilimage: read IL section: %w", err)
	}
	return img, nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readLenPrefixedBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readLenPrefixedString(r *bytes.Reader) (string, error) {
	b, err := readLenPrefixedBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readStringSection(r *bytes.Reader, out *[][]byte) error {
	count, err := readU32(r)
	if err != nil {
		return fmt.Errorf("ilimage: read string heap count: %w", err)
	}
	strs := make([][]byte, count)
	for i := range strs {
		b, err := readLenPrefixedBytes(r)
		if err != nil {
			return fmt.Errorf("ilimage: read string %d: %w", i, err)
		}
		strs[i] = b
	}
	*out = strs
	return nil
}

func readByteArraySection(r *bytes.Reader, out *[][]byte) error {
	count, err := readU32(r)
	if err != nil {
		return fmt.Errorf("ilimage: read byte-array count: %w", err)
	}
	arrs := make([][]byte, count)
	for i := range arrs {
		b, err := readLenPrefixedBytes(r)
		if err != nil {
			return fmt.Errorf("ilimage: read byte array %d: %w", i, err)
		}
		arrs[i] = b
	}
	*out = arrs
	return nil
}

func readMethodSection(r *bytes.Reader, out *[]MethodRecord) error {
	count, err := readU32(r)
	if err != nil {
		return fmt.Errorf("ilimage: read method count: %w", err)
	}
	methods := make([]MethodRecord, count)
	for i := range methods {
		name, err := readLenPrefixedString(r)
		if err != nil {
			return fmt.Errorf("ilimage: read method %d name: %w", i, err)
		}
		var hdr struct {
			Params       uint8
			ReturnsValue uint8
			Linkage      uint8
			_            uint8
			ILStart      uint32
			ILLen        uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return fmt.Errorf("ilimage: read method %d header: %w", i, err)
		}
		methods[i] = MethodRecord{
			Name:         normalizeLocalFunctionName(name),
			Params:       int(hdr.Params),
			ReturnsValue: hdr.ReturnsValue != 0,
			Linkage:      Linkage(hdr.Linkage),
			ILStart:      int(hdr.ILStart),
			ILLen:        int(hdr.ILLen),
		}
	}
	*out = methods
	return nil
}

func readTypeSection(r *bytes.Reader, out *[]TypeRecord) error {
	count, err := readU32(r)
	if err != nil {
		return fmt.Errorf("ilimage: read type count: %w", err)
	}
	types := make([]TypeRecord, count)
	for i := range types {
		name, err := readLenPrefixedString(r)
		if err != nil {
			return fmt.Errorf("ilimage: read type %d name: %w", i, err)
		}
		fieldCount, err := readU32(r)
		if err != nil {
			return fmt.Errorf("ilimage: read type %d field count: %w", i, err)
		}
		fields := make([]FieldRecord, fieldCount)
		for j := range fields {
			fname, err := readLenPrefixedString(r)
			if err != nil {
				return fmt.Errorf("ilimage: read type %d field %d name: %w", i, j, err)
			}
			var size uint8
			if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
				return fmt.Errorf("ilimage: read type %d field %d size: %w", i, j, err)
			}
			fields[j] = FieldRecord{Name: fname, Size: int(size)}
		}
		types[i] = TypeRecord{Name: name, Fields: fields}
	}
	*out = types
	return nil
}

// MethodBody returns the raw IL byte slice for a decoded MethodRecord.
func (img *Image) MethodBody(m MethodRecord) []byte {
	return img.il[m.ILStart : m.ILStart+m.ILLen]
}
