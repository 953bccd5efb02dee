package ilimage

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildImageBytes assembles a minimal valid program-image container by
// hand, mirroring the section order ReadImage expects: magic+version,
// string heap, byte-array heap, method table, type table, IL blob.
func buildImageBytes(t *testing.T, methodName string, il []byte) []byte {
	var buf bytes.Buffer
	buf.Write(magicILIM[:])
	buf.WriteByte(imageVersion)

	writeU32 := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }
	writeStr := func(s string) {
		writeU32(uint32(len(s)))
		buf.WriteString(s)
	}

	writeU32(0) // no strings
	writeU32(0) // no byte arrays

	writeU32(1) // one method
	writeStr(methodName)
	hdr := struct {
		Params       uint8
		ReturnsValue uint8
		Linkage      uint8
		_            uint8
		ILStart      uint32
		ILLen        uint32
	}{Params: 0, ReturnsValue: 0, Linkage: uint8(LinkageInternal), ILStart: 0, ILLen: uint32(len(il))}
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		t.Fatalf("writing method header: %v", err)
	}

	writeU32(0) // no types

	writeU32(uint32(len(il)))
	buf.Write(il)

	return buf.Bytes()
}

func TestReadImageRoundTrip(t *testing.T) {
	il := []byte{byte(OpNop), byte(OpRet)}
	data := buildImageBytes(t, "main", il)

	img, err := ReadImage(bytes.NewReader(data))
	assert(t, err == nil, "ReadImage returned %v", err)
	assert(t, len(img.Methods) == 1, "got %d methods, want 1", len(img.Methods))
	assert(t, img.Methods[0].Name == "main", "method name = %q, want main", img.Methods[0].Name)
	assert(t, img.Methods[0].Linkage == LinkageInternal, "linkage = %v, want LinkageInternal", img.Methods[0].Linkage)
	assert(t, bytes.Equal(img.MethodBody(img.Methods[0]), il), "method body round-trip mismatch")
}

func TestReadImageRejectsBadMagic(t *testing.T) {
	data := append([]byte("XXXX"), imageVersion)
	_, err := ReadImage(bytes.NewReader(data))
	assert(t, err != nil, "expected a bad-magic error")
}

func TestReadImageRejectsUnsupportedVersion(t *testing.T) {
	data := append(append([]byte{}, magicILIM[:]...), imageVersion+1)
	_, err := ReadImage(bytes.NewReader(data))
	assert(t, err != nil, "expected an unsupported-version error")
}

func TestReadImageRejectsTruncatedHeader(t *testing.T) {
	_, err := ReadImage(bytes.NewReader([]byte{'I', 'L'}))
	assert(t, err != nil, "expected a too-short error")
}
