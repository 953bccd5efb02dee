package asmsrc

import (
	"fmt"
	"testing"

	"github.com/nesilc/nesilc/internal/obj"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestParseCodeSegmentBasic(t *testing.T) {
	src := `
.segment "CODE"
sound_init:
	lda #$00
	sta $4015
	rts
`
	f, err := Parse(src)
	assert(t, err == nil, "Parse returned %v", err)
	assert(t, len(f.Blocks) == 1, "got %d blocks, want 1", len(f.Blocks))
	assert(t, f.Blocks[0].Label == "sound_init", "block label = %q, want sound_init", f.Blocks[0].Label)
	assert(t, f.Blocks[0].Len() == 3, "block has %d instructions, want 3", f.Blocks[0].Len())
}

func TestParseCharsSegment(t *testing.T) {
	src := `
.segment "CHARS"
.byte $01, $02, $03
`
	f, err := Parse(src)
	assert(t, err == nil, "Parse returned %v", err)
	assert(t, len(f.Chars) == 3, "got %d char bytes, want 3", len(f.Chars))
	assert(t, f.Chars[0] == 1 && f.Chars[1] == 2 && f.Chars[2] == 3, "char bytes mismatch: %v", f.Chars)
}

func TestParseImportExport(t *testing.T) {
	src := `
.import foo, bar
.export baz
.segment "CODE"
entry:
	nop
`
	f, err := Parse(src)
	assert(t, err == nil, "Parse returned %v", err)
	assert(t, len(f.Imports) == 2, "got %d imports, want 2", len(f.Imports))
	assert(t, f.Imports[0] == "foo" && f.Imports[1] == "bar", "imports = %v", f.Imports)
	assert(t, len(f.Exports) == 1 && f.Exports[0] == "baz", "exports = %v", f.Exports)
}

func TestParseResDirectiveReservesZeros(t *testing.T) {
	src := `
.segment "CODE"
buf:
	.res 4
`
	f, err := Parse(src)
	assert(t, err == nil, "Parse returned %v", err)
	assert(t, f.Blocks[0].Size() == 4, "reserved block size = %d, want 4", f.Blocks[0].Size())
}

func TestParseUnrecognizedMnemonicErrors(t *testing.T) {
	src := `
.segment "CODE"
entry:
	frobnicate #$01
`
	_, err := Parse(src)
	assert(t, err != nil, "expected an error for an unrecognized mnemonic")
}

func TestParseCommentsAndBlankLinesIgnored(t *testing.T) {
	src := `
; a leading comment
.segment "CODE"

entry:       ; trailing comment
	nop      ; another one

	rts
`
	f, err := Parse(src)
	assert(t, err == nil, "Parse returned %v", err)
	assert(t, f.Blocks[0].Len() == 2, "got %d instructions, want 2", f.Blocks[0].Len())
}

func TestParseWordDirectiveWithLabel(t *testing.T) {
	src := `
.segment "CODE"
table:
	.word target, $1234
target:
	rts
`
	f, err := Parse(src)
	assert(t, err == nil, "Parse returned %v", err)
	assert(t, len(f.Blocks) == 2, "got %d blocks, want 2", len(f.Blocks))
	assert(t, f.Blocks[0].Label == "table", "first block label = %q", f.Blocks[0].Label)
	first := f.Blocks[0].Instrs()[0]
	assert(t, first.Opcode == obj.OpData && first.Mode == obj.ModeLabel, "expected a label-valued .word entry")
}
