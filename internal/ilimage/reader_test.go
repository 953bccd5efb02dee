package ilimage

import "testing"

func TestReadBuildsWordLocalsAndUsedBuiltin(t *testing.T) {
	il := []byte{byte(OpNop), byte(OpRet)}
	img := &Image{
		Methods: []MethodRecord{
			{Name: "main", Linkage: LinkageInternal, ILStart: 0, ILLen: len(il)},
		},
		il: il,
	}

	prog, err := Read(img)
	assert(t, err == nil, "Read returned %v", err)
	assert(t, len(prog.Methods) == 1, "got %d methods, want 1", len(prog.Methods))

	_, ok := prog.WordLocals["main"]
	assert(t, ok, "expected a word-local pre-pass entry for main")
	assert(t, len(prog.UsedBuiltin) == 0, "expected no built-in calls recorded for a call-free method")
}

func TestReadRecordsBuiltinCallTargets(t *testing.T) {
	// token = method-kind top byte (0x06) | method table index (1, the
	// builtin "controller_poll" entry).
	token := uint32(0x06)<<24 | 1
	callIL := []byte{
		byte(OpCall), byte(token), byte(token >> 8), byte(token >> 16), byte(token >> 24),
		byte(OpRet),
	}
	img := &Image{
		Methods: []MethodRecord{
			{Name: "main", Linkage: LinkageInternal, ILStart: 0, ILLen: len(callIL)},
			{Name: "controller_poll", Linkage: LinkageBuiltin},
		},
		il: callIL,
	}

	prog, err := Read(img)
	assert(t, err == nil, "Read returned %v", err)
	assert(t, prog.UsedBuiltin["controller_poll"], "expected controller_poll recorded as used")
}

func TestMethodByName(t *testing.T) {
	img := &Image{
		Methods: []MethodRecord{
			{Name: "reset", Linkage: LinkageBuiltin},
			{Name: "main", Linkage: LinkageInternal},
		},
	}
	prog := &Program{Methods: img.Methods}

	m, ok := prog.MethodByName("main")
	assert(t, ok, "main should be found")
	assert(t, m.Linkage == LinkageInternal, "main linkage = %v", m.Linkage)

	_, ok = prog.MethodByName("nope")
	assert(t, !ok, "nope should not be found")
}
