package ilimage

// FieldLayout is one field's position within a struct, derived from the
// TypeRecord's declared field sizes.
type FieldLayout struct {
	Name   string
	Size   int
	Offset int
}

// StructLayout is a user-defined value type's layout: field order plus
// cumulative byte offsets.
type StructLayout struct {
	Name   string
	Fields []FieldLayout
	Size   int // total size in bytes
}

// FieldOffset returns the offset of the named field, and whether it
// exists.
func (s StructLayout) FieldOffset(name string) (int, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

// BuildStructLayouts is the struct-layout pre-pass: it enumerates every
// user-defined value type and produces its field-offset layout, assigning
// offsets as the cumulative sum of preceding field sizes in declaration
// order.
func BuildStructLayouts(img *Image) map[string]StructLayout {
	out := make(map[string]StructLayout, len(img.Types))
	for _, t := range img.Types {
		layout := StructLayout{Name: t.Name}
		offset := 0
		for _, f := range t.Fields {
			layout.Fields = append(layout.Fields, FieldLayout{Name: f.Name, Size: f.Size, Offset: offset})
			offset += f.Size
		}
		layout.Size = offset
		out[t.Name] = layout
	}
	return out
}

// WordLocals is the word-local pre-pass result for one method: the set of
// local-variable indices that must be allocated two bytes instead of one,
// because the method widens a value to 16 bits immediately before storing
// it there.
type WordLocals map[int]bool

// FindWordLocals performs a forward scan over a method's decoded IL,
// detecting every "widen-to-16-bit (conv.u2) followed by store-local-N"
// idiom and recording N. This must run before code generation begins for
// the method, since the generator needs to know a local's width before
// emitting its first store.
func FindWordLocals(img *Image, m MethodRecord) (WordLocals, error) {
	widen := false
	out := make(WordLocals)
	dec := NewDecoder(img, m)
	for !dec.Done() {
		in, err := dec.Next()
		if err != nil {
			return nil, err
		}
		if widen {
			if n, ok := storeLocalIndex(in); ok {
				out[n] = true
			}
		}
		widen = in.Op == OpConvU2
	}
	return out, nil
}

// storeLocalIndex reports the local index an instruction stores to, for
// the fixed-index store opcodes and stloc.s alike.
func storeLocalIndex(in Instr) (int, bool) {
	switch in.Op {
	case OpStloc0:
		return 0, true
	case OpStloc1:
		return 1, true
	case OpStloc2:
		return 2, true
	case OpStloc3:
		return 3, true
	case OpStlocS:
		return int(in.Int), true
	}
	return 0, false
}
