package ilimage

import "fmt"

// Program is the IL Reader's output: every method's metadata plus the
// decoded-IL sequence for internal methods, the struct-layout map, and
// the set of runtime-library names the program actually calls (which
// drives conditional inclusion of optional runtime routines).
type Program struct {
	Image       *Image
	Methods     []MethodRecord
	Layouts     map[string]StructLayout
	WordLocals  map[string]WordLocals // method name → its word-local set
	UsedBuiltin map[string]bool       // runtime-library names referenced by a call
}

// Read decodes a full program image into a Program, running the
// struct-layout and word-local pre-passes and recording every call target
// that resolves to a built-in runtime routine.
func Read(img *Image) (*Program, error) {
	p := &Program{
		Image:       img,
		Methods:     img.Methods,
		Layouts:     BuildStructLayouts(img),
		WordLocals:  make(map[string]WordLocals),
		UsedBuiltin: make(map[string]bool),
	}
	byName := make(map[string]MethodRecord, len(img.Methods))
	for _, m := range img.Methods {
		byName[m.Name] = m
	}
	for _, m := range img.Methods {
		if m.Linkage != LinkageInternal {
			continue
		}
		wl, err := FindWordLocals(img, m)
		if err != nil {
			return nil, fmt.Errorf("ilimage: word-local prepass for %s: %w", m.Name, err)
		}
		p.WordLocals[m.Name] = wl

		dec := NewDecoder(img, m)
		for !dec.Done() {
			in, err := dec.Next()
			if err != nil {
				return nil, fmt.Errorf("ilimage: scanning %s for call targets: %w", m.Name, err)
			}
			if in.Op == OpCall {
				if target, ok := byName[in.Name]; ok && target.Linkage == LinkageBuiltin {
					p.UsedBuiltin[in.Name] = true
				}
			}
		}
	}
	return p, nil
}

// MethodByName looks up a method descriptor by its (already normalized)
// name.
func (p *Program) MethodByName(name string) (MethodRecord, bool) {
	for _, m := range p.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodRecord{}, false
}
