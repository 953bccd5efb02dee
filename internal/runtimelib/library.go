package runtimelib

import "github.com/nesilc/nesilc/internal/obj"

// Library is the full set of runtime blocks a linked ROM needs: the
// always-present core routines plus whichever optional routines the
// program actually exercises, in a fixed relative order so two builds of
// the same used-method set produce byte-identical layouts.
type Library struct {
	Core     []*obj.Block
	Optional []*obj.Block
}

// Build assembles the runtime library for a program whose used-method set
// is given by `used` (name -> referenced), as tracked by the IL reader's
// builtin-call scan. Excluded optional routines simply have no block
// appended, which is what lets the linker's size calculation stay a pure
// function of the used-method set (spec §4.3).
func Build(used map[string]bool) *Library {
	lib := &Library{Core: CoreRoutines()}
	for _, r := range OptionalRoutines {
		if used[r.Name] {
			lib.Optional = append(lib.Optional, r.Block())
		}
	}
	return lib
}

// All returns every block the library contributes to the linker's layout,
// core routines first.
func (l *Library) All() []*obj.Block {
	out := make([]*obj.Block, 0, len(l.Core)+len(l.Optional))
	out = append(out, l.Core...)
	out = append(out, l.Optional...)
	return out
}

// BssZero and Donelib are built once the linker knows the final local
// count and destructor table, so they are not part of Build's output;
// they are appended by the linker directly after computing those facts.
func BssZero(localCount int) *obj.Block { return bssZeroBlock(localCount) }

func Donelib(destructorTableLabel string, hasDestructors bool) *obj.Block {
	return donelibBlock(destructorTableLabel, hasDestructors)
}

func AudioTick(musicTableLabel string, hasMusic bool) *obj.Block {
	return audioTickBlock(musicTableLabel, hasMusic)
}
