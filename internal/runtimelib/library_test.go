package runtimelib

import (
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestCoreRoutinesLeadsWithResetThenNMI(t *testing.T) {
	core := CoreRoutines()
	assert(t, len(core) > 1, "expected more than one core routine")
	assert(t, core[0].Label == "reset", "first core block = %q, want reset", core[0].Label)
	assert(t, core[1].Label == "nmi", "second core block = %q, want nmi", core[1].Label)
}

func TestBuildIncludesOnlyUsedOptionalRoutines(t *testing.T) {
	lib := Build(map[string]bool{NamePadPoll: true})
	found := false
	for _, b := range lib.Optional {
		if b.Label == NamePadPoll {
			found = true
		}
		assert(t, b.Label != NameWordAdd, "word_add should not be included when unused")
	}
	assert(t, found, "pad_poll should be included when used")
}

func TestBuildWithNoUsedRoutinesHasNoOptionalBlocks(t *testing.T) {
	lib := Build(map[string]bool{})
	assert(t, len(lib.Optional) == 0, "expected no optional blocks, got %d", len(lib.Optional))
	assert(t, len(lib.All()) == len(lib.Core), "All() should equal Core alone when nothing optional is used")
}

func TestAllPutsCoreBeforeOptional(t *testing.T) {
	lib := Build(map[string]bool{NameWordAdd: true})
	all := lib.All()
	assert(t, len(all) == len(lib.Core)+1, "All() length mismatch")
	assert(t, all[0].Label == "reset", "All() should lead with the core routines")
	assert(t, all[len(all)-1].Label == NameWordAdd, "All() should trail with the optional routine")
}

func TestDonelibEmptyTableIsJustRTS(t *testing.T) {
	b := Donelib("destructor_table", false)
	assert(t, b.Len() == 1, "expected a single RTS for an empty destructor table")
}

func TestDonelibWithTableWalksIndirectionTable(t *testing.T) {
	b := Donelib("destructor_table", true)
	assert(t, b.Len() > 1, "expected the full trampoline when destructors are present")
}

func TestBssZeroSkipsTheLoopWhenNoLocalsExist(t *testing.T) {
	empty := BssZero(0)
	assert(t, empty.Len() == 1, "expected a single RTS when the program has no locals")

	withLocals := BssZero(64)
	assert(t, withLocals.Len() > 1, "expected a real clear loop when locals exist")
}
