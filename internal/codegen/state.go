// Package codegen is the IL2Native code generator: it consumes a decoded
// method body from ilimage and emits one obj.Block of 6502 instructions,
// tracking an abstract evaluation stack and a family of peephole flags so
// that common stack-IL idioms collapse to the native sequence a hand
// assembler would have written.
package codegen

import (
	"fmt"

	"github.com/nesilc/nesilc/internal/ilimage"
	"github.com/nesilc/nesilc/internal/obj"
	"github.com/nesilc/nesilc/internal/runtimelib"
)

// accTag classifies what the accumulator (plus, for 16-bit values, the X
// register) currently holds.
type accTag int

const (
	accNone    accTag = iota
	accImm            // compile-time constant, value in accConst
	accRuntime8       // an 8-bit value computed at runtime, address unknown to the caller
	accRuntime16      // low byte in A, high byte in X
	accSpilled        // the runtime value above has been pushed to the software stack
)

// padState is the controller-input peephole's state machine (spec'd
// design §4.6): Idle, ResultLive right after a controller-poll call, and
// ResultLiveAnd once the first mask has been consumed and subsequent
// masks reload from the shadow temp instead of re-polling.
type padState int

const (
	padIdle padState = iota
	padResultLive
	padResultLiveAnd
)

// localSlot is one local variable's zero-page allocation.
type localSlot struct {
	addr      int
	word      bool
	isArray   bool
	arrayElem int    // element size in bytes, for array locals
	arrayRom  bool   // true if this is an alias to a ROM label, not a RAM allocation
	romLabel  string // valid when arrayRom
	isStruct  bool
	structTy  string
}

// stackVal is one abstract-evaluation-stack entry (spec §4.4): constants
// carry their value, runtime values carry a zero sentinel but are still
// counted so argument/operand arity stays correct.
type stackVal struct {
	isConst bool
	value   int32

	// strLit/hasStrLit carry a string literal's text across from ldstr to
	// a consuming call (spec §8 S4 "string load") — print needs the
	// literal's length at compile time, which the abstract stack
	// otherwise has no room to carry.
	strLit    string
	hasStrLit bool
}

// Generator holds per-method code-generation state. A fresh Generator is
// used for each method; nothing carries over between methods except the
// shared label/data tables owned by the enclosing Module.
type Generator struct {
	mod    *Module
	method ilimage.MethodRecord
	block  *obj.Block

	stack  []stackVal
	locals map[int]localSlot

	acc       accTag
	accConst  int32
	lastWasImm bool // "last emitted was accumulator-immediate-load"

	pendingIncDec            bool // a load-local/load-1 idiom is waiting to see widen+store
	pendingIncLocal          int
	pendingIncIsAdd          bool
	pendingIncDecStartOffset int // IL offset of the load-local that started the idiom

	pad padState

	lastCompare compareKind

	// pendingByteArrayLiteral/pendingNewarrSize/pendingNewarrStructTy
	// record the ldtoken/newarr preceding a stloc, consumed by the store
	// handler (spec §4.4 "local store").
	pendingByteArrayLiteral string
	pendingNewarrSize       int
	pendingNewarrStructTy   string
	pendingStructLocal      int

	// spilledToTemp records that a runtime value was pushed to TEMP to survive a
	// subsequent load, per the "runtime value was spilled" peephole flag.
	spilledToTemp bool

	checkpoints map[int]int // IL byte offset -> block instruction count before that IL op

	labelSeq int

	// history is a short trail of the most recent semantically-tagged
	// loads, consulted by the arithmetic/array/struct handlers to detect
	// the multi-opcode idioms spec §4.4 describes (load-local + load-1 +
	// add, ldtoken + stloc, newarr + stloc, and so on).
	history []histEntry
}

type histKind int

const (
	histNone histKind = iota
	histLoadLocal
	histLoadConst
	histLdtoken
	histNewarr
	histLdelemU1
)

type histEntry struct {
	kind     histKind
	index    int // local index, for histLoadLocal
	value    int32
	ilOffset int
	name     string // token-resolved name, for histLdtoken
}

func (g *Generator) note(e histEntry) {
	g.history = append(g.history, e)
	if len(g.history) > 4 {
		g.history = g.history[len(g.history)-4:]
	}
}

func (g *Generator) lastHist(n int) histEntry {
	if len(g.history) < n {
		return histEntry{}
	}
	return g.history[len(g.history)-n]
}

func newGenerator(mod *Module, m ilimage.MethodRecord) *Generator {
	return &Generator{
		mod:         mod,
		method:      m,
		block:       obj.NewBlock(m.Name),
		locals:      make(map[int]localSlot),
		checkpoints: make(map[int]int),
	}
}

func (g *Generator) push(v stackVal) { g.stack = append(g.stack, v) }

// peek returns the top-of-stack entry without removing it, or the zero
// value (not const, value 0) if the stack is empty.
func (g *Generator) peek() stackVal {
	if len(g.stack) == 0 {
		return stackVal{}
	}
	return g.stack[len(g.stack)-1]
}

func (g *Generator) pop() (stackVal, error) {
	if len(g.stack) == 0 {
		return stackVal{}, fmt.Errorf("codegen: %s: abstract stack underflow", g.method.Name)
	}
	v := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return v, nil
}

// checkpoint records the current block length against an IL byte offset,
// the discipline spec §4.4/§9 requires before processing every
// instruction: later rewrites remove exactly the instructions this IL
// opcode itself emitted by diffing against this count.
func (g *Generator) checkpoint(ilOffset int) {
	g.checkpoints[ilOffset] = g.block.Checkpoint()
}

// undo removes everything emitted since the given IL offset's checkpoint.
func (g *Generator) undo(ilOffset int) {
	cp, ok := g.checkpoints[ilOffset]
	if !ok {
		return
	}
	g.block.RemoveSince(cp)
}

// offsetLabel returns the per-IL-offset candidate label for a byte
// offset, in the form "instruction_OOOO" spec §4.4 "Branch labels"
// specifies, scoped to the method since it is set-next-label'd into this
// block only.
func (g *Generator) offsetLabel(offset int) string {
	return fmt.Sprintf("%s_instruction_%04X", g.method.Name, offset)
}

// spillAcc pushes whatever the accumulator currently holds to ZPTemp (or
// the software stack for a 16-bit pair) so a subsequent load can safely
// clobber A/X, per the "runtime value was spilled" flag.
func (g *Generator) spillAcc() {
	switch g.acc {
	case accRuntime8:
		g.block.Append(obj.ZP(obj.OpSTA_zp, runtimelib.ZPTemp))
		g.spilledToTemp = true
	case accRuntime16:
		g.block.Append(obj.ToLabel(obj.OpJSR, "pushax"))
		g.acc = accSpilled
	}
	if g.acc != accSpilled {
		g.acc = accNone
	}
	g.lastWasImm = false
	g.pad = padIdle
}

// allocLocal allocates the next free zero-page byte (or word) for a
// local the store handler has not yet seen, above runtimelib.ZeroPageBase.
func (g *Generator) allocLocal(index int, word bool) localSlot {
	size := 1
	if word {
		size = 2
	}
	addr := g.mod.nextLocal
	g.mod.nextLocal += size
	slot := localSlot{addr: addr, word: word}
	g.locals[index] = slot
	if g.mod.nextLocal > g.mod.maxLocal {
		g.mod.maxLocal = g.mod.nextLocal
	}
	return slot
}

func (g *Generator) localSlot(index int, wordHint bool) localSlot {
	if slot, ok := g.locals[index]; ok {
		return slot
	}
	return g.allocLocal(index, wordHint)
}
