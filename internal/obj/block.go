package obj

// Block is an ordered sequence of instructions that is addressed, labeled
// and resolved as a unit. It is the unit of late address resolution: the
// linker assigns each Block a starting address, then walks its
// instructions summing sizes to place any intra-block labels before
// resolving operands.
type Block struct {
	Label string // the block's own entry label, empty if anonymous

	instrs []Instruction
	// labelAt maps an instruction index to the label that should be
	// attached to it. Multiple names may point at the same index.
	labelAt map[int][]string
	// pending holds a name set by SetNextLabel, attached to whatever
	// instruction Append adds next.
	pending []string
}

// NewBlock creates an empty block with the given entry label.
func NewBlock(label string) *Block {
	return &Block{Label: label, labelAt: make(map[int][]string)}
}

// Len returns the number of instructions currently in the block.
func (b *Block) Len() int { return len(b.instrs) }

// Size returns the block's total size in bytes.
func (b *Block) Size() int {
	n := 0
	for _, in := range b.instrs {
		n += in.Size()
	}
	return n
}

// Instrs exposes the block's instructions for read-only iteration, e.g. by
// the linker's resolution pass.
func (b *Block) Instrs() []Instruction { return b.instrs }

// SetNextLabel attaches name to whatever instruction Append adds next. It
// may be called more than once before the next Append; all pending names
// bind to the same instruction.
func (b *Block) SetNextLabel(name string) {
	b.pending = append(b.pending, name)
}

// Append adds an instruction to the end of the block, attaching any
// pending intra-block labels set since the previous Append.
func (b *Block) Append(in Instruction) {
	idx := len(b.instrs)
	b.instrs = append(b.instrs, in)
	if len(b.pending) > 0 {
		b.labelAt[idx] = append(b.labelAt[idx], b.pending...)
		b.pending = nil
	}
}

// LabelsAt returns the intra-block labels attached to instruction index i,
// or nil if none.
func (b *Block) LabelsAt(i int) []string { return b.labelAt[i] }

// LocalLabels returns the full intra-block label → byte offset map,
// computed by summing instruction sizes from base. Used by the linker's
// resolver, which consults this before the program-wide map so that
// same-named local labels in different blocks never collide.
func (b *Block) LocalLabels(base int) map[string]int {
	out := make(map[string]int)
	offset := base
	for i, in := range b.instrs {
		for _, name := range b.labelAt[i] {
			out[name] = offset
		}
		offset += in.Size()
	}
	return out
}

// RemoveLastN removes the last n instructions from the block. Any labels
// that pointed at a removed index disappear atomically with it; a label
// that pointed exactly at the position immediately past the last removed
// instruction (i.e. at the old end-of-block, one past the new end) is
// re-attached to the new end-of-block so a SetNextLabel issued before the
// removed instructions still lands correctly on whatever is emitted next.
//
// RemoveLastN never removes fewer than n instructions: if the block holds
// fewer than n instructions it panics, since that indicates the caller's
// checkpoint bookkeeping (see codegen's per-IL-offset checkpoint) is
// inconsistent with the block it is editing.
func (b *Block) RemoveLastN(n int) {
	if n <= 0 {
		return
	}
	if n > len(b.instrs) {
		panic("obj: RemoveLastN asked to remove more instructions than the block holds")
	}
	newLen := len(b.instrs) - n
	// A label on the first removed instruction (newLen) meant "here" —
	// once that instruction is gone, "here" is the new end-of-block, so
	// it carries forward instead of disappearing with its instruction.
	var carryForward []string
	if names, ok := b.labelAt[newLen]; ok {
		carryForward = append(carryForward, names...)
	}
	for i := newLen; i < len(b.instrs); i++ {
		delete(b.labelAt, i)
	}
	b.instrs = b.instrs[:newLen]
	if len(carryForward) > 0 {
		b.pending = append(carryForward, b.pending...)
	}
}

// Checkpoint returns the block's current instruction count, used by the
// code generator as a per-IL-offset rollback point: it records
// Checkpoint() before processing an IL instruction, and RemoveLastN(Len()
// - checkpoint) to undo everything that IL instruction emitted so far
// when a later instruction reveals a better lowering.
func (b *Block) Checkpoint() int { return b.Len() }

// RemoveSince removes every instruction appended since checkpoint.
func (b *Block) RemoveSince(checkpoint int) {
	b.RemoveLastN(b.Len() - checkpoint)
}
