package obj

import "fmt"

// BaseAddr is the fixed code base address all emitted labels resolve
// against: the first program bank starts here in the CPU's 16-bit address
// space.
const BaseAddr = 0x8000

// Program is an ordered list of blocks with a program-wide label map,
// populated during address resolution.
type Program struct {
	Blocks []*Block

	// Globals maps a label name to its absolute address, filled in by
	// ResolvePass1. Labels are interned strings owned by the Program for the
	// lifetime of linking.
	Globals map[string]int
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{Globals: make(map[string]int)}
}

// Add appends a block to the program in source order. The linker never
// reorders blocks; ordering is strictly the order of Add calls.
func (p *Program) Add(b *Block) {
	p.Blocks = append(p.Blocks, b)
}

// AddrOf returns the starting address most recently assigned to label, and
// whether it was found.
func (p *Program) AddrOf(label string) (int, bool) {
	a, ok := p.Globals[label]
	return a, ok
}

// ResolvePass1 walks the blocks in order starting from base, assigning
// each block's own label (if any) to an absolute address in the
// program-wide map. Address monotonicity (address(A)+size(A) ==
// address(B) for consecutive blocks A, B) follows directly from this
// walk. Intra-block labels are deliberately NOT merged into the
// program-wide map here — they are resolved per-block in pass 2 via
// Block.LocalLabels, so that per-instruction IL-offset labels
// (instruction_XXXX) from different methods never collide in a single
// global namespace.
func (p *Program) ResolvePass1(base int) error {
	addr := base
	for _, b := range p.Blocks {
		if b.Label != "" {
			if _, exists := p.Globals[b.Label]; exists {
				return fmt.Errorf("obj: duplicate label %q", b.Label)
			}
			p.Globals[b.Label] = addr
		}
		addr += b.Size()
	}
	return nil
}

// BlockAddr returns the address assigned to block b by ResolvePass1 — the
// sum of the sizes of every block before it, plus base. The linker's
// pass 2 tracks block addresses itself and does not call it.
func (p *Program) BlockAddr(base int, b *Block) int {
	addr := base
	for _, cur := range p.Blocks {
		if cur == b {
			return addr
		}
		addr += cur.Size()
	}
	return addr
}

// End returns the address immediately past the last block, i.e. base plus
// the sum of every block's size.
func (p *Program) End(base int) int {
	addr := base
	for _, b := range p.Blocks {
		addr += b.Size()
	}
	return addr
}
