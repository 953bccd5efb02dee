package codegen

import (
	"fmt"
	"sort"

	"github.com/nesilc/nesilc/internal/ilimage"
	"github.com/nesilc/nesilc/internal/obj"
	"github.com/nesilc/nesilc/internal/runtimelib"
)

// Module is the code generator's whole-program state: the data tables
// (strings, byte-array literals, named ushort tables) assigned labels in
// encounter/declaration order, the shared zero-page bump allocator for
// locals, and the destructor table the linker appends near the end of the
// program (spec §4.5 layout item 8).
type Module struct {
	prog *ilimage.Program

	nextLocal int
	maxLocal  int

	stringLabel    map[string]string // literal -> label, first-encounter order preserved in stringOrder
	stringOrder    []string
	byteArrayLabel map[string]string // raw bytes (as a string key) -> label
	byteArrayData  map[string][]byte
	byteArrayOrder []string

	musicTables map[string][]uint16 // name -> row data; no intrinsic handler adds entries
	musicOrder  []string

	destructors []string // labels of destructor routines, in registration order

	errs []error
}

// Result is everything Compile produced: one obj.Block per method plus
// the data-table blocks the linker places after the user methods.
type Result struct {
	MethodBlocks []*obj.Block
	DataBlocks   []*obj.Block
	UsedBuiltin  map[string]bool
	Destructors  []string
	LocalCount   int
}

// Compile lowers every internal method in prog to native code, in
// declaration order, then emits the accumulated data tables.
func Compile(prog *ilimage.Program) (*Result, error) {
	m := &Module{
		prog:           prog,
		nextLocal:      runtimelib.ZeroPageBase,
		stringLabel:    make(map[string]string),
		byteArrayLabel: make(map[string]string),
		byteArrayData:  make(map[string][]byte),
		musicTables:    make(map[string][]uint16),
	}

	var methodBlocks []*obj.Block
	for _, method := range prog.Methods {
		if method.Linkage != ilimage.LinkageInternal {
			continue
		}
		g := newGenerator(m, method)
		if err := g.run(); err != nil {
			return nil, err
		}
		methodBlocks = append(methodBlocks, g.block)
	}
	if len(m.errs) > 0 {
		return nil, m.errs[0]
	}

	return &Result{
		MethodBlocks: methodBlocks,
		DataBlocks:   m.dataBlocks(),
		UsedBuiltin:  prog.UsedBuiltin,
		Destructors:  m.destructors,
		LocalCount:   m.maxLocal - runtimelib.ZeroPageBase,
	}, nil
}

// dataBlocks emits named ushort tables first, then byte-array literals in
// declaration order, then strings in encounter order — spec §4.5 layout
// item 7.
func (m *Module) dataBlocks() []*obj.Block {
	var out []*obj.Block

	names := make([]string, 0, len(m.musicTables))
	for n := range m.musicTables {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b := obj.NewBlock(n)
		for _, row := range m.musicTables[n] {
			b.Append(obj.Raw([]byte{byte(row), byte(row >> 8)}))
		}
		out = append(out, b)
	}

	for _, key := range m.byteArrayOrder {
		label := m.byteArrayLabel[key]
		b := obj.NewBlock(label)
		b.Append(obj.Raw(m.byteArrayData[key]))
		out = append(out, b)
	}

	for _, lit := range m.stringOrder {
		label := m.stringLabel[lit]
		b := obj.NewBlock(label)
		b.Append(obj.Raw(append([]byte(lit), 0)))
		out = append(out, b)
	}
	return out
}

// internString assigns (or reuses) a "string_N" label for a literal, in
// first-encounter order.
func (m *Module) internString(lit string) string {
	if label, ok := m.stringLabel[lit]; ok {
		return label
	}
	label := fmt.Sprintf("string_%d", len(m.stringOrder))
	m.stringLabel[lit] = label
	m.stringOrder = append(m.stringOrder, lit)
	return label
}

// internByteArray assigns a label to a field-RVA byte blob, in
// declaration (first-encounter) order.
func (m *Module) internByteArray(data []byte) string {
	key := string(data)
	if label, ok := m.byteArrayLabel[key]; ok {
		return label
	}
	label := fmt.Sprintf("bytearray_%d", len(m.byteArrayOrder))
	m.byteArrayLabel[key] = label
	m.byteArrayData[key] = data
	m.byteArrayOrder = append(m.byteArrayOrder, key)
	return label
}
