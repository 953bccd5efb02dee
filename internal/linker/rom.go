package linker

import (
	"github.com/nesilc/nesilc/internal/diag"
)

// assembleROM pads the emitted code to the two program banks, appends the
// interrupt-vector triple at the end of the second bank, and prepends the
// 16-byte iNES header, followed by the character-pattern bank (spec §4.5
// item 9-11, §6 "Output ROM").
func assembleROM(code []byte, globals map[string]int, chars []byte, mirror Mirroring) ([]byte, error) {
	maxCode := 2*bankSize - vectorSize
	if len(code) > maxCode {
		return nil, diag.Capacityf("program code is %d bytes, exceeds the %d-byte two-bank budget", len(code), maxCode)
	}

	// (9) pad to the first bank's boundary.
	bank1 := make([]byte, bankSize)
	copy(bank1, code)

	var bank2Code []byte
	if len(code) > bankSize {
		bank2Code = code[bankSize:]
	}
	// (10) pad the second bank up to 6 bytes from its end.
	bank2 := make([]byte, bankSize)
	copy(bank2, bank2Code)

	// (11) interrupt-vector triple: NMI, RESET, IRQ/BRK, each little-endian.
	nmi, ok := globals["nmi"]
	if !ok {
		return nil, diag.Unresolvedf("interrupt vector: %q", "nmi")
	}
	reset, ok := globals["reset"]
	if !ok {
		return nil, diag.Unresolvedf("interrupt vector: %q", "reset")
	}
	// This program never enables IRQ/BRK; the maskable vector is aliased
	// to reset as a harmless default, matching cc65's startup crt0 idiom
	// for carts that don't use it.
	irq := reset

	putWord(bank2, bankSize-6, nmi)
	putWord(bank2, bankSize-4, reset)
	putWord(bank2, bankSize-2, irq)

	header := make([]byte, 16)
	copy(header, []byte{'N', 'E', 'S', 0x1A})
	header[4] = 2 // program-bank count (32 KiB)
	header[5] = 1 // character-bank count (8 KiB)
	if mirror == MirrorVertical {
		header[6] = 0x01
	}

	paddedChars := make([]byte, charBank)
	copy(paddedChars, chars)

	out := make([]byte, 0, len(header)+2*bankSize+charBank)
	out = append(out, header...)
	out = append(out, bank1...)
	out = append(out, bank2...)
	out = append(out, paddedChars...)
	return out, nil
}

func putWord(buf []byte, offset, addr int) {
	buf[offset] = byte(addr)
	buf[offset+1] = byte(addr >> 8)
}
