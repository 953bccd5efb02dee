package runtimelib

import "github.com/nesilc/nesilc/internal/obj"

// Names of the optional, conditionally-included runtime routines, also
// used as the set of intrinsic names the code generator recognizes for
// direct calls (spec §4.4 "method call").
const (
	NamePadPoll       = "pad_poll"
	NameMetaspriteWr  = "metasprite_write"
	NameNTAddrRuntime = "nt_addr_runtime"
	NameWordAdd       = "word_add"
	NameWordSub       = "word_sub"
	NameAudioInit     = "audio_init"
	NameAudioTick     = "audio_tick"
)

// padPollBlock reads controller 1 via the standard 8-shift-register
// protocol (strobe high then low, then clock 8 bits), leaving the button
// mask in A and shadowing it to ZPPadShadow for the controller-input
// peephole's repeated-mask-test path.
func padPollBlock() *obj.Block {
	b := obj.NewBlock(NamePadPoll)
	b.Append(obj.Imm(obj.OpLDA_imm, 0x01))
	b.Append(obj.Abs(obj.OpSTA_abs, Joypad1))
	b.Append(obj.Imm(obj.OpLDA_imm, 0x00))
	b.Append(obj.Abs(obj.OpSTA_abs, Joypad1))
	b.Append(obj.Imm(obj.OpLDX_imm, 0x08))
	b.SetNextLabel("pad_poll_loop")
	b.Append(obj.Abs(obj.OpLDA_abs, Joypad1))
	b.Append(obj.Impl(obj.OpLSR_a))
	b.Append(obj.ZP(obj.OpROL_zp, ZPPadShadow))
	b.Append(obj.Impl(obj.OpDEX))
	b.Append(obj.Branch(obj.OpBNE, "pad_poll_loop"))
	b.Append(obj.ZP(obj.OpLDA_zp, ZPPadShadow))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// metaspriteWriteBlock writes one 4-byte OAM entry into the OAM shadow
// buffer at the slot index passed in X (rounded down to a multiple of 4),
// taking its four bytes, in order, from ZPTemp, ZPTemp2, ZPMulHi and
// ZPPadShadow2.
func metaspriteWriteBlock() *obj.Block {
	b := obj.NewBlock(NameMetaspriteWr)
	b.Append(obj.Impl(obj.OpTXA))
	b.Append(obj.Imm(obj.OpAND_imm, 0xFC)) // align to a 4-byte OAM entry
	b.Append(obj.Impl(obj.OpTAX))
	b.Append(obj.ZP(obj.OpLDA_zp, ZPTemp))
	b.Append(obj.AbsX(obj.OpSTA_absx, OAMShadow))
	b.Append(obj.ZP(obj.OpLDA_zp, ZPTemp2))
	b.Append(obj.AbsX(obj.OpSTA_absx, OAMShadow+1))
	b.Append(obj.ZP(obj.OpLDA_zp, ZPMulHi))
	b.Append(obj.AbsX(obj.OpSTA_absx, OAMShadow+2))
	b.Append(obj.ZP(obj.OpLDA_zp, ZPPadShadow2))
	b.Append(obj.AbsX(obj.OpSTA_absx, OAMShadow+3))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// ntAddrRuntimeBlock computes the 32x30-tile nametable address for (X, A)
// = (tile-x, tile-y) at runtime, for calls to nametable-address-A/B/C/D
// whose operands are not both compile-time constants. Result: low byte in
// A, high byte in X, the pair the generator tracks as a runtime 16-bit
// value.
func ntAddrRuntimeBlock() *obj.Block {
	b := obj.NewBlock(NameNTAddrRuntime)
	b.Append(obj.ZP(obj.OpSTA_zp, ZPTemp)) // y
	b.Append(obj.Impl(obj.OpTXA))
	b.Append(obj.ZP(obj.OpSTA_zp, ZPTemp2)) // x
	// addr = $2000 + y*32 + x
	b.Append(obj.ZP(obj.OpLDA_zp, ZPTemp))
	b.Append(obj.Impl(obj.OpASL_a))
	b.Append(obj.Impl(obj.OpASL_a))
	b.Append(obj.Impl(obj.OpASL_a))
	b.Append(obj.Impl(obj.OpASL_a))
	b.Append(obj.Impl(obj.OpASL_a))
	b.Append(obj.ZP(obj.OpSTA_zp, ZPMulHi)) // low 8 bits of y*32 (with carry folded below)
	b.Append(obj.ZP(obj.OpLDA_zp, ZPTemp))
	b.Append(obj.Imm(obj.OpLDX_imm, 0x20))
	b.Append(obj.Impl(obj.OpLSR_a))
	b.Append(obj.Impl(obj.OpLSR_a))
	b.Append(obj.Impl(obj.OpLSR_a))
	b.Append(obj.Impl(obj.OpCLC))
	b.Append(obj.Imm(obj.OpADC_imm, 0x20)) // high byte base $20, plus carry-out bits of y*32
	b.Append(obj.Impl(obj.OpTAX))
	b.Append(obj.ZP(obj.OpLDA_zp, ZPMulHi))
	b.Append(obj.Impl(obj.OpCLC))
	b.Append(obj.ZP(obj.OpADC_zp, ZPTemp2))
	b.Append(obj.Imm(obj.OpLDY_imm, 0x00))
	b.Append(obj.Branch(obj.OpBCC, "nt_addr_runtime_done"))
	b.Append(obj.Impl(obj.OpINX))
	b.SetNextLabel("nt_addr_runtime_done")
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// wordAddBlock adds the 16-bit value in (ZPTemp2:ZPMulHi) to A:X in
// place, leaving the 16-bit sum in A:X. Used when a 16-bit add can't be
// folded to INC/DEC and isn't a simple add-constant (spec §4.4
// "Arithmetic").
func wordAddBlock() *obj.Block {
	b := obj.NewBlock(NameWordAdd)
	b.Append(obj.Impl(obj.OpCLC))
	b.Append(obj.ZP(obj.OpADC_zp, ZPTemp2))
	b.Append(obj.Impl(obj.OpPHA))
	b.Append(obj.Impl(obj.OpTXA))
	b.Append(obj.ZP(obj.OpADC_zp, ZPMulHi))
	b.Append(obj.Impl(obj.OpTAX))
	b.Append(obj.Impl(obj.OpPLA))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// wordSubBlock subtracts (ZPTemp2:ZPMulHi) from A:X in place.
func wordSubBlock() *obj.Block {
	b := obj.NewBlock(NameWordSub)
	b.Append(obj.Impl(obj.OpSEC))
	b.Append(obj.ZP(obj.OpSBC_zp, ZPTemp2))
	b.Append(obj.Impl(obj.OpPHA))
	b.Append(obj.Impl(obj.OpTXA))
	b.Append(obj.ZP(obj.OpSBC_zp, ZPMulHi))
	b.Append(obj.Impl(obj.OpTAX))
	b.Append(obj.Impl(obj.OpPLA))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// audioInitBlock enables the pulse, triangle and noise channels ($4015 =
// $0F) and sets the frame counter to the 4-step sequence with its frame
// IRQ inhibited ($4017 = $40).
func audioInitBlock() *obj.Block {
	b := obj.NewBlock(NameAudioInit)
	b.Append(obj.Imm(obj.OpLDA_imm, 0x0F))
	b.Append(obj.Abs(obj.OpSTA_abs, APUStatus))
	b.Append(obj.Imm(obj.OpLDA_imm, 0x40))
	b.Append(obj.Abs(obj.OpSTA_abs, APUFrame))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// audioTickBlock reads the music-table byte at the cursor held in ZPTemp,
// writes it to the pulse-1 register and advances the cursor by one row per
// call; with no music table it is a bare RTS. The NMI handler does not
// call it; the start_music intrinsic emits one JSR to it.
func audioTickBlock(musicTableLabel string, hasMusic bool) *obj.Block {
	b := obj.NewBlock(NameAudioTick)
	if !hasMusic {
		b.Append(obj.Impl(obj.OpRTS))
		return b
	}
	b.Append(obj.ZP(obj.OpLDX_zp, ZPTemp))
	b.Append(obj.AbsXLabel(obj.OpLDA_absx, musicTableLabel))
	b.Append(obj.Abs(obj.OpSTA_abs, 0x4000)) // pulse-1 duty/volume
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.ZP(obj.OpSTX_zp, ZPTemp))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// OptionalRoutine names one gated routine and the block it compiles to.
type OptionalRoutine struct {
	Name  string
	Block func() *obj.Block
}

// OptionalRoutines lists every conditionally-included routine, keyed by
// the intrinsic/runtime name the IL reader's used-method set tracks.
// Excluded routines shift downstream block addresses; their absence is
// simply their block never being appended (spec §4.3, §8 "A program
// using no optional runtime routines").
var OptionalRoutines = []OptionalRoutine{
	{NamePadPoll, padPollBlock},
	{NameMetaspriteWr, metaspriteWriteBlock},
	{NameNTAddrRuntime, ntAddrRuntimeBlock},
	{NameWordAdd, wordAddBlock},
	{NameWordSub, wordSubBlock},
	{NameAudioInit, audioInitBlock},
}
