package runtimelib

import "github.com/nesilc/nesilc/internal/obj"

// block is a small convenience wrapper so each routine below reads as a
// flat list of instructions rather than a chain of Append calls.
func block(label string, instrs ...obj.Instruction) *obj.Block {
	b := obj.NewBlock(label)
	for _, in := range instrs {
		b.Append(in)
	}
	return b
}

// resetBlock is the CPU reset entry point: disable interrupts and
// decimal mode, set up the hardware stack, turn the PPU off, wait two
// vblanks (the standard NES power-on stabilization wait), clear RAM and
// the OAM shadow buffer, then hand off to the program's main body.
func resetBlock() *obj.Block {
	b := obj.NewBlock("reset")
	b.Append(obj.Impl(obj.OpSEI))
	b.Append(obj.Impl(obj.OpCLD))
	b.Append(obj.Imm(obj.OpLDX_imm, 0xFF))
	b.Append(obj.Impl(obj.OpTXS))
	b.Append(obj.Imm(obj.OpLDA_imm, 0x00))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUCtrl))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUMask))
	b.Append(obj.Abs(obj.OpSTA_abs, 0x4010)) // disable DMC IRQ

	b.SetNextLabel("reset_vblank1")
	b.Append(obj.Abs(obj.OpBIT_abs, PPUStatus))
	b.Append(obj.Branch(obj.OpBPL, "reset_vblank1"))

	b.Append(obj.Imm(obj.OpLDX_imm, 0x00))
	b.SetNextLabel("reset_clear_ram")
	b.Append(obj.Imm(obj.OpLDA_imm, 0x00))
	b.Append(obj.ZPX(obj.OpSTA_zpx, 0x00))
	b.Append(obj.AbsX(obj.OpSTA_absx, 0x0200))
	b.Append(obj.AbsX(obj.OpSTA_absx, 0x0300))
	b.Append(obj.AbsX(obj.OpSTA_absx, 0x0400))
	b.Append(obj.AbsX(obj.OpSTA_absx, 0x0500))
	b.Append(obj.AbsX(obj.OpSTA_absx, 0x0600))
	b.Append(obj.AbsX(obj.OpSTA_absx, 0x0700))
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.Branch(obj.OpBNE, "reset_clear_ram"))

	b.Append(obj.Imm(obj.OpLDA_imm, 0xFF))
	b.Append(obj.Imm(obj.OpLDX_imm, 0x00))
	b.SetNextLabel("reset_clear_oam")
	b.Append(obj.AbsX(obj.OpSTA_absx, OAMShadow))
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.Branch(obj.OpBNE, "reset_clear_oam"))

	b.SetNextLabel("reset_vblank2")
	b.Append(obj.Abs(obj.OpBIT_abs, PPUStatus))
	b.Append(obj.Branch(obj.OpBPL, "reset_vblank2"))

	b.Append(obj.Imm(obj.OpLDX_imm, 0xFF))
	b.Append(obj.ZP(obj.OpSTX_zp, ZPSoftSP))
	b.Append(obj.ToLabel(obj.OpJMP_abs, "main"))
	return b
}

// nmiBlock is the non-maskable-interrupt service routine: saves the
// registers, uploads the palette shadow buffer, performs OAM DMA,
// dispatches queued nametable updates, writes the pending scroll
// position, invokes the user NMI callback indirection if one is
// registered, then restores registers and returns.
func nmiBlock() *obj.Block {
	b := obj.NewBlock("nmi")
	b.Append(obj.Impl(obj.OpPHA))
	b.Append(obj.Impl(obj.OpTXA))
	b.Append(obj.Impl(obj.OpPHA))
	b.Append(obj.Impl(obj.OpTYA))
	b.Append(obj.Impl(obj.OpPHA))

	b.Append(obj.ToLabel(obj.OpJSR, "palette_upload"))
	b.Append(obj.ToLabel(obj.OpJSR, "oam_dma"))
	b.Append(obj.ToLabel(obj.OpJSR, "nt_update_dispatch"))
	b.Append(obj.ToLabel(obj.OpJSR, "scroll_write"))

	b.Append(obj.ZP(obj.OpLDA_zp, ZPNMICallbackLo))
	b.Append(obj.Branch(obj.OpBEQ, "nmi_no_callback"))
	b.Append(obj.ToLabel(obj.OpJSR, "nmi_invoke_callback"))
	b.SetNextLabel("nmi_no_callback")

	b.Append(obj.Imm(obj.OpLDA_imm, 0x01))
	b.Append(obj.ZP(obj.OpSTA_zp, ZPNMIReady))

	b.Append(obj.Impl(obj.OpPLA))
	b.Append(obj.Impl(obj.OpTAY))
	b.Append(obj.Impl(obj.OpPLA))
	b.Append(obj.Impl(obj.OpTAX))
	b.Append(obj.Impl(obj.OpPLA))
	b.Append(obj.Impl(obj.OpRTI))
	return b
}

// nmiInvokeCallback jumps through the registered callback pointer; it is
// its own block so the indirect jump's operand bytes stay fixed
// regardless of which user routine ends up registered at runtime.
func nmiInvokeCallback() *obj.Block {
	b := obj.NewBlock("nmi_invoke_callback")
	b.Append(obj.Instruction{Opcode: obj.OpJMP_ind, Mode: obj.ModeIndirect,
		Operand: obj.Operand{Kind: obj.OperandWord, Word: ZPNMICallbackLo}})
	return b
}

func ppuOnBlock() *obj.Block {
	return block("ppu_on",
		obj.Imm(obj.OpLDA_imm, 0x80),
		obj.ZP(obj.OpSTA_zp, ZPPPUCtrlShadow),
		obj.Abs(obj.OpSTA_abs, PPUCtrl),
		obj.Imm(obj.OpLDA_imm, 0x1E),
		obj.Abs(obj.OpSTA_abs, PPUMask),
		obj.Impl(obj.OpRTS),
	)
}

func ppuOffBlock() *obj.Block {
	return block("ppu_off",
		obj.Imm(obj.OpLDA_imm, 0x00),
		obj.Abs(obj.OpSTA_abs, PPUMask),
		obj.Impl(obj.OpRTS),
	)
}

// ppuMaskBlock sets PPUMASK to the value passed in A, for callers needing
// finer control than ppu_on/ppu_off (e.g. background-only, no sprites).
func ppuMaskBlock() *obj.Block {
	return block("ppu_mask",
		obj.Abs(obj.OpSTA_abs, PPUMask),
		obj.Impl(obj.OpRTS),
	)
}

func paletteUploadBlock() *obj.Block {
	b := obj.NewBlock("palette_upload")
	b.Append(obj.Imm(obj.OpLDA_imm, 0x3F))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUAddr))
	b.Append(obj.Imm(obj.OpLDA_imm, 0x00))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUAddr))
	b.Append(obj.Imm(obj.OpLDX_imm, 0x00))
	b.SetNextLabel("palette_upload_loop")
	b.Append(obj.AbsX(obj.OpLDA_absx, PaletteShadow))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUData))
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.Imm(obj.OpCPX_imm, 0x20))
	b.Append(obj.Branch(obj.OpBNE, "palette_upload_loop"))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

func oamDMABlock() *obj.Block {
	return block("oam_dma",
		obj.Imm(obj.OpLDA_imm, byte(OAMShadow>>8)),
		obj.Abs(obj.OpSTA_abs, OAMDMA),
		obj.Impl(obj.OpRTS),
	)
}

// ntUpdateDispatchBlock drains the small nametable-update queue at
// NTUpdateBufAddr: ZPNTBufCount entries of 3 bytes each (PPU address high
// byte, PPU address low byte, then the one data byte written to PPUDATA).
// With a zero count it returns at once.
func ntUpdateDispatchBlock() *obj.Block {
	b := obj.NewBlock("nt_update_dispatch")
	b.Append(obj.ZP(obj.OpLDA_zp, ZPNTBufCount))
	b.Append(obj.Branch(obj.OpBEQ, "nt_update_dispatch_done"))
	b.Append(obj.Imm(obj.OpLDX_imm, 0x00))
	b.SetNextLabel("nt_update_dispatch_loop")
	b.Append(obj.AbsX(obj.OpLDA_absx, NTUpdateBufAddr))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUAddr))
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.AbsX(obj.OpLDA_absx, NTUpdateBufAddr))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUAddr))
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.AbsX(obj.OpLDA_absx, NTUpdateBufAddr))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUData))
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.ZP(obj.OpDEC_zp, ZPNTBufCount))
	b.Append(obj.Branch(obj.OpBNE, "nt_update_dispatch_loop"))
	b.SetNextLabel("nt_update_dispatch_done")
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

func scrollWriteBlock() *obj.Block {
	return block("scroll_write",
		obj.ZP(obj.OpLDA_zp, ZPScrollX),
		obj.Abs(obj.OpSTA_abs, PPUScroll),
		obj.ZP(obj.OpLDA_zp, ZPScrollY),
		obj.Abs(obj.OpSTA_abs, PPUScroll),
		obj.Impl(obj.OpRTS),
	)
}

// vramSetAddrBlock sets PPUADDR from A (high) and X (low), the calling
// convention every other vram_* helper builds on.
func vramSetAddrBlock() *obj.Block {
	return block("vram_set_addr",
		obj.Abs(obj.OpSTA_abs, PPUAddr),
		obj.Impl(obj.OpTXA),
		obj.Abs(obj.OpSTA_abs, PPUAddr),
		obj.Impl(obj.OpRTS),
	)
}

func vramPutBlock() *obj.Block {
	return block("vram_put",
		obj.Abs(obj.OpSTA_abs, PPUData),
		obj.Impl(obj.OpRTS),
	)
}

// vramWriteRunBlock writes X bytes, read through the source pointer held
// in the zero-page pair ZPTemp/ZPTemp2, straight to PPUDATA.
func vramWriteRunBlock() *obj.Block {
	b := obj.NewBlock("vram_write_run")
	b.Append(obj.Impl(obj.OpTXA))
	b.Append(obj.ZP(obj.OpSTA_zp, ZPVRAMTemp))
	b.Append(obj.Imm(obj.OpLDY_imm, 0x00))
	b.SetNextLabel("vram_write_run_loop")
	b.Append(obj.IndY(obj.OpLDA_izy, ZPTemp))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUData))
	b.Append(obj.Impl(obj.OpINY))
	b.Append(obj.ZP(obj.OpDEC_zp, ZPVRAMTemp))
	b.Append(obj.Branch(obj.OpBNE, "vram_write_run_loop"))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// vramFillBlock writes A to PPUDATA X times (clearing a nametable or
// attribute region).
func vramFillBlock() *obj.Block {
	b := obj.NewBlock("vram_fill")
	b.Append(obj.ZP(obj.OpSTA_zp, ZPTemp2))
	b.SetNextLabel("vram_fill_loop")
	b.Append(obj.ZP(obj.OpLDA_zp, ZPTemp2))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUData))
	b.Append(obj.Impl(obj.OpDEX))
	b.Append(obj.Branch(obj.OpBNE, "vram_fill_loop"))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// vramIncModeBlock selects the PPUADDR auto-increment (1 vs 32) via
// PPUCTRL bit 2, preserving the other shadowed bits.
func vramIncModeBlock() *obj.Block {
	b := obj.NewBlock("vram_inc_mode")
	b.Append(obj.ZP(obj.OpLDA_zp, ZPPPUCtrlShadow))
	b.Append(obj.Imm(obj.OpAND_imm, 0xFB))
	b.Append(obj.Impl(obj.OpTAY))
	b.Append(obj.Imm(obj.OpCPX_imm, 0x00))
	b.Append(obj.Branch(obj.OpBEQ, "vram_inc_mode_store"))
	b.Append(obj.Impl(obj.OpTYA))
	b.Append(obj.Imm(obj.OpORA_imm, 0x04))
	b.Append(obj.Impl(obj.OpTAY))
	b.SetNextLabel("vram_inc_mode_store")
	b.Append(obj.Impl(obj.OpTYA))
	b.Append(obj.ZP(obj.OpSTA_zp, ZPPPUCtrlShadow))
	b.Append(obj.Abs(obj.OpSTA_abs, PPUCtrl))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// delayBlock busy-waits roughly X*256+A iterations of a 7-cycle loop —
// used by intrinsics that need a coarse pause outside of frame timing.
func delayBlock() *obj.Block {
	b := obj.NewBlock("delay")
	b.SetNextLabel("delay_outer")
	b.SetNextLabel("delay_inner")
	b.Append(obj.Impl(obj.OpSEC))
	b.Append(obj.Imm(obj.OpSBC_imm, 0x01))
	b.Append(obj.Branch(obj.OpBNE, "delay_inner"))
	b.Append(obj.Impl(obj.OpDEX))
	b.Append(obj.Branch(obj.OpBNE, "delay_outer"))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// Software-stack primitives: an in-RAM stack (distinct from the 6502
// hardware stack) used for passing arguments and holding 16-bit values
// across call boundaries, indexed by ZPSoftSP and growing downward from
// the top of SoftStackPage.
func pushaBlock() *obj.Block {
	b := obj.NewBlock("pusha")
	b.Append(obj.ZP(obj.OpLDY_zp, ZPSoftSP))
	b.Append(obj.AbsY(obj.OpSTA_absy, SoftStackPage))
	b.Append(obj.ZP(obj.OpDEC_zp, ZPSoftSP))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

func pushaxBlock() *obj.Block {
	b := obj.NewBlock("pushax")
	b.Append(obj.ZP(obj.OpLDY_zp, ZPSoftSP))
	b.Append(obj.AbsY(obj.OpSTA_absy, SoftStackPage))
	b.Append(obj.ZP(obj.OpDEC_zp, ZPSoftSP))
	b.Append(obj.Impl(obj.OpTXA))
	b.Append(obj.ZP(obj.OpLDY_zp, ZPSoftSP))
	b.Append(obj.AbsY(obj.OpSTA_absy, SoftStackPage))
	b.Append(obj.ZP(obj.OpDEC_zp, ZPSoftSP))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

func popaBlock() *obj.Block {
	b := obj.NewBlock("popa")
	b.Append(obj.ZP(obj.OpINC_zp, ZPSoftSP))
	b.Append(obj.ZP(obj.OpLDX_zp, ZPSoftSP))
	b.Append(obj.AbsX(obj.OpLDA_absx, SoftStackPage))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

func popaxBlock() *obj.Block {
	b := obj.NewBlock("popax")
	b.Append(obj.ZP(obj.OpINC_zp, ZPSoftSP))
	b.Append(obj.ZP(obj.OpLDY_zp, ZPSoftSP))
	b.Append(obj.AbsY(obj.OpLDA_absy, SoftStackPage))
	b.Append(obj.Impl(obj.OpTAX))
	b.Append(obj.ZP(obj.OpINC_zp, ZPSoftSP))
	b.Append(obj.ZP(obj.OpLDY_zp, ZPSoftSP))
	b.Append(obj.AbsY(obj.OpLDA_absy, SoftStackPage))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// incsp1Block..incsp8Block drop N bytes pushed for arguments that the
// callee's epilogue doesn't consume itself (a fixed-size family rather
// than a parameterized routine, matching the original runtime's
// incsp1/incsp2/.../incsp8 convention).
func incspBlock(n int) *obj.Block {
	label := incspLabel(n)
	b := obj.NewBlock(label)
	for i := 0; i < n; i++ {
		b.Append(obj.ZP(obj.OpINC_zp, ZPSoftSP))
	}
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

func incspLabel(n int) string {
	names := [...]string{"", "incsp1", "incsp2", "incsp3", "incsp4", "incsp5", "incsp6", "incsp7", "incsp8"}
	return names[n]
}

// bssZeroBlock zeros the generator's local-variable zero-page region,
// from ZeroPageBase to ZeroPageBase+localCount-1. Its body genuinely
// depends on the local count, per spec §4.5, so the linker builds it with
// the final count once code generation for every method has finished.
func bssZeroBlock(localCount int) *obj.Block {
	b := obj.NewBlock("bss_zero")
	if localCount <= 0 {
		b.Append(obj.Impl(obj.OpRTS))
		return b
	}
	b.Append(obj.Imm(obj.OpLDA_imm, 0x00))
	b.Append(obj.Imm(obj.OpLDX_imm, byte(localCount)))
	b.SetNextLabel("bss_zero_loop")
	b.Append(obj.AbsX(obj.OpSTA_absx, ZeroPageBase-1))
	b.Append(obj.Impl(obj.OpDEX))
	b.Append(obj.Branch(obj.OpBNE, "bss_zero_loop"))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// copydataBlock copies a label-addressed, length-prefixed run of ROM
// bytes to a RAM destination; X:A give the length, the source/dest
// pointers arrive via the software stack, matching the calling
// convention user code uses for initializing RAM-backed arrays from ROM
// literals.
func copydataBlock() *obj.Block {
	b := obj.NewBlock("copydata")
	b.Append(obj.ZP(obj.OpSTX_zp, ZPTemp))
	b.Append(obj.Imm(obj.OpLDY_imm, 0x00))
	b.SetNextLabel("copydata_loop")
	b.Append(obj.IndY(obj.OpLDA_izy, ZPTemp2))
	b.Append(obj.IndY(obj.OpSTA_izy, ZPMulHi))
	b.Append(obj.Impl(obj.OpINY))
	b.Append(obj.ZP(obj.OpDEC_zp, ZPTemp))
	b.Append(obj.Branch(obj.OpBNE, "copydata_loop"))
	b.Append(obj.Impl(obj.OpRTS))
	return b
}

// donelibBlock dispatches the destructor table the linker appends near
// the end of the program; with no destructor-bearing types it reduces to
// a bare return. Each table entry is a 2-byte little-endian address of a
// destructor's first instruction minus one; donelib JSRs to a small
// trampoline that calls through it with the classic push-then-RTS idiom
// (6502 has no JSR-indirect), so the destructor's own trailing RTS
// returns here rather than to donelib's caller.
func donelibBlock(destructorTableLabel string, hasDestructors bool) *obj.Block {
	b := obj.NewBlock("donelib")
	if !hasDestructors {
		b.Append(obj.Impl(obj.OpRTS))
		return b
	}
	b.Append(obj.Imm(obj.OpLDX_imm, 0x00))
	b.SetNextLabel("donelib_loop")
	b.Append(obj.AbsXLabel(obj.OpLDA_absx, destructorTableLabel))
	b.Append(obj.ZP(obj.OpSTA_zp, ZPTemp))
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.AbsXLabel(obj.OpLDA_absx, destructorTableLabel))
	b.Append(obj.Branch(obj.OpBEQ, "donelib_done"))
	b.Append(obj.ToLabel(obj.OpJSR, "donelib_call")) // the destructor's RTS returns to donelib_advance below
	b.SetNextLabel("donelib_advance")
	b.Append(obj.Impl(obj.OpINX))
	b.Append(obj.Branch(obj.OpBNE, "donelib_loop"))
	b.SetNextLabel("donelib_done")
	b.Append(obj.Impl(obj.OpRTS))
	b.SetNextLabel("donelib_call")
	b.Append(obj.Impl(obj.OpPHA))
	b.Append(obj.ZP(obj.OpLDA_zp, ZPTemp))
	b.Append(obj.Impl(obj.OpPHA))
	b.Append(obj.Impl(obj.OpRTS)) // "calls" the destructor
	return b
}

// CoreRoutines returns the always-included runtime block set, in the
// fixed relative order spec §4.5 requires for the layout's "runtime
// helpers" section.
func CoreRoutines() []*obj.Block {
	return []*obj.Block{
		resetBlock(),
		nmiBlock(),
		nmiInvokeCallback(),
		ppuOnBlock(),
		ppuOffBlock(),
		ppuMaskBlock(),
		paletteUploadBlock(),
		oamDMABlock(),
		ntUpdateDispatchBlock(),
		scrollWriteBlock(),
		vramSetAddrBlock(),
		vramPutBlock(),
		vramWriteRunBlock(),
		vramFillBlock(),
		vramIncModeBlock(),
		delayBlock(),
		pushaBlock(),
		pushaxBlock(),
		popaxBlock(),
		popaBlock(),
		incspBlock(1), incspBlock(2), incspBlock(3), incspBlock(4),
		incspBlock(5), incspBlock(6), incspBlock(7), incspBlock(8),
		copydataBlock(),
	}
}
