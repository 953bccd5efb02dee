// Package runtimelib emits the fixed family of hand-authored 6502
// subroutines every produced ROM links against: reset/NMI handling,
// hardware setup, PPU helpers, the software argument stack, and a set of
// optional routines included only when the program actually calls them.
package runtimelib

// Fixed hardware and shadow-buffer addresses (spec §6).
const (
	OAMShadow     = 0x0200 // object-attribute shadow buffer, DMA'd to OAM each NMI
	PaletteShadow = 0x01C0 // palette shadow buffer, uploaded to PPU each NMI
	ZeroPageBase  = 0x0325 // first address of the locals/temps allocation region

	// PPU-mapped registers.
	PPUCtrl   = 0x2000
	PPUMask   = 0x2001
	PPUStatus = 0x2002
	OAMAddr   = 0x2003
	PPUScroll = 0x2005
	PPUAddr   = 0x2006
	PPUData   = 0x2007
	OAMDMA    = 0x4014

	// APU/controller registers used by the optional audio and pad routines.
	APUStatus  = 0x4015
	APUFrame   = 0x4017
	Joypad1    = 0x4016
	Joypad2    = 0x4017
)

// Reserved zero-page slots the runtime library itself owns, below
// ZeroPageBase where the code generator's locals and temps begin.
const (
	ZPNMIReady      = 0x00 // set by NMI, polled by a frame-wait helper
	ZPPPUCtrlShadow = 0x01
	ZPScrollX       = 0x02
	ZPScrollY       = 0x03
	ZPNTBufCount    = 0x04 // number of pending nametable updates this frame
	ZPVRAMTemp      = 0x05
	ZPSoftSP        = 0x06 // software-stack pointer, indexes into the stack page
	ZPTemp          = 0x08 // scratch used by arithmetic peephole spills ("TEMP")
	ZPTemp2         = 0x09
	ZPMulHi         = 0x0A // high-byte accumulator for power-of-two multiply/16-bit ops
	ZPPadShadow     = 0x0B // controller-poll shadow, read repeatedly for successive masks
	ZPPadShadow2    = 0x0C
	ZPNMICallbackLo = 0x0D // indirection: user NMI callback pointer, low byte
	ZPNMICallbackHi = 0x0E
)

// SoftStackPage is the base page of the in-RAM software stack used for
// pushing/popping 8- and 16-bit argument values, distinct from the 6502's
// hardware stack.
const SoftStackPage = 0x0100

// NTUpdateBufAddr is a small nametable-update queue the runtime's NMI
// dispatcher drains each frame (3 bytes per entry: PPU address high byte,
// low byte, data byte); kept out of the zero page since it is not
// latency-critical.
const NTUpdateBufAddr = 0x0210
