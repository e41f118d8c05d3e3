// Package ppu implements PpuCore: the dot/scanline state machine shared
// by every supported console family, a 256-entry register port, and a
// framebuffer that can be internally owned or borrowed from the host.
package ppu

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// Family selects which variant sub-state PpuCore carries alongside the
// common dot/scanline machinery.
type Family int

const (
	FamilyNES Family = iota
	FamilySNES
	FamilyGenesisVDP
	FamilyGameBoy
)

// PixelFormat is the framebuffer's pixel encoding.
type PixelFormat int

const (
	PixelRGB565 PixelFormat = iota
	PixelRGB888
	PixelRGBA8888
)

func bytesPerPixel(f PixelFormat) int {
	switch f {
	case PixelRGB565:
		return 2
	case PixelRGB888:
		return 3
	default:
		return 4
	}
}

// VRAMAccess is the per-family renderer collaborator interface: VRAM/OAM/CGRAM read/write (the event sinks are the separate ScanlineFunc/FrameFunc types).
type VRAMAccess interface {
	ReadVRAM(addr uint16) byte
	WriteVRAM(addr uint16, value byte)
	ReadOAM(addr uint16) byte
	WriteOAM(addr uint16, value byte)
	ReadCGRAM(addr uint16) byte
	WriteCGRAM(addr uint16, value byte)
}

// ScanlineFunc and FrameFunc are the registrable event sinks.
type ScanlineFunc func(scanline int)
type FrameFunc func(fb []byte, w, h, pitch int)

// NESState holds the NES PPU's scroll-latch and sprite-zero substate.
type NESState struct {
	V, T       uint16
	X          byte
	W          bool
	Sprite0Hit bool
	NMIOccurred bool
}

// SNESState holds the small set of SNES PPU fields this core tracks.
type SNESState struct {
	Brightness byte
	Mode       byte
	Mosaic     byte
}

// GenesisVDPState holds the Genesis/SMS VDP's register/status/DMA state.
type GenesisVDPState struct {
	CodeRegister  byte
	Status        uint16
	AddressReg    uint16
	DMALength     uint16
	DMASource     uint32
	DMAPending    bool
}

// GameBoyState holds the Game Boy LCD controller's register file.
type GameBoyState struct {
	LCDC, STAT       byte
	SCX, SCY         byte
	WX, WY           byte
	LY, LYC          byte
}

// Config configures a new Core. DotsPerLine and ScanlinesPerFrame
// default to NTSC-ish 341/262 when zero; VisibleHeight defaults to 224.
type Config struct {
	Family           Family
	Width, Height    int
	Format           PixelFormat
	DotsPerLine      int
	ScanlinesPerFrame int
	VisibleHeight    int
	Framebuffer      []byte // non-nil: externally owned, borrowed for Core's lifetime
}

// Core is PpuCore (C4).
type Core struct {
	mu sync.Mutex

	family Family
	width, height int
	format PixelFormat
	pitch  int

	dotsPerLine       int
	scanlinesPerFrame int
	visibleHeight     int

	dot         int
	scanline    int
	frameCount  uint64
	inVBlank    bool
	frameReady  bool

	registers [256]byte

	nes      NESState
	snes     SNESState
	genesis  GenesisVDPState
	gameboy  GameBoyState

	framebuffer []byte
	external    bool

	access     VRAMAccess
	onScanline ScanlineFunc
	onFrame    FrameFunc
}

// New constructs a Core. If cfg.Framebuffer is non-nil the buffer is
// borrowed; otherwise
// one is allocated and owned internally. Returns nil on an invalid
// configuration, per the zero-width/height
// "constructor returns null" policy.
func New(cfg Config) *Core {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil
	}
	dots := cfg.DotsPerLine
	if dots == 0 {
		dots = 341
	}
	lines := cfg.ScanlinesPerFrame
	if lines == 0 {
		lines = 262
	}
	visible := cfg.VisibleHeight
	if visible == 0 {
		visible = 224
	}

	c := &Core{
		family:            cfg.Family,
		width:             cfg.Width,
		height:            cfg.Height,
		format:            cfg.Format,
		pitch:             cfg.Width * bytesPerPixel(cfg.Format),
		dotsPerLine:       dots,
		scanlinesPerFrame: lines,
		visibleHeight:     visible,
	}
	if cfg.Framebuffer != nil {
		c.framebuffer = cfg.Framebuffer
		c.external = true
	} else {
		c.framebuffer = make([]byte, c.pitch*cfg.Height)
	}
	return c
}

// SetVRAMAccess installs the per-family renderer collaborator.
func (c *Core) SetVRAMAccess(access VRAMAccess) { c.access = access }

// OnScanline/OnFrame register the two event sinks.
func (c *Core) OnScanline(fn ScanlineFunc) { c.onScanline = fn }
func (c *Core) OnFrame(fn FrameFunc)       { c.onFrame = fn }

// SetFramebuffer swaps in an externally-owned buffer, or nil to fall
// back to an internally-owned one of the same dimensions.
func (c *Core) SetFramebuffer(buf []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if buf == nil {
		c.framebuffer = make([]byte, c.pitch*c.height)
		c.external = false
		return
	}
	c.framebuffer = buf
	c.external = true
}

// Dimensions reports width, height and pitch (bytes per row).
func (c *Core) Dimensions() (w, h, pitch int) { return c.width, c.height, c.pitch }

// InVBlank, FrameReady, FrameCount expose the scheduler-visible flags.
func (c *Core) InVBlank() bool       { return c.inVBlank }
func (c *Core) FrameReady() bool     { return c.frameReady }
func (c *Core) FrameCount() uint64   { return c.frameCount }
func (c *Core) ClearFrameReady()     { c.frameReady = false }

// ReadRegister/WriteRegister implement the 256-entry register port
//. Variant-specific side effects belong to the renderer
// backend, not this core, so these only maintain the mirrored byte.
func (c *Core) ReadRegister(id byte) byte { return c.registers[id] }
func (c *Core) WriteRegister(id byte, value byte) { c.registers[id] = value }

// emitPixel renders one dot in the visible region by writing a solid
// black placeholder pixel straight into the framebuffer bytes, in place
// of the family-specific pixel kernel, which is out of scope for this core.
func (c *Core) emitPixel() {
	if c.dot >= c.width || c.scanline >= c.visibleHeight {
		return
	}
	off := c.scanline*c.pitch + c.dot*bytesPerPixel(c.format)
	switch c.format {
	case PixelRGB565:
		c.framebuffer[off] = 0
		c.framebuffer[off+1] = 0
	case PixelRGB888:
		c.framebuffer[off] = 0
		c.framebuffer[off+1] = 0
		c.framebuffer[off+2] = 0
	case PixelRGBA8888:
		c.framebuffer[off] = 0
		c.framebuffer[off+1] = 0
		c.framebuffer[off+2] = 0
		c.framebuffer[off+3] = 0xFF
	}
}

// ConvertTo blits the internal framebuffer into dst via
// golang.org/x/image/draw. Only an RGBA8888 framebuffer is handled; for
// any other source format ConvertTo returns without writing to dst.
func (c *Core) ConvertTo(dst *image.RGBA) {
	if c.format != PixelRGBA8888 {
		return
	}
	src := &image.RGBA{
		Pix:    c.framebuffer,
		Stride: c.pitch,
		Rect:   image.Rect(0, 0, c.width, c.height),
	}
	draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
}

// step advances exactly one dot.
func (c *Core) step() {
	c.emitPixel()

	c.dot++
	if c.dot == c.dotsPerLine {
		c.dot = 0
		c.scanline++
		if c.onScanline != nil {
			c.onScanline(c.scanline)
		}

		if c.scanline == c.visibleHeight {
			c.inVBlank = true
		}
		if c.scanline == c.scanlinesPerFrame {
			c.scanline = 0
			c.inVBlank = false
			c.frameCount++
			c.frameReady = true
			if c.onFrame != nil {
				c.onFrame(c.framebuffer, c.width, c.height, c.pitch)
			}
		}
	}
}

// Execute runs dots steps.
func (c *Core) Execute(dots int) {
	for i := 0; i < dots; i++ {
		c.step()
	}
}

// ExecuteScanline runs to the end of the current line.
func (c *Core) ExecuteScanline() {
	remaining := c.dotsPerLine - c.dot
	c.Execute(remaining)
}

// ExecuteFrame runs until the frame counter increments.
func (c *Core) ExecuteFrame() {
	start := c.frameCount
	for c.frameCount == start {
		c.step()
	}
}

// NES/SNES/Genesis/GameBoy return pointers to the variant substate
// selected at construction, for the renderer backend and save states
// to read and mutate directly.
func (c *Core) NES() *NESState             { return &c.nes }
func (c *Core) SNES() *SNESState           { return &c.snes }
func (c *Core) Genesis() *GenesisVDPState  { return &c.genesis }
func (c *Core) GameBoy() *GameBoyState     { return &c.gameboy }
func (c *Core) Family() Family             { return c.family }
