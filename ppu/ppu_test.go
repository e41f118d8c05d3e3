package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore() *Core {
	return New(Config{
		Width: 256, Height: 240, Format: PixelRGBA8888,
		DotsPerLine: 10, ScanlinesPerFrame: 5, VisibleHeight: 3,
	})
}

func TestInvalidConfigReturnsNil(t *testing.T) {
	assert.Nil(t, New(Config{Width: 0, Height: 10}))
}

func TestScanlineAndFrameCallbacks(t *testing.T) {
	c := newTestCore()
	require.NotNil(t, c)

	var scanlines []int
	frames := 0
	c.OnScanline(func(n int) { scanlines = append(scanlines, n) })
	c.OnFrame(func(fb []byte, w, h, pitch int) { frames++ })

	c.ExecuteFrame()
	assert.Equal(t, 5, len(scanlines))
	assert.Equal(t, 1, frames)
	assert.Equal(t, uint64(1), c.FrameCount())
}

func TestVBlankFlagTimingAndFrameReady(t *testing.T) {
	c := newTestCore()
	require.NotNil(t, c)

	c.Execute(10 * 3) // three full lines = visibleHeight
	assert.True(t, c.InVBlank())
	assert.False(t, c.FrameReady())

	c.Execute(10 * 2) // two more lines wraps the frame
	assert.False(t, c.InVBlank())
	assert.True(t, c.FrameReady())
	c.ClearFrameReady()
	assert.False(t, c.FrameReady())
}

func TestRegisterPortRoundTrip(t *testing.T) {
	c := newTestCore()
	c.WriteRegister(10, 0x5A)
	assert.Equal(t, byte(0x5A), c.ReadRegister(10))
}

func TestExternalFramebufferIsBorrowed(t *testing.T) {
	buf := make([]byte, 256*240*4)
	c := New(Config{Width: 256, Height: 240, Format: PixelRGBA8888, Framebuffer: buf})
	require.NotNil(t, c)
	c.ExecuteFrame()
	// the borrowed slice header is the same backing array
	assert.Equal(t, byte(0xFF), buf[3])
	w, h, pitch := c.Dimensions()
	assert.Equal(t, 256, w)
	assert.Equal(t, 240, h)
	assert.Equal(t, 256*4, pitch)
}
