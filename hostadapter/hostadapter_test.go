package hostadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMain struct{ data [1 << 20]byte }

func (m *fakeMain) ReadByte(addr uint32) byte     { return m.data[addr] }
func (m *fakeMain) WriteByte(addr uint32, v byte) { m.data[addr] = v }

type fakeAudio struct {
	fm  [4]byte
	psg byte
}

func (a *fakeAudio) WriteFM(sub int, v byte) { a.fm[sub] = v }
func (a *fakeAudio) WritePSG(v byte)         { a.psg = v }

func TestPowerOnLinesAsserted(t *testing.T) {
	a := New(&fakeMain{}, &fakeAudio{})
	assert.True(t, a.Halted())
}

func TestWorkRAMRoundTrip(t *testing.T) {
	a := New(&fakeMain{}, &fakeAudio{})
	a.Write(0x1234, 0x99)
	assert.Equal(t, byte(0x99), a.Read(0x1234))
}

func TestBankWindowAddressing(t *testing.T) {
	main := &fakeMain{}
	a := New(main, &fakeAudio{})
	a.Write(0x6000, 0x02) // bank low byte
	a.Write(0x6001, 0x00) // bank high bit
	main.data[(2<<15)+0x10] = 0xAB

	assert.Equal(t, byte(0xAB), a.Read(0x8000+0x10))
}

func TestAudioSideEffects(t *testing.T) {
	audio := &fakeAudio{}
	a := New(&fakeMain{}, audio)
	a.Write(0x4002, 0x7A)
	a.Write(0x7F11, 0x55)
	assert.Equal(t, byte(0x7A), audio.fm[2])
	assert.Equal(t, byte(0x55), audio.psg)
}

func TestResetClearsBankOnlyWhenBusreqReleased(t *testing.T) {
	a := New(&fakeMain{}, &fakeAudio{})
	a.SetBank(0x42)
	a.SetBUSREQ(true)
	a.SetReset(false) // BUSREQ still held: bank untouched
	assert.Equal(t, uint16(0x42), a.Bank())

	a.SetReset(true)
	a.SetBUSREQ(false)
	a.SetReset(false) // now releases cleanly
	assert.Equal(t, uint16(0), a.Bank())
}

func TestUnusedIOPorts(t *testing.T) {
	a := New(&fakeMain{}, &fakeAudio{})
	assert.Equal(t, byte(0xFF), a.In(0))
	a.Out(0, 0x11) // no-op, must not panic
}
