package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd := ParseCommand("  B $1000 ")
	assert.Equal(t, "b", cmd.Name)
	assert.Equal(t, []string{"$1000"}, cmd.Args)

	assert.Equal(t, Command{}, ParseCommand("   "))
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		in   string
		want uint16
		ok   bool
	}{
		{"$1A2B", 0x1A2B, true},
		{"0x1a2b", 0x1A2B, true},
		{"#42", 42, true},
		{"1A2B", 0x1A2B, true},
		{"zzzz", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseAddress(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if ok {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestExecuteBreakpointAndDump(t *testing.T) {
	d, bus, _, _ := newTestDebugger(t)
	bus.mem[0x10] = 0xAB

	out, err := d.Execute(ParseCommand("b $1000"))
	require.NoError(t, err)
	assert.Contains(t, out, "$1000")

	out, err = d.Execute(ParseCommand("x $0010 1"))
	require.NoError(t, err)
	assert.Equal(t, "AB", out)

	_, err = d.Execute(ParseCommand("bogus"))
	assert.Error(t, err)
}

func TestBacktraceWalksStack(t *testing.T) {
	d, bus, core, _ := newTestDebugger(t)
	core.SP = 0x2000
	bus.mem[0x2000] = 0x34
	bus.mem[0x2001] = 0x12
	bus.mem[0x2002] = 0x78
	bus.mem[0x2003] = 0x56

	frames := d.Backtrace(2)
	require.Len(t, frames, 2)
	assert.Equal(t, uint16(0x1234), frames[0])
	assert.Equal(t, uint16(0x5678), frames[1])
}
