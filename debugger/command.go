package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a parsed monitor line: a name and its raw argument
// tokens. It is additive surface for an embedding REPL, not a CLI of
// its own — there is no I/O here, only parsing and dispatch onto
// Debugger's existing operations.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a command name and args.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}
	}
	parts := strings.Fields(input)
	return Command{Name: strings.ToLower(parts[0]), Args: parts[1:]}
}

// ParseAddress accepts $hex, 0xhex, bare hex, or #decimal, matching the
// teacher's monitor address syntax.
func ParseAddress(s string) (uint16, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		v, err := strconv.ParseUint(s[1:], 10, 16)
		return uint16(v), err == nil
	case strings.HasPrefix(s, "$"):
		v, err := strconv.ParseUint(s[1:], 16, 16)
		return uint16(v), err == nil
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 16)
		return uint16(v), err == nil
	default:
		v, err := strconv.ParseUint(s, 16, 16)
		return uint16(v), err == nil
	}
}

// Execute dispatches a parsed Command onto the debugger's own
// operations: "b <addr>" adds a temporary-free EXEC breakpoint, "s"
// steps into the next instruction, "c" continues free-running, and
// "x <addr> <len>" dumps memory as a hex string. Unrecognised commands
// return an error rather than doing nothing silently.
func (d *Debugger) Execute(cmd Command) (string, error) {
	switch cmd.Name {
	case "b":
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("usage: b <addr>")
		}
		addr, ok := ParseAddress(cmd.Args[0])
		if !ok {
			return "", fmt.Errorf("bad address %q", cmd.Args[0])
		}
		id := d.AddBreakpoint(KindExec, addr, addr, CondAlways, 0, 0, false, "")
		if id == -1 {
			return "", ErrBreakpointFull
		}
		return fmt.Sprintf("breakpoint %d set at $%04X", id, addr), nil
	case "s":
		d.StepInto()
		return "stepping", nil
	case "c":
		d.Continue()
		return "continuing", nil
	case "x":
		if len(cmd.Args) != 2 {
			return "", fmt.Errorf("usage: x <addr> <len>")
		}
		addr, ok := ParseAddress(cmd.Args[0])
		if !ok {
			return "", fmt.Errorf("bad address %q", cmd.Args[0])
		}
		length, err := strconv.Atoi(cmd.Args[1])
		if err != nil || length <= 0 {
			return "", fmt.Errorf("bad length %q", cmd.Args[1])
		}
		buf := make([]byte, length)
		n := d.DumpMemory(addr, length, buf)
		var sb strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&sb, "%02X ", buf[i])
		}
		return strings.TrimSpace(sb.String()), nil
	default:
		return "", fmt.Errorf("unknown command %q", cmd.Name)
	}
}
