package hostadapter

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	StateTag           = 0x5A384841 // "Z8HA"
	StateSchemaVersion = 1
)

func (a *Adapter) Tag() uint32           { return StateTag }
func (a *Adapter) SchemaVersion() uint32 { return StateSchemaVersion }

// SaveState serializes the work RAM, bank register and wire signals
//.
func (a *Adapter) SaveState() ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var buf bytes.Buffer
	buf.Write(a.ram[:])
	_ = binary.Write(&buf, binary.LittleEndian, a.bank)
	flags := byte(0)
	if a.reset {
		flags |= 1 << 0
	}
	if a.busreq {
		flags |= 1 << 1
	}
	buf.WriteByte(flags)
	return buf.Bytes(), nil
}

const adapterStateBodyLen = workRAMSize + 2 + 1

func (a *Adapter) LoadState(data []byte) error {
	if len(data) < adapterStateBodyLen {
		return fmt.Errorf("hostadapter: save-state body too short: got %d want %d", len(data), adapterStateBodyLen)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	copy(a.ram[:], data[:workRAMSize])
	r := bytes.NewReader(data[workRAMSize:])
	_ = binary.Read(r, binary.LittleEndian, &a.bank)
	flags, _ := r.ReadByte()
	a.reset = flags&(1<<0) != 0
	a.busreq = flags&(1<<1) != 0
	return nil
}
