package scheduler

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	StateTag           = 0x5343484B // "SCHK"
	StateSchemaVersion = 1
)

func (s *Scheduler) Tag() uint32           { return StateTag }
func (s *Scheduler) SchemaVersion() uint32 { return StateSchemaVersion }

// SaveState serializes the scheduler's own counters: just the fractional Z80-cycle
// remainder carried between slices, since everything else the
// scheduler touches belongs to one of the other three components.
func (s *Scheduler) SaveState() ([]byte, error) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, int32(s.z80Remainder))
	return buf.Bytes(), nil
}

func (s *Scheduler) LoadState(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("scheduler: save-state body too short: got %d want 4", len(data))
	}
	var remainder int32
	_ = binary.Read(bytes.NewReader(data), binary.LittleEndian, &remainder)
	s.z80Remainder = int(remainder)
	return nil
}
