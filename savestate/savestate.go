// Package savestate implements the save-state protocol: a
// byte-packed little-endian blob of magic-tagged, schema-versioned
// regions in a fixed order (Z80Core, Z80HostAdapter, PpuCore,
// Scheduler counters). Component bodies are built, and after
// validation restored, across goroutines with golang.org/x/sync/errgroup;
// the blob itself is parsed and validated sequentially, and the
// on-disk ordering stays exactly what the caller specified.
package savestate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// magic identifies a retrocore save blob; version is the blob-level
// format version, distinct from each region's own schema version.
const (
	magic        = "MEMU"
	blobVersion  = 1
	headerLen    = 4 + 4 + 4 // magic + version + region count
	regionHeader = 4 + 4 + 4 // tag + schema version + body length
)

// Sentinel errors for LoadAll's refusal cases. Wrapped with more
// specific context via %w, so callers can still errors.Is against
// these across that context.
var (
	ErrBadMagic       = errors.New("savestate: bad magic")
	ErrBlobVersion    = errors.New("savestate: unsupported blob version")
	ErrTruncated      = errors.New("savestate: truncated data")
	ErrMissingRegion  = errors.New("savestate: missing region for component")
	ErrSchemaMismatch = errors.New("savestate: schema mismatch")
)

// StateComponent is satisfied by every serializable component
// (z80.Core, hostadapter.Adapter, ppu.Core, scheduler.Scheduler).
type StateComponent interface {
	Tag() uint32
	SchemaVersion() uint32
	SaveState() ([]byte, error)
	LoadState([]byte) error
}

type region struct {
	tag     uint32
	version uint32
	body    []byte
}

// SaveAll serializes components, in the order given, into one blob.
// Each component's SaveState body is built concurrently; the regions
// are still written out in the caller's order regardless of which
// goroutine finishes first.
func SaveAll(components ...StateComponent) ([]byte, error) {
	regions := make([]region, len(components))

	var g errgroup.Group
	for i, comp := range components {
		i, comp := i, comp
		g.Go(func() error {
			body, err := comp.SaveState()
			if err != nil {
				return fmt.Errorf("savestate: component %d (tag %08X): %w", i, comp.Tag(), err)
			}
			regions[i] = region{tag: comp.Tag(), version: comp.SchemaVersion(), body: body}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(blobVersion))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(regions)))
	for _, r := range regions {
		_ = binary.Write(&buf, binary.LittleEndian, r.tag)
		_ = binary.Write(&buf, binary.LittleEndian, r.version)
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(r.body)))
		buf.Write(r.body)
	}
	return buf.Bytes(), nil
}

// LoadAll parses data and restores each of components from the region
// whose tag matches, in the order components are given. A magic or
// schema-version mismatch refuses the whole load and leaves every
// target component unchanged: every region header and schema version
// is validated before any LoadState call runs, so restoring can still
// happen concurrently once that validation has passed.
func LoadAll(data []byte, components ...StateComponent) error {
	if len(data) < headerLen || string(data[:4]) != magic {
		return fmt.Errorf("%w, refusing load", ErrBadMagic)
	}
	r := bytes.NewReader(data[4:])

	var version, count uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if version != blobVersion {
		return fmt.Errorf("%w: blob version %d (want %d), refusing load", ErrBlobVersion, version, blobVersion)
	}

	regions := make(map[uint32]region, count)
	for i := uint32(0); i < count; i++ {
		var tag, schemaVersion, bodyLen uint32
		if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
			return fmt.Errorf("%w: region header: %v", ErrTruncated, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &schemaVersion); err != nil {
			return fmt.Errorf("%w: region header: %v", ErrTruncated, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &bodyLen); err != nil {
			return fmt.Errorf("%w: region header: %v", ErrTruncated, err)
		}
		if bodyLen > uint32(r.Len()) {
			return fmt.Errorf("%w: region body for tag %08X: declared length %d exceeds remaining data",
				ErrTruncated, tag, bodyLen)
		}
		body := make([]byte, bodyLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("%w: region body for tag %08X: %v", ErrTruncated, tag, err)
		}
		regions[tag] = region{tag: tag, version: schemaVersion, body: body}
	}

	for _, comp := range components {
		reg, ok := regions[comp.Tag()]
		if !ok {
			return fmt.Errorf("%w: tag %08X, refusing load", ErrMissingRegion, comp.Tag())
		}
		if reg.version != comp.SchemaVersion() {
			return fmt.Errorf("%w: tag %08X: blob has %d, component wants %d, refusing load",
				ErrSchemaMismatch, comp.Tag(), reg.version, comp.SchemaVersion())
		}
	}

	var g errgroup.Group
	for _, comp := range components {
		comp := comp
		reg := regions[comp.Tag()]
		g.Go(func() error {
			if err := comp.LoadState(reg.body); err != nil {
				return fmt.Errorf("savestate: loading tag %08X: %w", comp.Tag(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
