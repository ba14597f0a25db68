package serialize

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/hugr-lab/catalog-filter/internal/msgpack"
	"github.com/hugr-lab/catalog-filter/registry"
)

// SnapshotVersion is the current registry snapshot format version.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned for snapshots written by an unknown format version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// snapshot is the MessagePack body of a registry snapshot.
type snapshot struct {
	Version   int                     `msgpack:"version"`
	Operators map[string]string       `msgpack:"operators"`
	Fields    []registry.FieldMapping `msgpack:"fields"`
}

// EncodeRegistry writes reg as a zstd-compressed MessagePack snapshot.
func EncodeRegistry(reg *registry.Registry) ([]byte, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}

	data, err := msgpack.Encode(snapshot{
		Version:   SnapshotVersion,
		Operators: reg.Operators(),
		Fields:    reg.Mappings(),
	})
	if err != nil {
		return nil, err
	}

	return compressSnapshot(data)
}

// DecodeRegistry reads a snapshot written by EncodeRegistry and validates
// it into a new registry.
func DecodeRegistry(data []byte) (*registry.Registry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var snap snapshot
	if err := msgpack.Decode(raw, &snap); err != nil {
		return nil, err
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}

	return registry.New(snap.Fields, snap.Operators)
}

func compressSnapshot(body []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(body, make([]byte, 0, len(body)/2)), nil
}
