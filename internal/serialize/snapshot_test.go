package serialize

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/hugr-lab/catalog-filter/internal/msgpack"
	"github.com/hugr-lab/catalog-filter/registry"
)

func TestSnapshotRoundTrip(t *testing.T) {
	reg := registry.Default()

	data, err := EncodeRegistry(reg)
	if err != nil {
		t.Fatalf("EncodeRegistry failed: %v", err)
	}

	got, err := DecodeRegistry(data)
	if err != nil {
		t.Fatalf("DecodeRegistry failed: %v", err)
	}

	if !reflect.DeepEqual(got.Names(), reg.Names()) {
		t.Errorf("expected names %v, got %v", reg.Names(), got.Names())
	}
	if !reflect.DeepEqual(got.Operators(), reg.Operators()) {
		t.Errorf("expected operators %v, got %v", reg.Operators(), got.Operators())
	}

	for _, name := range []string{"sensitivity", "containsPI", "encryptionStatus", "modifiedDate", "lastAccessedDate"} {
		want, _ := reg.Lookup(name)
		m, ok := got.Lookup(name)
		if !ok {
			t.Errorf("%s: missing after round trip", name)
			continue
		}
		if !reflect.DeepEqual(m, want) {
			t.Errorf("%s: expected %+v, got %+v", name, want, m)
		}
	}
}

func TestSnapshotFormat(t *testing.T) {
	data, err := EncodeRegistry(registry.Default())
	if err != nil {
		t.Fatalf("EncodeRegistry failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0x28, 0xb5, 0x2f, 0xfd}) {
		t.Errorf("expected zstd frame magic, got % x", data[:4])
	}

	if _, err := EncodeRegistry(nil); err == nil {
		t.Error("expected error for nil registry")
	}
}

func TestSnapshotCustomOperators(t *testing.T) {
	reg, err := registry.New([]registry.FieldMapping{
		{Name: "owner", BackendField: "owner_email", Conversion: registry.ConversionNone, Status: registry.StatusFunctioning},
	}, map[string]string{"equal": "=="})
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}

	data, err := EncodeRegistry(reg)
	if err != nil {
		t.Fatalf("EncodeRegistry failed: %v", err)
	}
	got, err := DecodeRegistry(data)
	if err != nil {
		t.Fatalf("DecodeRegistry failed: %v", err)
	}

	if got.Len() != 1 || got.Operators()["equal"] != "==" {
		t.Errorf("unexpected registry after round trip: %v %v", got.Names(), got.Operators())
	}
}

func TestDecodeRegistryErrors(t *testing.T) {
	if _, err := DecodeRegistry([]byte("not zstd")); err == nil {
		t.Error("expected error for corrupt data")
	}
	if _, err := DecodeRegistry(nil); err == nil {
		t.Error("expected error for empty data")
	}

	body, err := msgpack.Encode(snapshot{Version: 99})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	_, err = DecodeRegistry(mustCompress(t, body))
	if !errors.Is(err, ErrSnapshotVersion) {
		t.Errorf("expected ErrSnapshotVersion, got %v", err)
	}

	body, err = msgpack.Encode(snapshot{
		Version: SnapshotVersion,
		Fields:  []registry.FieldMapping{{Name: "x"}},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	_, err = DecodeRegistry(mustCompress(t, body))
	if !errors.Is(err, registry.ErrInvalidMapping) {
		t.Errorf("expected ErrInvalidMapping, got %v", err)
	}
}

func mustCompress(t *testing.T, body []byte) []byte {
	t.Helper()
	data, err := compressSnapshot(body)
	if err != nil {
		t.Fatalf("compressSnapshot failed: %v", err)
	}
	return data
}
