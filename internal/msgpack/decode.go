// Package msgpack provides MessagePack encoding/decoding for structured
// filters and registry snapshots.
package msgpack

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Decode deserializes MessagePack data into a Go value.
// The v parameter should be a pointer to the target structure.
func Decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("empty MessagePack data")
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	return nil
}

// Encode serializes a Go value into MessagePack format.
func Encode(v interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	return data, nil
}

// Pair is one key/value entry of a MessagePack map.
type Pair struct {
	Key   string
	Value interface{}
}

// DecodeOrderedMap deserializes a top-level MessagePack map, keeping entries
// in wire order. Nested maps decode to map[string]interface{}.
func DecodeOrderedMap(data []byte) ([]Pair, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty MessagePack data")
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack map: %w", err)
	}
	if n < 0 {
		return nil, nil
	}

	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("failed to decode MessagePack key %d: %w", i, err)
		}
		val, err := dec.DecodeInterface()
		if err != nil {
			return nil, fmt.Errorf("failed to decode MessagePack value for %q: %w", key, err)
		}
		pairs = append(pairs, Pair{Key: key, Value: val})
	}

	return pairs, nil
}
