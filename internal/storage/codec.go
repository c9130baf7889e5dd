package storage

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// Snapshot payloads start with one header byte naming the encoding so that
// compressed and plain snapshots can be read by the same store.
const (
	encodingJSON       byte = 'j'
	encodingSnappyJSON byte = 's'
)

func encodeSnapshot(snap *ModelSnapshot, compress bool) ([]byte, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot %s: %w", snap.ID, err)
	}

	if !compress {
		return append([]byte{encodingJSON}, body...), nil
	}

	out := make([]byte, 1, 1+snappy.MaxEncodedLen(len(body)))
	out[0] = encodingSnappyJSON
	return append(out, snappy.Encode(nil, body)...), nil
}

func decodeSnapshot(data []byte) (*ModelSnapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}

	body := data[1:]
	switch data[0] {
	case encodingJSON:
	case encodingSnappyJSON:
		decoded, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, fmt.Errorf("snappy decompress failed: %w", err)
		}
		body = decoded
	default:
		return nil, fmt.Errorf("unknown snapshot encoding %q", data[0])
	}

	var snap ModelSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
