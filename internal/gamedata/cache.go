package gamedata

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// EncodeDefinitions serializes a definition table for the on-disk cache.
func EncodeDefinitions(defs *Definitions) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(defs); err != nil {
		return nil, fmt.Errorf("encoding definitions: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDefinitions restores a cached definition table. A decode failure
// just means the cache is stale; callers re-extract from the game files.
func DecodeDefinitions(payload []byte) (*Definitions, error) {
	var defs Definitions
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&defs); err != nil {
		return nil, fmt.Errorf("decoding definitions: %w", err)
	}
	return &defs, nil
}
