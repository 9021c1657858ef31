package gsi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Parse decodes a raw GSI payload into a Snapshot.
//
// Decoding is best-effort: missing fields keep their defaults and a block
// whose contents cannot be decoded is dropped (treated as not reported).
// Only a body that is not a JSON object returns an error.
func Parse(body []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("invalid gsi payload: %w", err)
	}

	var s Snapshot
	s.Provider = decodeBlock(raw, "provider", &Provider{})
	s.Map = decodeBlock(raw, "map", &Map{})
	s.Player = decodeBlock(raw, "player", &Player{})
	// Percentages default to full when the client omits them.
	s.Hero = decodeBlock(raw, "hero", &Hero{HealthPercent: 100, ManaPercent: 100})
	s.Auth = decodeBlock(raw, "auth", &Auth{})

	return s, nil
}

// decodeBlock fills dst from raw[key]. It returns nil when the key is absent
// or does not hold a JSON object. Fields with unexpected types keep their
// defaults; the rest of the block is still used.
func decodeBlock[T any](raw map[string]json.RawMessage, key string, dst *T) *T {
	data := bytes.TrimSpace(raw[key])
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			log.Debug().Err(err).Str("block", key).Msg("Dropping undecodable GSI block")
			return nil
		}
		log.Debug().Err(err).Str("block", key).Msg("Ignoring mistyped GSI field")
	}
	return dst
}
