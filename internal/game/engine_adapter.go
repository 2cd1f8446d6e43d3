// internal/game/engine_adapter.go
package game

import (
	"fmt"

	"github.com/kburley7/cribbage/engine"
)

// Helpers bridging the wire representation (JSON payloads, card name
// strings, float64 numbers) and the engine's packed types.

// cardStrings renders cards for wire payloads ("5H", "10S", ...).
func cardStrings(cards []engine.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// payloadIndex extracts a hand index from a JSON payload value.
// JSON numbers decode as float64.
func payloadIndex(v interface{}) (uint8, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: index must be a number", engine.ErrInvalidCardIndex)
	}
	if f < 0 || f != float64(int(f)) || int(f) >= engine.MaxHandSize {
		return 0, fmt.Errorf("%w: %v", engine.ErrInvalidCardIndex, v)
	}
	return uint8(f), nil
}

// parseCardIndex reads the "card_index" field of a play command.
func parseCardIndex(payload map[string]interface{}) (uint8, error) {
	v, ok := payload["card_index"]
	if !ok {
		return 0, fmt.Errorf("%w: missing card_index", engine.ErrInvalidCardIndex)
	}
	return payloadIndex(v)
}

// parseDiscardIndices reads the two-element "indices" field of a
// discard command.
func parseDiscardIndices(payload map[string]interface{}) (uint8, uint8, error) {
	raw, ok := payload["indices"].([]interface{})
	if !ok || len(raw) != 2 {
		return 0, 0, fmt.Errorf("%w: discard requires exactly two indices", engine.ErrInvalidCardIndex)
	}
	a, err := payloadIndex(raw[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := payloadIndex(raw[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
