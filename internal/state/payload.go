package state

import "encoding/json"

// CreateCharPayload is the data payload for create_char events.
type CreateCharPayload struct {
	Character Character `json:"character"`
}

// UpdateCharPayload is the data payload for update_char events. Patch
// keys outside the allow-list are silently dropped.
type UpdateCharPayload struct {
	ID    string                     `json:"id"`
	Patch map[string]json.RawMessage `json:"patch"`
}

// ItemPayload is the data payload for gain_item and lose_item events.
type ItemPayload struct {
	ID   string `json:"id"`
	Item string `json:"item"`
}

// AmountPayload carries the hit-point delta for damage and heal events.
// The reducer reads result.amount when present, falling back to
// data.amount, then to zero.
type AmountPayload struct {
	ID     string `json:"id"`
	Amount *int   `json:"amount"`
}
