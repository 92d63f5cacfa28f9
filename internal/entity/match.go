package entity

import (
	"encoding/json"
	"time"
)

// Match records how a match was started so it can be replayed from its
// journal. Rules are stored exactly as the host sent them.
type Match struct {
	ID        string          `json:"id"`
	RoomCode  string          `json:"room_code"`
	Seed      uint32          `json:"seed"`
	Rules     json.RawMessage `json:"rules"`
	Players   []string        `json:"players"`
	StartedAt time.Time       `json:"started_at"`
}

// JournalEntry is one forwarded update: the sender's index and the raw
// tagged update as it was received.
type JournalEntry struct {
	Index  int             `json:"index"`
	Update json.RawMessage `json:"update"`
}
