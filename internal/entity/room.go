package entity

import (
	"slices"
	"time"
)

const (
	StatusWaiting = "waiting"
	StatusOngoing = "ongoing"
)

// Room is the relay's record of a group of connected players. Members are
// kept in join order; the first one is the host.
type Room struct {
	Code      string    `json:"code"`
	Members   []string  `json:"members"`
	Status    string    `json:"status"`
	MatchID   string    `json:"match_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRoom(code string) *Room {
	return &Room{
		Code:      code,
		Members:   []string{},
		Status:    StatusWaiting,
		CreatedAt: time.Now().UTC(),
	}
}

func (that *Room) Host() string {
	if len(that.Members) == 0 {
		return ""
	}
	return that.Members[0]
}

func (that *Room) IsFull(capacity int) bool {
	return len(that.Members) >= capacity
}

func (that *Room) IsEmpty() bool {
	return len(that.Members) == 0
}

func (that *Room) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// Join appends a member. Names need not be unique.
func (that *Room) Join(name string) int {
	that.Members = append(that.Members, name)
	return len(that.Members) - 1
}

// Leave removes the member at index. A match in progress is over once
// anyone leaves.
func (that *Room) Leave(index int) {
	if index < 0 || index >= len(that.Members) {
		return
	}

	that.Members = slices.Delete(that.Members, index, index+1)
	that.Status = StatusWaiting
	that.MatchID = ""
}

func (that *Room) StartMatch(matchID string) {
	that.Status = StatusOngoing
	that.MatchID = matchID
}
