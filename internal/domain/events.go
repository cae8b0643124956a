package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type (
	Table string

	ChangeType string
)

const (
	ChatRoomsTable        Table = "chat_rooms"
	ChatParticipantsTable Table = "chat_participants"
	MessagesTable         Table = "messages"
	MessageRequestsTable  Table = "message_requests"
	ProfilesTable         Table = "profiles"

	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	ChangeAll    ChangeType = "*"
)

// ChangeEvent reports that a row of Table was inserted, updated or deleted.
type ChangeEvent struct {
	Table           Table           `json:"table"`
	Type            ChangeType      `json:"type"`
	Record          json.RawMessage `json:"record,omitempty"`
	OldRecord       json.RawMessage `json:"old_record,omitempty"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// RoomID returns the chat_room_id column of the new record, if it has one.
func (e *ChangeEvent) RoomID() (uuid.UUID, bool) {
	if len(e.Record) == 0 {
		return uuid.Nil, false
	}

	var row struct {
		ChatRoomID *uuid.UUID `json:"chat_room_id"`
	}
	if err := json.Unmarshal(e.Record, &row); err != nil || row.ChatRoomID == nil {
		return uuid.Nil, false
	}
	return *row.ChatRoomID, true
}

// ChangeFilter selects the events a subscription receives. A zero RoomID
// accepts events for every room.
type ChangeFilter struct {
	Table  Table
	Type   ChangeType
	RoomID uuid.UUID
}

func (f ChangeFilter) Match(e *ChangeEvent) bool {
	if e.Table != f.Table {
		return false
	}
	if f.Type != ChangeAll && f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.RoomID != uuid.Nil {
		roomID, ok := e.RoomID()
		if !ok || roomID != f.RoomID {
			return false
		}
	}
	return true
}
