package service

import (
	"bytes"
	"slices"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/google/uuid"
)

// State is a point-in-time copy of the client cache. Callers may keep and
// read it freely; it is never mutated after Snapshot returns.
type State struct {
	User       *domain.User            `json:"user,omitempty"`
	Rooms      []domain.ChatRoom       `json:"rooms"`
	Messages   []domain.Message        `json:"messages"`
	Requests   []domain.MessageRequest `json:"requests"`
	ActiveRoom *domain.ChatRoom        `json:"active_room,omitempty"`
	Loading    bool                    `json:"loading"`
}

func (cs *ChatService) Snapshot() State {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	st := State{
		Rooms:    slices.Clone(cs.rooms),
		Messages: slices.Clone(cs.messages),
		Requests: slices.Clone(cs.requests),
		Loading:  cs.loading,
	}
	if cs.user != nil {
		user := *cs.user
		st.User = &user
	}
	if cs.activeRoom != nil {
		room := *cs.activeRoom
		st.ActiveRoom = &room
	}
	return st
}

// Changes signals after every state mutation. Signals coalesce: a reader that
// falls behind sees one pending signal, then reads the latest Snapshot.
func (cs *ChatService) Changes() <-chan struct{} {
	return cs.changes
}

func (cs *ChatService) emitChange() {
	select {
	case cs.changes <- struct{}{}:
	default:
	}
}

// Rooms: most recently updated first, id as tie-break.
func sortRooms(rooms []domain.ChatRoom) {
	slices.SortStableFunc(rooms, func(a, b domain.ChatRoom) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// Messages: oldest first, id as tie-break for equal created_at.
func sortMessages(messages []domain.Message) {
	slices.SortStableFunc(messages, func(a, b domain.Message) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

func findRoom(rooms []domain.ChatRoom, id uuid.UUID) *domain.ChatRoom {
	for i := range rooms {
		if rooms[i].ID == id {
			room := rooms[i]
			return &room
		}
	}
	return nil
}

func findMainRoom(rooms []domain.ChatRoom) *domain.ChatRoom {
	for i := range rooms {
		if rooms[i].Type == domain.MainRoom {
			room := rooms[i]
			return &room
		}
	}
	return nil
}
