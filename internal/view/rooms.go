package view

import (
	"context"
	"strings"
	"sync"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/google/uuid"
)

type Sidebar struct {
	UserEmail   string        `json:"user_email"`
	UserInitial string        `json:"user_initial"`
	Status      string        `json:"status"`
	Rooms       []RoomItem    `json:"rooms"`
	Request     RequestDialog `json:"request"`
}

type RoomItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon"`
	Badge       string    `json:"badge,omitempty"`
	Active      bool      `json:"active"`
}

type RequestDialog struct {
	Open  bool   `json:"open"`
	Email string `json:"email"`
	Note  string `json:"note"`
}

// RoomListView is the sidebar: the room list plus the message request dialog.
type RoomListView struct {
	intents Intents

	mu      sync.Mutex
	request RequestDialog
}

func NewRoomListView(intents Intents) *RoomListView {
	return &RoomListView{intents: intents}
}

func (v *RoomListView) Render(st service.State) Sidebar {
	v.mu.Lock()
	request := v.request
	v.mu.Unlock()

	sb := Sidebar{
		UserEmail:   "Anonymous",
		UserInitial: "U",
		Status:      "Online",
		Rooms:       make([]RoomItem, 0, len(st.Rooms)),
		Request:     request,
	}
	if st.User != nil && st.User.Email != "" {
		sb.UserEmail = st.User.Email
		sb.UserInitial = initial(st.User.Email)
	}

	for _, room := range st.Rooms {
		item := RoomItem{
			ID:          room.ID,
			Name:        room.Name,
			Description: deref(room.Description),
			Icon:        roomIcon(room.Type),
			Active:      st.ActiveRoom != nil && st.ActiveRoom.ID == room.ID,
		}
		if room.Type == domain.MainRoom {
			item.Badge = "Main"
		}
		sb.Rooms = append(sb.Rooms, item)
	}
	return sb
}

func (v *RoomListView) Select(ctx context.Context, roomID uuid.UUID) {
	v.intents.SelectRoom(ctx, roomID)
}

func (v *RoomListView) OpenRequest() {
	v.mu.Lock()
	v.request.Open = true
	v.mu.Unlock()
}

// CloseRequest hides the dialog and keeps the drafts.
func (v *RoomListView) CloseRequest() {
	v.mu.Lock()
	v.request.Open = false
	v.mu.Unlock()
}

func (v *RoomListView) SetRequestEmail(email string) {
	v.mu.Lock()
	v.request.Email = email
	v.mu.Unlock()
}

func (v *RoomListView) SetRequestNote(note string) {
	v.mu.Lock()
	v.request.Note = note
	v.mu.Unlock()
}

// SubmitRequest emits the drafts exactly as typed and resets the dialog. It
// reports false, leaving the drafts untouched, when the email is blank.
func (v *RoomListView) SubmitRequest(ctx context.Context) bool {
	v.mu.Lock()
	email, note := v.request.Email, v.request.Note
	if strings.TrimSpace(email) == "" {
		v.mu.Unlock()
		return false
	}
	v.request = RequestDialog{}
	v.mu.Unlock()

	v.intents.CreateMessageRequest(ctx, email, note)
	return true
}
