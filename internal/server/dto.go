package server

import (
	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/view"
	"github.com/google/uuid"
)

type IntentType string

const (
	SelectRoomIntent      IntentType = "select_room"
	SetDraftIntent        IntentType = "set_draft"
	SendMessageIntent     IntentType = "send_message"
	OpenRequestIntent     IntentType = "open_request"
	CloseRequestIntent    IntentType = "close_request"
	SetRequestEmailIntent IntentType = "set_request_email"
	SetRequestNoteIntent  IntentType = "set_request_note"
	SubmitRequestIntent   IntentType = "submit_request"
)

// Request from the UI
type IntentRequest struct {
	Type   IntentType `json:"type"`
	RoomID uuid.UUID  `json:"room_id,omitempty"`
	Text   string     `json:"text,omitempty"`
}

type FrameType string

const (
	StateFrameType        FrameType = "state"
	NotificationFrameType FrameType = "notification"
	ErrorFrameType        FrameType = "error"
)

// Frames for the UI
type Frame struct {
	Type         FrameType            `json:"type"`
	State        *StateFrame          `json:"state,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
	Error        *ErrorInfo           `json:"error,omitempty"`
}

type StateFrame struct {
	Loading bool         `json:"loading"`
	Sidebar view.Sidebar `json:"sidebar"`
	Thread  view.Thread  `json:"thread"`
	Detail  view.Detail  `json:"detail"`
}
