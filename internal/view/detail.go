package view

import (
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/dustin/go-humanize"
)

type Detail struct {
	Selected     bool          `json:"selected"`
	Name         string        `json:"name,omitempty"`
	Icon         string        `json:"icon,omitempty"`
	TypeLabel    string        `json:"type_label,omitempty"`
	Description  string        `json:"description,omitempty"`
	Created      string        `json:"created,omitempty"`
	AboutTitle   string        `json:"about_title,omitempty"`
	About        string        `json:"about,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	Empty        string        `json:"empty,omitempty"`
}

// Participant is a static entry for the current user; the participant list
// is not loaded.
type Participant struct {
	Name    string `json:"name"`
	Initial string `json:"initial"`
	Status  string `json:"status"`
}

var aboutByType = map[domain.RoomType][2]string{
	domain.MainRoom: {
		"About this channel",
		"This is the main channel where all registered users can participate. It's a great place to meet new people and engage in general discussions.",
	},
	domain.GroupRoom: {
		"Group Chat",
		"This is a custom group chat created by one of the members. Only invited participants can view and send messages here.",
	},
	domain.DirectRoom: {
		"Direct Message",
		"This is a private conversation between you and another user. Only participants can see the messages exchanged here.",
	},
}

func TypeLabel(t domain.RoomType) string {
	switch t {
	case domain.MainRoom:
		return "Main Channel"
	case domain.GroupRoom:
		return "Group Chat"
	case domain.DirectRoom:
		return "Direct Message"
	default:
		return "Unknown"
	}
}

type DetailView struct {
	now func() time.Time
}

func NewDetailView() *DetailView {
	return &DetailView{now: time.Now}
}

func (v *DetailView) Render(st service.State) Detail {
	room := st.ActiveRoom
	if room == nil {
		return Detail{Empty: "Select a chat to view details and participants"}
	}

	about := aboutByType[room.Type]
	return Detail{
		Selected:    true,
		Name:        room.Name,
		Icon:        roomIcon(room.Type),
		TypeLabel:   TypeLabel(room.Type),
		Description: deref(room.Description),
		Created:     humanize.RelTime(room.CreatedAt, v.now(), "ago", "from now"),
		AboutTitle:  about[0],
		About:       about[1],
		Participants: []Participant{
			{Name: "You", Initial: "U", Status: "Online"},
		},
	}
}
