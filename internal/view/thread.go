package view

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const unknownAuthor = "Unknown user"

type Thread struct {
	Selected bool         `json:"selected"`
	Header   *RoomHeader  `json:"header,omitempty"`
	Messages []MessageRow `json:"messages"`
	Empty    string       `json:"empty,omitempty"`
	Composer Composer     `json:"composer"`
}

type RoomHeader struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon"`
}

// MessageRow is one rendered message. ShowAuthor is false for consecutive
// messages by the same sender.
type MessageRow struct {
	ID         uuid.UUID `json:"id"`
	Author     string    `json:"author"`
	Initial    string    `json:"initial"`
	Own        bool      `json:"own"`
	ShowAuthor bool      `json:"show_author"`
	Content    string    `json:"content"`
	Time       string    `json:"time"`
	Ago        string    `json:"ago"`
	Edited     bool      `json:"edited"`
}

type Composer struct {
	Draft       string `json:"draft"`
	Placeholder string `json:"placeholder"`
	CanSend     bool   `json:"can_send"`
}

// ThreadView renders the active room's messages and owns the composer draft.
type ThreadView struct {
	intents Intents
	now     func() time.Time
	loc     *time.Location

	mu    sync.Mutex
	draft string
}

func NewThreadView(intents Intents) *ThreadView {
	return &ThreadView{
		intents: intents,
		now:     time.Now,
		loc:     time.Local,
	}
}

func (v *ThreadView) Render(st service.State) Thread {
	v.mu.Lock()
	draft := v.draft
	v.mu.Unlock()

	room := st.ActiveRoom
	if room == nil {
		return Thread{
			Messages: []MessageRow{},
			Empty:    "Choose a channel from the sidebar to start chatting",
		}
	}

	th := Thread{
		Selected: true,
		Header: &RoomHeader{
			Name:        room.Name,
			Description: deref(room.Description),
			Icon:        roomIcon(room.Type),
		},
		Messages: make([]MessageRow, 0, len(st.Messages)),
		Composer: Composer{
			Draft:       draft,
			Placeholder: fmt.Sprintf("Message %s...", room.Name),
			CanSend:     strings.TrimSpace(draft) != "",
		},
	}

	now := v.now()
	for i, msg := range st.Messages {
		author := unknownAuthor
		if msg.Sender != nil && msg.Sender.Email != nil && *msg.Sender.Email != "" {
			author = *msg.Sender.Email
		}
		own := st.User != nil && msg.SenderID == st.User.ID
		if own && st.User.Email != "" {
			author = st.User.Email
		}

		th.Messages = append(th.Messages, MessageRow{
			ID:         msg.ID,
			Author:     author,
			Initial:    initial(author),
			Own:        own,
			ShowAuthor: i == 0 || st.Messages[i-1].SenderID != msg.SenderID,
			Content:    msg.Content,
			Time:       msg.CreatedAt.In(v.loc).Format("15:04"),
			Ago:        humanize.RelTime(msg.CreatedAt, now, "ago", "from now"),
			Edited:     msg.IsEdited,
		})
	}
	if len(th.Messages) == 0 {
		th.Empty = "No messages yet. Start the conversation!"
	}
	return th
}

func (v *ThreadView) SetDraft(draft string) {
	v.mu.Lock()
	v.draft = draft
	v.mu.Unlock()
}

// Submit sends the trimmed draft to the active room and clears it. Blank
// drafts, a missing room or a missing user leave the draft as is.
func (v *ThreadView) Submit(ctx context.Context, st service.State) bool {
	v.mu.Lock()
	content := strings.TrimSpace(v.draft)
	if content == "" || st.ActiveRoom == nil || st.User == nil {
		v.mu.Unlock()
		return false
	}
	v.draft = ""
	v.mu.Unlock()

	v.intents.SendMessage(ctx, content, st.ActiveRoom.ID)
	return true
}
