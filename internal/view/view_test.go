package view

import (
	"context"
	"testing"
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/google/uuid"
)

type recordedIntent struct {
	kind    string
	roomID  uuid.UUID
	content string
	email   string
	note    string
}

type recordingIntents struct {
	got []recordedIntent
}

func (r *recordingIntents) SelectRoom(ctx context.Context, roomID uuid.UUID) {
	r.got = append(r.got, recordedIntent{kind: "select", roomID: roomID})
}

func (r *recordingIntents) SendMessage(ctx context.Context, content string, roomID uuid.UUID) {
	r.got = append(r.got, recordedIntent{kind: "send", roomID: roomID, content: content})
}

func (r *recordingIntents) CreateMessageRequest(ctx context.Context, toEmail, message string) {
	r.got = append(r.got, recordedIntent{kind: "request", email: toEmail, note: message})
}

var now = time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC)

func testState() (service.State, domain.ChatRoom, domain.ChatRoom) {
	desc := "Everyone is here"
	main := domain.ChatRoom{ID: uuid.New(), Name: "General", Description: &desc, Type: domain.MainRoom, CreatedAt: now.Add(-48 * time.Hour)}
	direct := domain.ChatRoom{ID: uuid.New(), Name: "me & bob", Type: domain.DirectRoom, CreatedAt: now.Add(-3 * time.Hour)}
	user := &domain.User{ID: uuid.New(), Email: "me@example.com"}

	return service.State{
		User:       user,
		Rooms:      []domain.ChatRoom{main, direct},
		ActiveRoom: &direct,
	}, main, direct
}

func TestRoomListRender(t *testing.T) {
	st, main, direct := testState()
	sb := NewRoomListView(&recordingIntents{}).Render(st)

	if sb.UserEmail != "me@example.com" || sb.UserInitial != "M" || sb.Status != "Online" {
		t.Fatalf("unexpected user header %+v", sb)
	}
	if len(sb.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(sb.Rooms))
	}

	first, second := sb.Rooms[0], sb.Rooms[1]
	if first.ID != main.ID || first.Icon != IconHash || first.Badge != "Main" || first.Active || first.Description != "Everyone is here" {
		t.Fatalf("unexpected main room item %+v", first)
	}
	if second.ID != direct.ID || second.Icon != IconMessage || second.Badge != "" || !second.Active {
		t.Fatalf("unexpected direct room item %+v", second)
	}
}

func TestRoomListSelect(t *testing.T) {
	intents := &recordingIntents{}
	roomID := uuid.New()

	NewRoomListView(intents).Select(context.Background(), roomID)

	if len(intents.got) != 1 || intents.got[0].kind != "select" || intents.got[0].roomID != roomID {
		t.Fatalf("unexpected intents %+v", intents.got)
	}
}

func TestSubmitRequestEmitsExactDrafts(t *testing.T) {
	intents := &recordingIntents{}
	v := NewRoomListView(intents)

	v.OpenRequest()
	v.SetRequestEmail("  A@B.com ")
	v.SetRequestNote("hi there")

	if !v.SubmitRequest(context.Background()) {
		t.Fatal("expected submit to succeed")
	}
	if len(intents.got) != 1 {
		t.Fatalf("expected one intent, got %d", len(intents.got))
	}
	got := intents.got[0]
	if got.kind != "request" || got.email != "  A@B.com " || got.note != "hi there" {
		t.Fatalf("expected drafts as typed, got %+v", got)
	}

	req := v.Render(service.State{}).Request
	if req.Open || req.Email != "" || req.Note != "" {
		t.Fatalf("expected reset dialog, got %+v", req)
	}
}

func TestSubmitRequestBlockedOnBlankEmail(t *testing.T) {
	intents := &recordingIntents{}
	v := NewRoomListView(intents)

	v.OpenRequest()
	v.SetRequestEmail("   ")
	v.SetRequestNote("note")

	if v.SubmitRequest(context.Background()) {
		t.Fatal("expected submit to be blocked")
	}
	if len(intents.got) != 0 {
		t.Fatalf("expected no intent, got %+v", intents.got)
	}
	if req := v.Render(service.State{}).Request; !req.Open || req.Note != "note" {
		t.Fatalf("expected drafts to be kept, got %+v", req)
	}
}

func TestThreadRender(t *testing.T) {
	st, _, direct := testState()
	bobEmail := "bob@example.com"
	bob := uuid.New()
	st.Messages = []domain.Message{
		{ID: uuid.New(), SenderID: bob, Content: "hey", CreatedAt: now.Add(-10 * time.Minute), Sender: &domain.Sender{Email: &bobEmail}},
		{ID: uuid.New(), SenderID: bob, Content: "you there?", CreatedAt: now.Add(-9 * time.Minute), Sender: &domain.Sender{Email: &bobEmail}},
		{ID: uuid.New(), SenderID: st.User.ID, Content: "yes", CreatedAt: now.Add(-8 * time.Minute), IsEdited: true},
		{ID: uuid.New(), SenderID: uuid.New(), Content: "who am I", CreatedAt: now.Add(-7 * time.Minute)},
	}

	v := NewThreadView(&recordingIntents{})
	v.now = func() time.Time { return now }
	v.loc = time.UTC
	v.SetDraft("draft")

	th := v.Render(st)
	if !th.Selected || th.Header == nil || th.Header.Name != direct.Name || th.Header.Icon != IconMessage {
		t.Fatalf("unexpected header %+v", th.Header)
	}
	if th.Composer.Draft != "draft" || !th.Composer.CanSend || th.Composer.Placeholder != "Message me & bob..." {
		t.Fatalf("unexpected composer %+v", th.Composer)
	}
	if len(th.Messages) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(th.Messages))
	}

	rows := th.Messages
	if rows[0].Author != bobEmail || !rows[0].ShowAuthor || rows[0].Own || rows[0].Initial != "B" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[0].Time != "18:20" || rows[0].Ago != "10 minutes ago" {
		t.Fatalf("unexpected timestamps %q / %q", rows[0].Time, rows[0].Ago)
	}
	if rows[1].ShowAuthor {
		t.Fatal("expected author to be hidden for consecutive message")
	}
	if !rows[2].Own || !rows[2].Edited || rows[2].Author != "me@example.com" {
		t.Fatalf("unexpected own row %+v", rows[2])
	}
	if rows[3].Author != unknownAuthor {
		t.Fatalf("expected unknown author, got %q", rows[3].Author)
	}
}

func TestThreadRenderWithoutRoom(t *testing.T) {
	th := NewThreadView(&recordingIntents{}).Render(service.State{})
	if th.Selected || th.Header != nil || th.Empty == "" {
		t.Fatalf("expected placeholder thread, got %+v", th)
	}
}

func TestThreadSubmit(t *testing.T) {
	st, _, direct := testState()
	intents := &recordingIntents{}
	v := NewThreadView(intents)

	v.SetDraft("  hello  ")
	if !v.Submit(context.Background(), st) {
		t.Fatal("expected submit to succeed")
	}
	if len(intents.got) != 1 {
		t.Fatalf("expected one intent, got %d", len(intents.got))
	}
	if got := intents.got[0]; got.kind != "send" || got.content != "hello" || got.roomID != direct.ID {
		t.Fatalf("unexpected intent %+v", got)
	}
	if th := v.Render(st); th.Composer.Draft != "" || th.Composer.CanSend {
		t.Fatalf("expected cleared composer, got %+v", th.Composer)
	}
}

func TestThreadSubmitBlocked(t *testing.T) {
	st, _, _ := testState()
	intents := &recordingIntents{}
	v := NewThreadView(intents)

	v.SetDraft("   ")
	if v.Submit(context.Background(), st) {
		t.Fatal("expected blank draft to be blocked")
	}

	v.SetDraft("hi")
	noRoom := st
	noRoom.ActiveRoom = nil
	if v.Submit(context.Background(), noRoom) {
		t.Fatal("expected submit without room to be blocked")
	}

	if len(intents.got) != 0 {
		t.Fatalf("expected no intents, got %+v", intents.got)
	}
	if th := v.Render(st); th.Composer.Draft != "hi" {
		t.Fatalf("expected draft to be kept, got %q", th.Composer.Draft)
	}
}

func TestDetailRender(t *testing.T) {
	st, main, _ := testState()
	st.ActiveRoom = &main

	v := NewDetailView()
	v.now = func() time.Time { return now }

	d := v.Render(st)
	if d.Name != "General" || d.TypeLabel != "Main Channel" || d.Description != "Everyone is here" || d.Icon != IconHash {
		t.Fatalf("unexpected detail %+v", d)
	}
	if d.Created != "2 days ago" {
		t.Fatalf("expected relative creation time, got %q", d.Created)
	}
	if d.AboutTitle != "About this channel" || d.About == "" {
		t.Fatalf("unexpected about section %q / %q", d.AboutTitle, d.About)
	}
	if len(d.Participants) != 1 || d.Participants[0].Name != "You" || d.Participants[0].Status != "Online" {
		t.Fatalf("unexpected participants %+v", d.Participants)
	}
}

func TestTypeLabel(t *testing.T) {
	tests := map[domain.RoomType]string{
		domain.MainRoom:   "Main Channel",
		domain.GroupRoom:  "Group Chat",
		domain.DirectRoom: "Direct Message",
		"other":           "Unknown",
	}
	for roomType, want := range tests {
		if got := TypeLabel(roomType); got != want {
			t.Fatalf("TypeLabel(%q) = %q, want %q", roomType, got, want)
		}
	}
}

func TestDetailWithoutRoom(t *testing.T) {
	d := NewDetailView().Render(service.State{})
	if d.Selected || d.Empty == "" {
		t.Fatalf("expected placeholder detail, got %+v", d)
	}
}
