package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
)

// LoadRooms replaces the room list with every active room. On failure the
// previous list is kept.
func (cs *ChatService) LoadRooms(ctx context.Context) {
	cs.mu.Lock()
	cs.roomsSeq++
	seq := cs.roomsSeq
	cs.mu.Unlock()

	reqCtx, cancel := cs.withTimeout(ctx)
	defer cancel()

	rooms, err := cs.chatRepo.GetActiveRooms(reqCtx)
	if err != nil {
		if isCanceled(ctx, err) {
			slog.Debug("Chat rooms load canceled")
			return
		}
		cs.notifyError("Error fetching chat rooms", err)
		return
	}
	sortRooms(rooms)

	cs.mu.Lock()
	if seq <= cs.roomsApplied {
		cs.mu.Unlock()
		slog.Debug("Discard stale chat rooms", "seq", seq)
		return
	}
	cs.roomsApplied = seq
	cs.rooms = rooms

	// Re-bind the active room to its fresh row, or drop it once deactivated.
	var droppedSub Subscription
	if cs.activeRoom != nil {
		if fresh := findRoom(rooms, cs.activeRoom.ID); fresh != nil {
			cs.activeRoom = fresh
		} else {
			slog.Info("Active chat room is no longer available", "room_id", cs.activeRoom.ID)
			droppedSub = cs.detachRoomLocked()
		}
	}
	cs.mu.Unlock()

	closeSubscription(droppedSub)
	cs.emitChange()

	cs.JoinMainRoom(ctx)
}

// JoinMainRoom adds the current user to the main room unless already a
// participant. It is best-effort: failures are logged, never notified.
func (cs *ChatService) JoinMainRoom(ctx context.Context) {
	cs.mu.Lock()
	mainRoom := findMainRoom(cs.rooms)
	done := mainRoom != nil && cs.joined[mainRoom.ID]
	cs.mu.Unlock()

	if mainRoom == nil || done {
		return
	}

	user, err := cs.session.CurrentUser(ctx)
	if err != nil {
		slog.Error("Failed to join main chat room", "room_id", mainRoom.ID, "error", err)
		return
	}

	reqCtx, cancel := cs.withTimeout(ctx)
	defer cancel()

	_, err = cs.chatRepo.GetParticipant(reqCtx, mainRoom.ID, user.ID)
	if err == nil {
		cs.markJoined(mainRoom)
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		slog.Error("Failed to check main chat room participant", "room_id", mainRoom.ID, "user_id", user.ID, "error", err)
		return
	}

	// Check-then-insert is not atomic; a concurrent join loses on the unique
	// (chat_room_id, user_id) constraint, which means the row exists.
	_, err = cs.chatRepo.NewParticipant(reqCtx, &domain.ChatParticipant{
		ChatRoomID: mainRoom.ID,
		UserID:     user.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			slog.Debug("Already a participant of main chat room", "room_id", mainRoom.ID, "user_id", user.ID)
			cs.markJoined(mainRoom)
			return
		}
		slog.Error("Failed to join main chat room", "room_id", mainRoom.ID, "user_id", user.ID, "error", err)
		return
	}

	cs.markJoined(mainRoom)
	slog.Info("Joined main chat room", "room_id", mainRoom.ID, "user_id", user.ID)
}

func (cs *ChatService) markJoined(room *domain.ChatRoom) {
	cs.mu.Lock()
	cs.joined[room.ID] = true
	cs.mu.Unlock()
}
