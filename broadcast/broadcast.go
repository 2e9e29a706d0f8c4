// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/unoserver/logger"
	"github.com/wfunc/unoserver/room"
	"github.com/wfunc/unoserver/session"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not connected")
)

// Broadcaster adds server-wide delivery to room delivery.
type Broadcaster interface {
	room.Broadcaster
	BroadcastToAll(msgID uint16, data []byte) error
}

// RoomBroadcaster delivers to sessions grouped by room.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	room, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	for _, s := range room.GetSessions() {
		if err := s.Send(msgID, data); err != nil {
			// The read loop notices a dead connection and removes the session.
			logger.Log.Debugw("broadcast send failed", "room", roomID, "session", s.ID, "error", err)
			continue
		}
	}
	return nil
}

// SendToPlayer reaches only the named player's sessions inside the room.
func (b *RoomBroadcaster) SendToPlayer(roomID, name string, msgID uint16, data []byte) error {
	room, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	sessions := room.SessionsNamed(name)
	if len(sessions) == 0 {
		return ErrPlayerNotFound
	}

	var errs []error
	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BroadcastToAll reaches every connected session, in any room.
func (b *RoomBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
