package room

import (
	"context"

	"github.com/wfunc/unoserver/uno"
)

// Broadcaster delivers room traffic. It is defined here to break the import
// cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	SendToPlayer(roomID, name string, msgID uint16, data []byte) error
}

// Recorder stores a game once it is finished.
type Recorder interface {
	RecordGame(ctx context.Context, roomID string, snap uno.Snapshot) error
}
