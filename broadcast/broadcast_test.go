package broadcast

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/unoserver/network"
	"github.com/wfunc/unoserver/room"
	"github.com/wfunc/unoserver/session"
)

type MockConnection struct {
	mu   sync.Mutex
	sent []string
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, string(data))
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (m *MockConnection) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func setup() (*RoomBroadcaster, *room.Room, map[string]*MockConnection) {
	rooms := room.NewRoomManager(room.Options{}, nil, nil)
	sessions := session.NewManager()
	b := NewRoomBroadcaster(rooms, sessions)

	r := rooms.GetOrCreate("table", b)
	other := rooms.GetOrCreate("other", b)

	conns := map[string]*MockConnection{}
	for _, name := range []string{"ann", "bob"} {
		conn := &MockConnection{}
		conns[name] = conn
		s := session.NewSession(name+"-session", name, conn)
		_ = sessions.Add(s)
		r.AddPlayer(s)
	}
	outside := &MockConnection{}
	conns["cid"] = outside
	s := session.NewSession("cid-session", "cid", outside)
	_ = sessions.Add(s)
	other.AddPlayer(s)

	return b, r, conns
}

func TestBroadcastToRoom(t *testing.T) {
	b, r, conns := setup()

	if err := b.BroadcastToRoom(r.ID, network.MsgTypeBroadcast, []byte("Game started!")); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}
	for _, name := range []string{"ann", "bob"} {
		if got := conns[name].messages(); len(got) != 1 || got[0] != "Game started!" {
			t.Errorf("%s should receive the broadcast, got %v", name, got)
		}
	}
	if len(conns["cid"].messages()) != 0 {
		t.Error("Sessions in other rooms must not receive the broadcast")
	}

	if err := b.BroadcastToRoom("missing", network.MsgTypeBroadcast, nil); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestSendToPlayer(t *testing.T) {
	b, r, conns := setup()

	if err := b.SendToPlayer(r.ID, "ann", network.MsgTypePrivate, []byte("Your cards: Red 5")); err != nil {
		t.Fatalf("SendToPlayer failed: %v", err)
	}
	if got := conns["ann"].messages(); len(got) != 1 {
		t.Errorf("ann should receive the private message, got %v", got)
	}
	if len(conns["bob"].messages()) != 0 {
		t.Error("Private messages must reach only their recipient")
	}

	if err := b.SendToPlayer(r.ID, "cid", network.MsgTypePrivate, []byte("x")); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("cid is not in this room, expected ErrPlayerNotFound, got %v", err)
	}
}

func TestBroadcastToAll(t *testing.T) {
	b, _, conns := setup()

	_ = b.BroadcastToAll(network.MsgTypeBroadcast, []byte("Server is shutting down."))
	for name, conn := range conns {
		if len(conn.messages()) != 1 {
			t.Errorf("%s should receive the server-wide notice", name)
		}
	}
}
