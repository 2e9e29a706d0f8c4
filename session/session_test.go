package session

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/wfunc/unoserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent []string
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.sent = append(m.sent, string(data))
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, "ann", &MockConnection{})

	if err := manager.Add(sess); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_NameTaken(t *testing.T) {
	manager := NewManager()
	_ = manager.Add(NewSession("s1", "ann", &MockConnection{}))

	if err := manager.Add(NewSession("s2", "ann", &MockConnection{})); !errors.Is(err, ErrNameTaken) {
		t.Errorf("Expected ErrNameTaken, got %v", err)
	}

	manager.Remove("s1")
	if err := manager.Add(NewSession("s2", "ann", &MockConnection{})); err != nil {
		t.Errorf("The name should be free after the first session leaves, got %v", err)
	}
}

func TestManager_GetByName(t *testing.T) {
	manager := NewManager()
	_ = manager.Add(NewSession("session1", "ann", &MockConnection{}))
	_ = manager.Add(NewSession("session2", "bob", &MockConnection{}))

	if got := manager.GetByName("ann"); len(got) != 1 || got[0].ID != "session1" {
		t.Errorf("Expected ann's session, got %v", got)
	}
	if got := manager.GetByName("cid"); len(got) != 0 {
		t.Errorf("Expected no sessions for cid, got %d", len(got))
	}
}

func TestSession_SendText(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s", "ann", conn)
	before := sess.LastActive()

	time.Sleep(time.Millisecond)
	if err := sess.SendText(network.MsgTypePrivate, "hello"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if len(conn.sent) != 1 || conn.sent[0] != "hello" {
		t.Errorf("Unexpected sent messages %v", conn.sent)
	}
	if !sess.LastActive().After(before) {
		t.Error("Sending should refresh LastActive")
	}
	if sess.Identity() != "ann" {
		t.Errorf("Identity should be the session name, got %s", sess.Identity())
	}
}
