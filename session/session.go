// session/session.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/unoserver/network"
	"github.com/wfunc/unoserver/uno"
)

// ErrNameTaken is returned when a handle is already used by a connected session.
var ErrNameTaken = errors.New("name already in use")

// Session is one connected participant. Name is the handle the rest of the
// server uses as the player's identity.
type Session struct {
	ID         string
	Name       string
	RoomID     string
	Conn       network.Connection
	CreatedAt  time.Time
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id, name string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Name:       name,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

func (s *Session) SendText(msgID uint16, text string) error {
	return s.Send(msgID, []byte(text))
}

func (s *Session) Touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) GetID() string {
	return s.ID
}

// Identity is the player handle the game engine sees.
func (s *Session) Identity() uno.PlayerID {
	return uno.PlayerID(s.Name)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager indexes connected sessions by id.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Add registers a session, refusing a name another session already holds.
func (m *Manager) Add(session *Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, other := range m.sessions {
		if other.Name == session.Name {
			return ErrNameTaken
		}
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) GetByName(name string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.Name == name {
			result = append(result, session)
		}
	}
	return result
}

func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
