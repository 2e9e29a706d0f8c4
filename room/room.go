// room/room.go
package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/unoserver/command"
	"github.com/wfunc/unoserver/logger"
	"github.com/wfunc/unoserver/network"
	"github.com/wfunc/unoserver/session"
	"github.com/wfunc/unoserver/timer"
	"github.com/wfunc/unoserver/uno"
)

type Options struct {
	Game        uno.Options
	TurnTimeout time.Duration
	// NewSource overrides the card source of every new game, mainly for tests.
	NewSource func() uno.DrawSource
}

// Room is one chat session: the people connected to it and the game they
// are playing. Each room owns an independent game.
type Room struct {
	ID        string
	CreatedAt time.Time
	Players   map[string]*session.Session // sessionID -> session

	opts        Options
	broadcaster Broadcaster
	recorder    Recorder
	timers      *timer.TimerManager

	gameMutex  sync.RWMutex
	game       *uno.Game
	recordedID string
	timerID    int64
	timerSeq   uint64

	playerMutex sync.RWMutex
}

func NewRoom(id string, opts Options, broadcaster Broadcaster, recorder Recorder, timers *timer.TimerManager) *Room {
	r := &Room{
		ID:          id,
		CreatedAt:   time.Now(),
		Players:     make(map[string]*session.Session),
		opts:        opts,
		broadcaster: broadcaster,
		recorder:    recorder,
		timers:      timers,
	}
	r.game = r.newGame()
	return r
}

func (r *Room) newGame() *uno.Game {
	var source uno.DrawSource
	if r.opts.NewSource != nil {
		source = r.opts.NewSource()
	}
	return uno.NewGame(uuid.NewString(), r.opts.Game, source, r)
}

// Game returns the room's current game.
func (r *Room) Game() *uno.Game {
	r.gameMutex.RLock()
	defer r.gameMutex.RUnlock()
	return r.game
}

// --- uno.Notifier ---

func (r *Room) Broadcast(text string) error {
	return r.broadcaster.BroadcastToRoom(r.ID, network.MsgTypeBroadcast, []byte(text))
}

func (r *Room) SendTo(id uno.PlayerID, text string) error {
	return r.broadcaster.SendToPlayer(r.ID, string(id), network.MsgTypePrivate, []byte(text))
}

// --- members ---

func (r *Room) AddPlayer(s *session.Session) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	r.Players[s.ID] = s
	s.RoomID = r.ID
}

func (r *Room) RemovePlayer(sessionID string) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	if player, exists := r.Players[sessionID]; exists {
		player.RoomID = ""
		delete(r.Players, sessionID)
	}
}

// GetSessions returns a slice of all sessions in the room (thread-safe).
func (r *Room) GetSessions() []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.Players))
	for _, s := range r.Players {
		sessions = append(sessions, s)
	}
	return sessions
}

// SessionsNamed returns the sessions in this room that belong to one player.
func (r *Room) SessionsNamed(name string) []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	var sessions []*session.Session
	for _, s := range r.Players {
		if s.Name == name {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

func (r *Room) Empty() bool {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.Players) == 0
}

// --- commands ---

// Dispatch runs one command for a member. Failures are answered in the room
// and returned to the caller for logging.
func (r *Room) Dispatch(ctx context.Context, s *session.Session, cmd command.Command) error {
	who := s.Identity()
	g := r.Game()

	var err error
	switch c := cmd.(type) {
	case command.Join:
		err = g.Join(who)
	case command.Start:
		err = g.Start()
	case command.Play:
		err = g.Play(who, c.Card)
	case command.Draw:
		err = g.Draw(who)
	case command.Uno:
		err = g.DeclareUno(who)
	case command.Withdraw:
		err = g.Withdraw(who)
	case command.Color:
		err = g.ChooseColor(who, c.Color)
	case command.Help:
		r.reply(command.HelpText)
	case command.Status:
		r.reply(g.Snapshot().Summary())
	case command.Hand:
		var hand []uno.Card
		if hand, err = g.Hand(who); err == nil {
			r.whisper(who, "Your cards: "+uno.FormatCards(hand))
		}
	case command.NewGame:
		err = r.NewGame()
	default:
		err = command.ErrUnknownCommand
	}

	if err != nil {
		r.reply(command.Reply(err))
		return err
	}

	r.afterChange(ctx, g)
	return nil
}

func (r *Room) reply(text string) {
	if err := r.Broadcast(text); err != nil {
		logger.Log.Warnw("reply delivery failed", "room", r.ID, "error", err)
	}
}

func (r *Room) whisper(id uno.PlayerID, text string) {
	if err := r.SendTo(id, text); err != nil {
		logger.Log.Warnw("private reply delivery failed", "room", r.ID, "to", id, "error", err)
	}
}

// NewGame opens a fresh lobby once the current game has a winner, including
// a legacy last-player win that left the game in progress.
func (r *Room) NewGame() error {
	r.gameMutex.Lock()
	if !r.game.Snapshot().Over() {
		r.gameMutex.Unlock()
		return command.ErrGameNotFinished
	}
	r.game = r.newGame()
	r.gameMutex.Unlock()

	r.reply("A new game is open. Type !join to play.")
	return nil
}

// afterChange keeps the turn timer in step with g and records g once it ends.
func (r *Room) afterChange(ctx context.Context, g *uno.Game) {
	snap := g.Snapshot()
	r.scheduleTurnTimer(g, snap)

	if !snap.Over() || r.recorder == nil {
		return
	}
	r.gameMutex.Lock()
	if r.recordedID == snap.ID {
		r.gameMutex.Unlock()
		return
	}
	r.recordedID = snap.ID
	r.gameMutex.Unlock()

	if err := r.recorder.RecordGame(ctx, r.ID, snap); err != nil {
		logger.Log.Errorw("record game", "room", r.ID, "game", snap.ID, "error", err)
	}
}

func (r *Room) scheduleTurnTimer(g *uno.Game, snap uno.Snapshot) {
	if r.timers == nil || r.opts.TurnTimeout <= 0 {
		return
	}

	r.gameMutex.Lock()
	defer r.gameMutex.Unlock()

	if g != r.game {
		return
	}
	if snap.Running() && snap.TurnSeq == r.timerSeq && r.timerID != 0 {
		return
	}
	if r.timerID != 0 {
		r.timers.RemoveTimer(r.timerID)
		r.timerID = 0
	}
	if !snap.Running() {
		return
	}

	seq := snap.TurnSeq
	r.timerSeq = seq
	r.timerID = r.timers.AddTimer(r.opts.TurnTimeout, 0, func() {
		if g.ExpireTurn(seq) {
			logger.Log.Infow("turn expired", "room", r.ID, "game", g.ID, "turn", seq)
			r.afterChange(context.Background(), g)
		}
	})
}

// Close stops the room's pending turn timer.
func (r *Room) Close() {
	r.gameMutex.Lock()
	defer r.gameMutex.Unlock()

	if r.timers != nil && r.timerID != 0 {
		r.timers.RemoveTimer(r.timerID)
		r.timerID = 0
	}
}

// Manager maps room ids to independent rooms.
type Manager struct {
	rooms    map[string]*Room
	mutex    sync.RWMutex
	opts     Options
	recorder Recorder
	timers   *timer.TimerManager
}

func NewRoomManager(opts Options, recorder Recorder, timers *timer.TimerManager) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		opts:     opts,
		recorder: recorder,
		timers:   timers,
	}
}

// GetOrCreate returns the room with id, creating it on first use.
func (m *Manager) GetOrCreate(id string, broadcaster Broadcaster) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		return room
	}
	room := NewRoom(id, m.opts, broadcaster, m.recorder, m.timers)
	m.rooms[id] = room
	return room
}

// Join puts s in the room with id, creating the room on first use. Lookup and
// membership change under the manager lock so RemoveIfIdle cannot drop the
// room in between.
func (m *Manager) Join(id string, broadcaster Broadcaster, s *session.Session) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[id]
	if !exists {
		room = NewRoom(id, m.opts, broadcaster, m.recorder, m.timers)
		m.rooms[id] = room
	}
	room.AddPlayer(s)
	return room
}

func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		room.Close()
		delete(m.rooms, id)
	}
}

// RemoveIfIdle drops a room nobody is connected to, unless a game is running in it.
func (m *Manager) RemoveIfIdle(id string) bool {
	room, exists := m.GetRoom(id)
	if !exists || room.Game().Snapshot().Running() {
		return false
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.rooms[id] != room || !room.Empty() {
		return false
	}
	room.Close()
	delete(m.rooms, id)
	return true
}

func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
