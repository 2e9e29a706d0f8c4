package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/unoserver/broadcast"
	"github.com/wfunc/unoserver/command"
	"github.com/wfunc/unoserver/config"
	"github.com/wfunc/unoserver/logger"
	"github.com/wfunc/unoserver/monitor"
	"github.com/wfunc/unoserver/network"
	"github.com/wfunc/unoserver/persistence"
	"github.com/wfunc/unoserver/room"
	unorpc "github.com/wfunc/unoserver/rpc"
	"github.com/wfunc/unoserver/services"
	"github.com/wfunc/unoserver/session"
	"github.com/wfunc/unoserver/timer"
	"github.com/wfunc/unoserver/uno"
)

const (
	DefaultRoom       = "lobby"
	heartbeatInterval = 30 * time.Second
	maxNameLength     = 32
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	records        *services.RecordService
	broadcaster    broadcast.Broadcaster
	monitor        *monitor.Monitor
	rpcServer      *unorpc.Server
	httpServer     *http.Server
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

func NewGameServer(cfg *config.Config, db persistence.Database, timers *timer.TimerManager, mon *monitor.Monitor) (*GameServer, error) {
	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		records:        services.NewRecordService(db),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // any origin
			},
		},
	}

	opts := room.Options{
		Game: uno.Options{
			HandSize:     cfg.Game.HandSize,
			MinPlayers:   cfg.Game.MinPlayers,
			StrictLegacy: cfg.Game.StrictLegacy,
		},
		TurnTimeout: cfg.Game.TurnTimeout,
	}
	s.roomManager = room.NewRoomManager(opts, meteredRecorder{records: s.records, monitor: mon}, timers)

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	if cfg.Server.RPCAddress != "" {
		rpcServer, err := unorpc.NewServer(cfg.Server.RPCAddress, unorpc.NewGameService(s.roomManager, s.records))
		if err != nil {
			return nil, err
		}
		s.rpcServer = rpcServer
	}

	return s, nil
}

// Handler serves the websocket endpoint.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *GameServer) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}
	if s.cfg.Server.MetricsAddress != "" {
		s.monitor.StartServer(s.cfg.Server.MetricsAddress)
	}

	s.httpServer = &http.Server{Addr: s.cfg.Server.HTTPAddress, Handler: s.Handler()}
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown tells every connected player, then stops accepting traffic.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if sendErr := s.broadcaster.BroadcastToAll(network.MsgTypeBroadcast, []byte("Server is shutting down.")); sendErr != nil {
			logger.Log.Warnf("Shutdown notice failed: %v", sendErr)
		}
		close(s.shutdownChan)
		if s.rpcServer != nil {
			s.rpcServer.Stop()
		}
		for _, r := range s.roomManager.Rooms() {
			s.roomManager.RemoveRoom(r.ID)
		}
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}
		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}
	})
	return err
}

// handleWebSocket expects /ws?name=<handle>&room=<room id>.
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" || len(name) > maxNameLength || strings.ContainsAny(name, " \t\r\n") {
		http.Error(w, "a single-word name is required", http.StatusBadRequest)
		return
	}
	if len(s.sessionManager.GetByName(name)) > 0 {
		http.Error(w, session.ErrNameTaken.Error(), http.StatusConflict)
		return
	}
	roomID := strings.TrimSpace(r.URL.Query().Get("room"))
	if roomID == "" {
		roomID = DefaultRoom
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn), name, roomID)
}

func (s *GameServer) handleConnection(wsConn network.Connection, name, roomID string) {
	sess := session.NewSession(uuid.New().String(), name, wsConn)
	if err := s.sessionManager.Add(sess); err != nil {
		// Lost a race with another connection using the same name.
		_ = sess.SendText(network.MsgTypePrivate, "That name is already in use.")
		wsConn.Close()
		return
	}
	wsConn.SetHeartbeat(heartbeatInterval)

	rm := s.roomManager.Join(roomID, s.broadcaster, sess)
	s.monitor.IncOnlinePlayers()
	s.monitor.SetActiveRooms(s.roomManager.Count())

	logger.Log.Infow("player connected", "session", sess.GetID(), "name", name, "room", roomID, "remote", wsConn.RemoteAddr())

	defer func() {
		logger.Log.Infow("player disconnected", "session", sess.GetID(), "name", name, "room", roomID)
		s.sessionManager.Remove(sess.GetID())
		rm.RemovePlayer(sess.GetID())
		s.roomManager.RemoveIfIdle(roomID)
		s.monitor.DecOnlinePlayers()
		s.monitor.SetActiveRooms(s.roomManager.Count())
		wsConn.Close()
	}()

	welcome := "Welcome to room " + roomID + ", " + name + "! Type !help for the list of commands."
	if err := sess.SendText(network.MsgTypeWelcome, welcome); err != nil {
		return
	}

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(rm, sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(rm *room.Room, sess *session.Session, packet *network.Packet) {
	sess.Touch()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		_ = sess.Send(network.MsgTypeHeartbeat, nil)
	case network.MsgTypeCommand:
		s.handleText(rm, sess, string(packet.Data))
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// handleText runs "!"-prefixed lines as commands and relays anything else
// to the room as chat.
func (s *GameServer) handleText(rm *room.Room, sess *session.Session, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !strings.HasPrefix(text, "!") {
		if err := rm.Broadcast(sess.Name + ": " + text); err != nil {
			logger.Log.Warnw("chat relay failed", "room", rm.ID, "error", err)
		}
		return
	}

	start := time.Now()
	cmd, err := command.Parse(text)
	if err != nil {
		s.monitor.ObserveCommand("", err, time.Since(start))
		if sendErr := rm.Broadcast(command.Reply(err)); sendErr != nil {
			logger.Log.Warnw("reply delivery failed", "room", rm.ID, "error", sendErr)
		}
		return
	}

	err = rm.Dispatch(context.Background(), sess, cmd)
	s.monitor.ObserveCommand(cmd.Verb(), err, time.Since(start))
	if err != nil {
		logger.Log.Debugw("command rejected", "room", rm.ID, "name", sess.Name, "command", cmd.Verb(), "error", err)
	}
}

// meteredRecorder counts finished games before storing them.
type meteredRecorder struct {
	records *services.RecordService
	monitor *monitor.Monitor
}

func (m meteredRecorder) RecordGame(ctx context.Context, roomID string, snap uno.Snapshot) error {
	m.monitor.IncGamesFinished()
	return m.records.RecordGame(ctx, roomID, snap)
}
