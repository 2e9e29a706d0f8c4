package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/unoserver/logger"
	"github.com/wfunc/unoserver/models"
	"github.com/wfunc/unoserver/room"
	"github.com/wfunc/unoserver/services"
)

// ErrRoomNotFound is returned for status queries about unknown rooms.
var ErrRoomNotFound = errors.New("room not found")

const queryTimeout = 5 * time.Second

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers service under the name "GameService".
func NewServer(addr string, service *GameService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("GameService", service); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      srv,
	}, nil
}

// Addr is the address actually bound, useful when addr had port 0.
func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService exposes read-only game queries to operators.
// Methods follow the net/rpc signature: exported args, pointer reply, error.
type GameService struct {
	rooms   *room.Manager
	records *services.RecordService
}

func NewGameService(rooms *room.Manager, records *services.RecordService) *GameService {
	return &GameService{rooms: rooms, records: records}
}

type GameStatusArgs struct {
	RoomID string
}

type GameStatusReply struct {
	GameID      string
	Phase       string
	Players     []string
	Current     string
	CurrentCard string
	Winner      string
	Summary     string
}

func (gs *GameService) GetGameStatus(args *GameStatusArgs, reply *GameStatusReply) error {
	r, ok := gs.rooms.GetRoom(args.RoomID)
	if !ok {
		return ErrRoomNotFound
	}

	snap := r.Game().Snapshot()
	reply.GameID = snap.ID
	reply.Phase = snap.Phase.String()
	reply.Current = string(snap.Current)
	reply.Winner = string(snap.Winner)
	reply.Summary = snap.Summary()
	if snap.Current != "" {
		reply.CurrentCard = snap.CurrentCard.String()
	}
	for _, p := range snap.Players {
		reply.Players = append(reply.Players, string(p.ID))
	}
	return nil
}

type PlayerStatsArgs struct {
	Name string
}

type PlayerStatsReply struct {
	Stats models.PlayerStats
}

func (gs *GameService) GetPlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	stats, err := gs.records.PlayerStats(ctx, args.Name)
	if err != nil {
		return err
	}
	reply.Stats = *stats
	return nil
}

type RecentGamesArgs struct {
	RoomID string
	Limit  int
}

type RecentGamesReply struct {
	Games []models.GameRecord
}

func (gs *GameService) RecentGames(args *RecentGamesArgs, reply *RecentGamesReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	games, err := gs.records.RecentGames(ctx, args.RoomID, args.Limit)
	if err != nil {
		return err
	}
	reply.Games = games
	return nil
}
