package uno

import (
	"fmt"
	"strings"
	"time"

	"github.com/wfunc/unoserver/state"
)

type PlayerView struct {
	ID        PlayerID
	HandSize  int
	Withdrawn bool
}

// Snapshot is a read-only copy of a game's public state.
type Snapshot struct {
	ID            string
	Phase         state.Phase
	Players       []PlayerView
	Current       PlayerID // empty unless in progress
	CurrentCard   Card
	Direction     int
	AwaitingColor PlayerID
	Winner        PlayerID
	Withdrawn     []PlayerID
	TurnSeq       uint64
	StartedAt     time.Time
	FinishedAt    time.Time
}

func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Snapshot{
		ID:            g.ID,
		Phase:         g.lifecycle.Current(),
		Players:       make([]PlayerView, len(g.players)),
		CurrentCard:   g.currentCard,
		Direction:     g.direction,
		AwaitingColor: g.awaitingColor,
		Winner:        g.winner,
		Withdrawn:     append([]PlayerID(nil), g.withdrawn...),
		TurnSeq:       g.turnSeq,
		StartedAt:     g.startedAt,
		FinishedAt:    g.finishedAt,
	}
	for i, p := range g.players {
		s.Players[i] = PlayerView{ID: p.ID, HandSize: len(p.Hand), Withdrawn: p.Withdrawn}
	}
	if s.Phase == state.InProgress {
		s.Current = g.players[g.current].ID
	}
	return s
}

// Over reports whether a winner has been decided, either by finishing the
// game or by a legacy last-player win announced while play goes on.
func (s Snapshot) Over() bool {
	return s.Phase == state.Finished || s.Winner != ""
}

// Running reports whether turns are still being contested.
func (s Snapshot) Running() bool {
	return s.Phase == state.InProgress && s.Winner == ""
}

// Summary renders the snapshot as the status text shown in chat.
func (s Snapshot) Summary() string {
	var b strings.Builder
	switch s.Phase {
	case state.Lobby:
		fmt.Fprintf(&b, "Waiting for players (%d joined).", len(s.Players))
	case state.InProgress:
		fmt.Fprintf(&b, "Current card: %s. It's %s's turn.", s.CurrentCard, s.Current)
		if s.AwaitingColor != "" {
			fmt.Fprintf(&b, " Waiting for %s to choose a color.", s.AwaitingColor)
		}
		if s.Winner != "" {
			fmt.Fprintf(&b, " %s has already won.", s.Winner)
		}
	case state.Finished:
		if s.Winner != "" {
			fmt.Fprintf(&b, "Game over. %s won.", s.Winner)
		} else {
			b.WriteString("Game over.")
		}
	}
	for _, p := range s.Players {
		fmt.Fprintf(&b, "\n%s: %d cards", p.ID, p.HandSize)
		if p.Withdrawn {
			b.WriteString(" (withdrawn)")
		}
	}
	return b.String()
}
