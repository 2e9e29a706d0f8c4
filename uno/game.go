package uno

import (
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/unoserver/logger"
	"github.com/wfunc/unoserver/state"
)

// Notifier delivers engine output. Broadcast reaches the whole session,
// SendTo reaches a single player only.
type Notifier interface {
	Broadcast(text string) error
	SendTo(id PlayerID, text string) error
}

type Options struct {
	HandSize   int
	MinPlayers int
	// StrictLegacy keeps the legacy chat-bot rules: Skip only announces,
	// Reverse does nothing, withdrawn players keep their turns and Withdraw
	// acts on whoever holds the turn. Turning it off applies the corrected rules.
	StrictLegacy bool
}

func DefaultOptions() Options {
	return Options{HandSize: 10, MinPlayers: 2, StrictLegacy: true}
}

type notice struct {
	to   PlayerID // empty means broadcast
	text string
}

// Game is one session's state machine. Mutating operations hold the write
// lock from validation through mutation; the notices they produce are
// delivered afterwards, in operation order, without the state lock.
type Game struct {
	ID string

	opts      Options
	source    DrawSource
	notifier  Notifier
	lifecycle *state.BaseStateMachine

	mu         sync.RWMutex
	outbox     []notice
	nextTicket uint64 // guarded by mu

	deliverMu sync.Mutex
	delivered *sync.Cond
	served    uint64 // guarded by deliverMu

	players       []*Player
	current       int
	direction     int
	currentCard   Card
	withdrawn     []PlayerID
	awaitingColor PlayerID
	winner        PlayerID // also set by a legacy last-player win, which does not finish the game
	turnSeq       uint64
	startedAt     time.Time
	finishedAt    time.Time
}

func NewGame(id string, opts Options, source DrawSource, notifier Notifier) *Game {
	if opts.HandSize <= 0 {
		opts.HandSize = DefaultOptions().HandSize
	}
	if opts.MinPlayers < 2 {
		opts.MinPlayers = DefaultOptions().MinPlayers
	}
	if source == nil {
		source = &RandomSource{}
	}
	if notifier == nil {
		notifier = discard{}
	}
	g := &Game{
		ID:        id,
		opts:      opts,
		source:    source,
		notifier:  notifier,
		direction: 1,
	}
	g.delivered = sync.NewCond(&g.deliverMu)

	// Guards and hooks run inside ChangeState, which is only called with g.mu held.
	g.lifecycle = state.NewGameLifecycle(func() bool { return len(g.players) >= g.opts.MinPlayers })
	g.lifecycle.OnEnter(state.InProgress, func() { g.startedAt = time.Now() })
	g.lifecycle.OnEnter(state.Finished, func() { g.finishedAt = time.Now() })
	return g
}

func (g *Game) Options() Options { return g.opts }

// Join appends a player to the roster while the game is in the lobby.
func (g *Game) Join(id PlayerID) error {
	return g.apply(func() error {
		switch g.lifecycle.Current() {
		case state.InProgress:
			return ErrGameAlreadyInProgress
		case state.Finished:
			return ErrGameFinished
		}
		if g.lookup(id) != nil {
			return ErrAlreadyJoined
		}
		g.players = append(g.players, NewPlayer(id))
		g.broadcast("%s joined the game!", id)
		return nil
	})
}

// Start deals every player a full hand, one player at a time in join order,
// then turns up the first card and hands the turn to the first player.
func (g *Game) Start() error {
	return g.apply(func() error {
		switch g.lifecycle.Current() {
		case state.InProgress:
			return ErrGameAlreadyInProgress
		case state.Finished:
			return ErrGameFinished
		}
		if len(g.players) < g.opts.MinPlayers {
			return ErrNotEnoughPlayers
		}
		if err := g.lifecycle.ChangeState(state.InProgress); err != nil {
			return err
		}

		for _, p := range g.players {
			for i := 0; i < g.opts.HandSize; i++ {
				p.AddCard(g.source.Draw())
			}
		}
		g.currentCard = g.source.Draw()
		g.current = 0
		g.direction = 1

		g.broadcast("Game started!")
		g.turnSeq++
		g.promptCurrent()
		return nil
	})
}

// Play puts card from the caller's hand face up and resolves its effect.
// Matching against the current card is not enforced.
func (g *Game) Play(id PlayerID, card Card) error {
	return g.apply(func() error {
		p, err := g.requireTurn(id)
		if err != nil {
			return err
		}
		if !p.HasCard(card) {
			return ErrCardNotInHand
		}

		_ = p.RemoveCard(card)
		g.currentCard = card
		g.awaitingColor = ""
		g.broadcast("%s played %s", id, card)

		g.resolve(p, card)

		if len(p.Hand) == 0 {
			g.finish(p.ID, fmt.Sprintf("%s wins!", id))
		}
		return nil
	})
}

// Draw gives the caller one card and always passes the turn.
func (g *Game) Draw(id PlayerID) error {
	return g.apply(func() error {
		p, err := g.requireTurn(id)
		if err != nil {
			return err
		}
		g.drawAndPass(p)
		return nil
	})
}

// DeclareUno announces that the caller is down to one card. It has no effect
// on play.
func (g *Game) DeclareUno(id PlayerID) error {
	return g.apply(func() error {
		if err := g.requireInProgress(); err != nil {
			return err
		}
		p := g.lookup(id)
		if p == nil {
			return ErrNotInGame
		}
		if len(p.Hand) != 1 {
			return ErrNotSingleCard
		}
		g.broadcast("%s: UNO!", id)
		return nil
	})
}

// Withdraw takes a player out of the rotation. The roster entry stays.
func (g *Game) Withdraw(id PlayerID) error {
	return g.apply(func() error {
		if err := g.requireInProgress(); err != nil {
			return err
		}

		var p *Player
		if g.opts.StrictLegacy {
			p = g.players[g.current]
		} else {
			if p = g.lookup(id); p == nil {
				return ErrNotInGame
			}
		}
		if !p.Withdraw() {
			return ErrAlreadyWithdrawn
		}
		g.withdrawn = append(g.withdrawn, p.ID)
		if g.awaitingColor == p.ID {
			g.awaitingColor = ""
		}
		g.broadcast("%s has withdrawn from the game.", p.ID)

		if len(g.withdrawn) == len(g.players)-1 {
			remaining := g.firstActive()
			text := fmt.Sprintf("%s wins after everyone else has withdrawn!", remaining.ID)
			if g.opts.StrictLegacy {
				// The win is announced but play may go on.
				g.queue("", text)
				g.winner = remaining.ID
				g.finishedAt = time.Now()
			} else {
				g.finish(remaining.ID, text)
			}
			return nil
		}

		if !g.opts.StrictLegacy && g.players[g.current].ID == p.ID {
			g.advanceTurn()
		}
		return nil
	})
}

// ChooseColor completes a Change_Color play: the face-up card takes the
// chosen color and the turn passes.
func (g *Game) ChooseColor(id PlayerID, color Color) error {
	return g.apply(func() error {
		if err := g.requireInProgress(); err != nil {
			return err
		}
		if g.awaitingColor == "" {
			return ErrNoColorPending
		}
		if g.awaitingColor != id {
			return ErrNotYourTurn
		}
		if color == NoColor {
			return fmt.Errorf("%w: a color is required", ErrInvalidCard)
		}

		g.currentCard = Card{Color: color, Face: ChangeColor}
		g.awaitingColor = ""
		g.broadcast("%s chose %s", id, color)
		g.advanceTurn()
		return nil
	})
}

// ExpireTurn makes the current player draw and pass if the turn identified
// by seq is still running. It reports whether anything happened.
func (g *Game) ExpireTurn(seq uint64) bool {
	expired := false
	_ = g.apply(func() error {
		if g.lifecycle.Current() != state.InProgress || g.winner != "" || seq != g.turnSeq {
			return nil
		}
		p := g.players[g.current]
		g.broadcast("%s ran out of time.", p.ID)
		g.awaitingColor = ""
		g.drawAndPass(p)
		expired = true
		return nil
	})
	return expired
}

// Hand returns a copy of one player's hand.
func (g *Game) Hand(id PlayerID) ([]Card, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p := g.lookup(id)
	if p == nil {
		return nil, ErrNotInGame
	}
	return p.handCopy(), nil
}

// --- internals; everything below apply and deliver runs with g.mu held ---

// apply runs fn under the write lock, then delivers whatever fn queued.
// Each call takes a ticket while it holds the lock and delivers only when
// every earlier ticket has been delivered, so notices keep operation order
// while the state lock stays free for readers and the next operation.
func (g *Game) apply(fn func() error) error {
	g.mu.Lock()
	err := fn()
	out := g.outbox
	g.outbox = nil
	ticket := g.nextTicket
	g.nextTicket++
	g.mu.Unlock()

	g.deliver(ticket, out)
	return err
}

func (g *Game) deliver(ticket uint64, out []notice) {
	g.deliverMu.Lock()
	for g.served != ticket {
		g.delivered.Wait()
	}
	g.deliverMu.Unlock()

	defer func() {
		g.deliverMu.Lock()
		g.served++
		g.delivered.Broadcast()
		g.deliverMu.Unlock()
	}()

	for _, n := range out {
		var sendErr error
		if n.to == "" {
			sendErr = g.notifier.Broadcast(n.text)
		} else {
			sendErr = g.notifier.SendTo(n.to, n.text)
		}
		if sendErr != nil {
			logger.Log.Warnw("notice delivery failed", "game", g.ID, "to", n.to, "error", sendErr)
		}
	}
}

func (g *Game) queue(to PlayerID, text string) {
	g.outbox = append(g.outbox, notice{to: to, text: text})
}

func (g *Game) broadcast(format string, args ...any) {
	g.queue("", fmt.Sprintf(format, args...))
}

func (g *Game) lookup(id PlayerID) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) firstActive() *Player {
	for _, p := range g.players {
		if !p.Withdrawn {
			return p
		}
	}
	return nil
}

func (g *Game) requireInProgress() error {
	switch g.lifecycle.Current() {
	case state.Lobby:
		return ErrGameNotStarted
	case state.Finished:
		return ErrGameFinished
	}
	return nil
}

func (g *Game) requireTurn(id PlayerID) (*Player, error) {
	if err := g.requireInProgress(); err != nil {
		return nil, err
	}
	p := g.players[g.current]
	if p.ID != id {
		return nil, ErrNotYourTurn
	}
	if !g.opts.StrictLegacy && g.awaitingColor == id {
		return nil, ErrColorChoicePending
	}
	return p, nil
}

func (g *Game) drawAndPass(p *Player) {
	c := g.source.Draw()
	p.AddCard(c)
	g.awaitingColor = ""
	g.queue(p.ID, fmt.Sprintf("The card you drew is: %s", c))
	g.advanceTurn()
}

// nextIndex steps once in the current direction. Under the corrected rules
// it keeps stepping past withdrawn players, at most one full lap.
func (g *Game) nextIndex(from int) int {
	n := len(g.players)
	i := from
	for step := 0; step < n; step++ {
		i = ((i+g.direction)%n + n) % n
		if g.opts.StrictLegacy || !g.players[i].Withdrawn {
			return i
		}
	}
	return from
}

func (g *Game) advanceTurn() {
	g.current = g.nextIndex(g.current)
	g.turnSeq++
	g.promptCurrent()
}

func (g *Game) promptCurrent() {
	p := g.players[g.current]
	g.queue(p.ID, fmt.Sprintf("It's your turn! Current card: %s\nYour cards: %s", g.currentCard, FormatCards(p.Hand)))
}

func (g *Game) finish(winner PlayerID, text string) {
	g.queue("", text)
	g.winner = winner
	g.awaitingColor = ""
	if err := g.lifecycle.ChangeState(state.Finished); err != nil {
		logger.Log.Errorw("finish game", "game", g.ID, "error", err)
	}
}

type discard struct{}

func (discard) Broadcast(string) error        { return nil }
func (discard) SendTo(PlayerID, string) error { return nil }
