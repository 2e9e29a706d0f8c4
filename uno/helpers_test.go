package uno

import (
	"strings"
	"sync"
	"testing"
)

// recordingNotifier keeps every notice for inspection.
type recordingNotifier struct {
	mu         sync.Mutex
	broadcasts []string
	private    map[PlayerID][]string
	onNotice   func()
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{private: make(map[PlayerID][]string)}
}

func (n *recordingNotifier) Broadcast(text string) error {
	if n.onNotice != nil {
		n.onNotice()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, text)
	return nil
}

func (n *recordingNotifier) SendTo(id PlayerID, text string) error {
	if n.onNotice != nil {
		n.onNotice()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.private[id] = append(n.private[id], text)
	return nil
}

func (n *recordingNotifier) sawBroadcast(text string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, b := range n.broadcasts {
		if b == text {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) lastPrivate(id PlayerID) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.private[id]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// scripted hands out cards in order and then Blue 9 forever.
func scripted(cards ...Card) DrawSource {
	var mu sync.Mutex
	i := 0
	return DrawFunc(func() Card {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(cards) {
			return Card{Color: Blue, Face: 9}
		}
		c := cards[i]
		i++
		return c
	})
}

func legacyOpts(handSize int) Options {
	return Options{HandSize: handSize, MinPlayers: 2, StrictLegacy: true}
}

func correctedOpts(handSize int) Options {
	return Options{HandSize: handSize, MinPlayers: 2, StrictLegacy: false}
}

// newStartedGame joins ids in order and starts the game. With hand size h,
// player i receives cards[i*h:(i+1)*h] and the next card is turned up.
func newStartedGame(t *testing.T, opts Options, ids []PlayerID, cards ...Card) (*Game, *recordingNotifier) {
	t.Helper()
	n := newRecordingNotifier()
	g := NewGame("test", opts, scripted(cards...), n)
	for _, id := range ids {
		if err := g.Join(id); err != nil {
			t.Fatalf("Join(%s) failed: %v", id, err)
		}
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return g, n
}

func handSize(t *testing.T, g *Game, id PlayerID) int {
	t.Helper()
	hand, err := g.Hand(id)
	if err != nil {
		t.Fatalf("Hand(%s) failed: %v", id, err)
	}
	return len(hand)
}

func mustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Errorf("Expected %q to contain %q", s, sub)
	}
}

var (
	red5    = Card{Color: Red, Face: 5}
	red7    = Card{Color: Red, Face: 7}
	blue2   = Card{Color: Blue, Face: 2}
	green3  = Card{Color: Green, Face: 3}
	yellow1 = Card{Color: Yellow, Face: 1}
	redSkip = Card{Color: Red, Face: Skip}
	blueRev = Card{Color: Blue, Face: Reverse}
	greenCC = Card{Color: Green, Face: ChangeColor}
	yellow4 = Card{Color: Yellow, Face: 4}
	green8  = Card{Color: Green, Face: 8}
)
