package uno

// PlayerID is the opaque handle the identity provider gives a participant.
type PlayerID string

// Player is one roster entry. Hand order is draw order.
type Player struct {
	ID        PlayerID
	Hand      []Card
	Withdrawn bool
}

func NewPlayer(id PlayerID) *Player {
	return &Player{ID: id}
}

func (p *Player) AddCard(c Card) {
	p.Hand = append(p.Hand, c)
}

// RemoveCard removes the first card equal to c.
func (p *Player) RemoveCard(c Card) error {
	for i, held := range p.Hand {
		if held == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return nil
		}
	}
	return ErrCardNotInHand
}

func (p *Player) HasCard(c Card) bool {
	for _, held := range p.Hand {
		if held == c {
			return true
		}
	}
	return false
}

// Withdraw marks the player withdrawn and reports whether that changed anything.
func (p *Player) Withdraw() bool {
	if p.Withdrawn {
		return false
	}
	p.Withdrawn = true
	return true
}

func (p *Player) handCopy() []Card {
	return append([]Card(nil), p.Hand...)
}
