package uno

// resolve applies the special effect of a card p just played.
func (g *Game) resolve(p *Player, card Card) {
	switch card.Face {
	case ChangeColor:
		g.broadcast("Choose a color: Red, Yellow, Blue, Green")
		g.awaitingColor = p.ID

	case Skip:
		blocked := g.nextIndex(g.current)
		g.broadcast("%s has been blocked!", g.players[blocked].ID)
		if g.opts.StrictLegacy {
			return
		}
		g.current = blocked
		g.advanceTurn()

	case Reverse:
		if g.opts.StrictLegacy {
			return
		}
		g.direction = -g.direction
		g.broadcast("Play direction reversed!")
		g.advanceTurn()

	default:
		g.advanceTurn()
	}
}
