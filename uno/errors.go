package uno

import "errors"

// All engine errors are recoverable: the operation that returns one leaves
// the game unchanged.
var (
	ErrNotEnoughPlayers      = errors.New("not enough players")
	ErrGameAlreadyInProgress = errors.New("game already in progress")
	ErrGameNotStarted        = errors.New("game not started")
	ErrGameFinished          = errors.New("game finished")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrCardNotInHand         = errors.New("card not in hand")
	ErrNotSingleCard         = errors.New("hand does not hold exactly one card")
	ErrAlreadyJoined         = errors.New("player already joined")
	ErrNotInGame             = errors.New("player not in game")
	ErrAlreadyWithdrawn      = errors.New("player already withdrawn")
	ErrNoColorPending        = errors.New("no color choice pending")
	ErrColorChoicePending    = errors.New("color choice pending")
)
