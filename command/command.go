// Package command turns chat text into the closed set of game commands and
// game errors back into chat replies.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wfunc/unoserver/uno"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
	// ErrGameNotFinished is returned when a new game is requested too early.
	ErrGameNotFinished = errors.New("game not finished")
)

// Command is one of the types below; nothing else implements it.
type Command interface {
	Verb() string
	command()
}

type (
	Join     struct{}
	Start    struct{}
	Play     struct{ Card uno.Card }
	Draw     struct{}
	Uno      struct{}
	Withdraw struct{}
	Color    struct{ Color uno.Color }
	Help     struct{}
	Status   struct{}
	Hand     struct{}
	NewGame  struct{}
)

func (Join) Verb() string     { return "join" }
func (Start) Verb() string    { return "start" }
func (Play) Verb() string     { return "play" }
func (Draw) Verb() string     { return "draw" }
func (Uno) Verb() string      { return "uno" }
func (Withdraw) Verb() string { return "withdraw" }
func (Color) Verb() string    { return "color" }
func (Help) Verb() string     { return "help" }
func (Status) Verb() string   { return "status" }
func (Hand) Verb() string     { return "hand" }
func (NewGame) Verb() string  { return "newgame" }

func (Join) command()     {}
func (Start) command()    {}
func (Play) command()     {}
func (Draw) command()     {}
func (Uno) command()      {}
func (Withdraw) command() {}
func (Color) command()    {}
func (Help) command()     {}
func (Status) command()   {}
func (Hand) command()     {}
func (NewGame) command()  {}

// Parse reads "!verb args". The leading "!" is optional and verbs are
// case-insensitive.
func Parse(text string) (Command, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "!")
	verb, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "join":
		return Join{}, nil
	case "start":
		return Start{}, nil
	case "play":
		if arg == "" {
			return nil, fmt.Errorf("%w: play needs a card", ErrMissingArgument)
		}
		card, err := uno.ParseCard(arg)
		if err != nil {
			return nil, err
		}
		return Play{Card: card}, nil
	case "draw":
		return Draw{}, nil
	case "uno":
		return Uno{}, nil
	case "withdraw":
		return Withdraw{}, nil
	case "color", "colour":
		if arg == "" {
			return nil, fmt.Errorf("%w: color needs a color", ErrMissingArgument)
		}
		color, err := uno.ParseColor(strings.Fields(arg)[0])
		if err != nil {
			return nil, err
		}
		return Color{Color: color}, nil
	case "help":
		return Help{}, nil
	case "status":
		return Status{}, nil
	case "hand", "cards":
		return Hand{}, nil
	case "newgame":
		return NewGame{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
}

const HelpText = `Commands:
!start - Start a new game (requires at least 2 players)
!join - Join the game
!play [card] - Play a card, e.g. !play Red 5 or !play Blue Change_Color
!color [color] - Pick the color after playing a Change_Color card
!draw - Draw a card
!uno - Declare 'UNO!'
!withdraw - Withdraw from the game
!hand - Show your cards (sent only to you)
!status - Show the table
!newgame - Open a new lobby once the game is over`

// Reply is the chat text for a failed command.
func Reply(err error) string {
	switch {
	case errors.Is(err, uno.ErrNotEnoughPlayers):
		return "You need two or more players to start the game."
	case errors.Is(err, uno.ErrGameAlreadyInProgress):
		return "The game is already in progress. Wait for the next round."
	case errors.Is(err, uno.ErrGameNotStarted):
		return "The game has not started yet. Please wait."
	case errors.Is(err, uno.ErrGameFinished):
		return "The game is over. Use !newgame to open a new lobby."
	case errors.Is(err, uno.ErrNotYourTurn):
		return "It's not your turn!"
	case errors.Is(err, uno.ErrCardNotInHand), errors.Is(err, uno.ErrInvalidCard):
		return "Invalid card. Choose another card or use !draw."
	case errors.Is(err, uno.ErrNotSingleCard):
		return "You can only use this command when you have one card left."
	case errors.Is(err, uno.ErrAlreadyJoined):
		return "You already joined the game."
	case errors.Is(err, uno.ErrNotInGame):
		return "You are not in this game."
	case errors.Is(err, uno.ErrAlreadyWithdrawn):
		return "That player has already withdrawn."
	case errors.Is(err, uno.ErrNoColorPending):
		return "There is no color to choose right now."
	case errors.Is(err, uno.ErrColorChoicePending):
		return "Choose a color first: !color Red, Yellow, Blue or Green."
	case errors.Is(err, ErrGameNotFinished):
		return "The current game is not over yet."
	case errors.Is(err, ErrMissingArgument), errors.Is(err, ErrUnknownCommand):
		return "Unknown command. Type !help for the list of commands."
	}
	return "Something went wrong."
}
