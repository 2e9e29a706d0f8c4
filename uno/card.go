package uno

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCard is returned when text cannot be parsed as a card or color.
var ErrInvalidCard = errors.New("invalid card")

type Color int

const (
	NoColor Color = iota
	Red
	Yellow
	Blue
	Green
)

// Colors lists the four playable colors in display order.
var Colors = []Color{Red, Yellow, Blue, Green}

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	case Blue:
		return "Blue"
	case Green:
		return "Green"
	default:
		return "None"
	}
}

// Face is a rank 1-9 or one of the special kinds.
type Face int

const (
	Skip Face = iota + 10
	Reverse
	ChangeColor
)

// SpecialFaces lists the special kinds a draw can produce.
var SpecialFaces = []Face{Skip, Reverse, ChangeColor}

func (f Face) IsNumber() bool { return f >= 1 && f <= 9 }

func (f Face) String() string {
	switch f {
	case Skip:
		return "Skip"
	case Reverse:
		return "Reverse"
	case ChangeColor:
		return "Change_Color"
	default:
		return strconv.Itoa(int(f))
	}
}

// Card is compared by value: two cards with the same color and face are the same card.
type Card struct {
	Color Color
	Face  Face
}

func (c Card) String() string {
	if c.Color == NoColor {
		return c.Face.String()
	}
	return c.Color.String() + " " + c.Face.String()
}

// ParseColor accepts a color name in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "yellow":
		return Yellow, nil
	case "blue":
		return Blue, nil
	case "green":
		return Green, nil
	}
	return NoColor, fmt.Errorf("%w: unknown color %q", ErrInvalidCard, s)
}

func parseFace(s string) (Face, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	switch norm {
	case "skip":
		return Skip, nil
	case "reverse":
		return Reverse, nil
	case "changecolor":
		return ChangeColor, nil
	}
	n, err := strconv.Atoi(norm)
	if err != nil || !Face(n).IsNumber() {
		return 0, fmt.Errorf("%w: unknown face %q", ErrInvalidCard, s)
	}
	return Face(n), nil
}

// ParseCard reads the "<Color> <Face>" form produced by Card.String,
// e.g. "Red 5", "blue skip" or "Green Change_Color".
func ParseCard(s string) (Card, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	color, err := ParseColor(fields[0])
	if err != nil {
		return Card{}, err
	}
	face, err := parseFace(strings.Join(fields[1:], " "))
	if err != nil {
		return Card{}, err
	}
	return Card{Color: color, Face: face}, nil
}

// FormatCards joins cards the way they are shown to players.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
