package uno

import (
	"math/rand/v2"
	"sync"
)

// DrawSource produces an endless stream of independent cards.
type DrawSource interface {
	Draw() Card
}

// DrawFunc adapts a function to DrawSource.
type DrawFunc func() Card

func (f DrawFunc) Draw() Card { return f() }

const numberedProbability = 0.8

// RandomSource draws numbered cards 80% of the time and specials otherwise,
// with color, rank and kind each chosen uniformly.
type RandomSource struct {
	mu sync.Mutex
	r  *rand.Rand // nil uses the goroutine-safe global generator
}

// NewRandomSource returns a source seeded for reproducible draws.
func NewRandomSource(seed uint64) *RandomSource {
	return &RandomSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSource) Draw() Card {
	if s.r == nil {
		return drawWith(rand.Float64, rand.IntN)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return drawWith(s.r.Float64, s.r.IntN)
}

func drawWith(float func() float64, intn func(int) int) Card {
	color := Colors[intn(len(Colors))]
	if float() < numberedProbability {
		return Card{Color: color, Face: Face(intn(9) + 1)}
	}
	return Card{Color: color, Face: SpecialFaces[intn(len(SpecialFaces))]}
}
