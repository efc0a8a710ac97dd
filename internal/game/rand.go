package game

import (
	"fmt"
	"hash/fnv"
	mathrand "math/rand"
)

// Streams derives reproducible random sources from the session seed. Market
// streams are shared by every player for a month (fair market); player
// streams are independent per (player, month) for idiosyncratic draws.
// Derivation is a pure function, so tests can replay any turn exactly.
type Streams struct {
	seed int64
}

func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed}
}

func (s *Streams) Seed() int64 {
	return s.seed
}

// Player returns the stream for one player's month. Month 0 is reserved for
// portfolio-creation draws (the pre-committed theft months).
func (s *Streams) Player(player string, month int) *mathrand.Rand {
	return s.derive(fmt.Sprintf("player|%s|%d", player, month))
}

// Market returns the stream driving the shared bank market for a month.
func (s *Streams) Market(month int) *mathrand.Rand {
	return s.derive(fmt.Sprintf("market|%d", month))
}

func (s *Streams) derive(label string) *mathrand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%s", s.seed, label)
	return mathrand.New(mathrand.NewSource(int64(h.Sum64())))
}
