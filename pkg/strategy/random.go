package strategy

import (
	"math/rand/v2"
	"time"

	"github.com/oisee/wmm-emulator/pkg/engine"
)

// Random picks uniformly among the enabled transitions, seeded from
// wall-clock time by default. Grounded on pkg/stoke's use of math/rand/v2
// (rand.New(rand.NewPCG(seed, seed^const))) for its own move selection.
type Random struct {
	rng *rand.Rand
}

// NewRandom builds a time-seeded Random strategy.
func NewRandom() *Random {
	now := uint64(time.Now().UnixNano())
	return &Random{rng: rand.New(rand.NewPCG(now, now^0x9E3779B97F4A7C15))}
}

// NewRandomSeeded builds a Random strategy with an explicit seed, for
// reproducible runs (the --seed flag in cmd/wmmemu).
func NewRandomSeeded(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (s *Random) Select(exec *engine.Executor) (int, error) {
	total := len(exec.EnabledThreadSteps()) + len(exec.EnabledPropagations())
	return s.rng.IntN(total), nil
}
