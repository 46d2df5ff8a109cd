package game

import "math/rand"

// Roller produces biased die rolls. The production implementation is Dice;
// tests may substitute a fixed sequence.
type Roller interface {
	Roll(sides int, bias float64) int
}

// Dice draws from a seeded pseudo-random sequence. Same seed and same call
// order always yields the same rolls.
type Dice struct {
	rng *rand.Rand
}

func NewDice(seed int64) *Dice {
	return &Dice{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a value in [1, sides]. The uniform draw is shifted by bias
// and clamped to [0,1) before scaling, so a bias of +1 pins the roll at
// sides and -1 pins it at 1.
func (d *Dice) Roll(sides int, bias float64) int {
	if sides < 1 {
		sides = 1
	}
	v := d.rng.Float64() + bias
	if v < 0 {
		v = 0
	}
	n := int(v*float64(sides)) + 1
	if n > sides {
		n = sides
	}
	return n
}
