// Package dice provides the randomness abstraction used by the combat
// engine, skill checks, and the map generator.
package dice

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for all rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is uniform in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Roll returns one die result in [1, sides] drawn from src.
//
// Precondition: sides >= 2; src must be non-nil.
func Roll(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// D20 rolls a twenty-sided die.
func D20(src Source) int { return Roll(src, 20) }

// D6 rolls a six-sided die.
func D6(src Source) int { return Roll(src, 6) }
