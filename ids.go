package toast

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces instance ids. Implementations must never return the
// same id twice.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 instance ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns Prefix followed by a monotonically increasing
// counter, starting at 1. Useful where ids must be predictable, such as
// tests and golden output.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequenceGenerator creates a generator producing prefix-1, prefix-2, ...
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	return g.Prefix + "-" + strconv.FormatUint(g.n.Add(1), 10)
}
