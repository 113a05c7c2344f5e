// Package names is the unique-name service spec.md §5/§6 describes as an
// external collaborator: a monotonic counter (one per Gen) used to mint
// fresh, collision-free identifiers during closure conversion (lambda
// function names, environment struct tags, temporaries) and resettable
// between compilations so output stays deterministic across runs on the
// same source.
//
// Grounded on internal/typesystem's own id-counter pattern (see
// types.NextID), pulled out to its own package because the code generator
// needs C-identifier-shaped names in addition to the typer's TypeVar ids.
package names

import (
	"fmt"
	"sync"
)

// Gen mints unique names. Safe for concurrent use so a daemon session
// (internal/session) can run more than one compile without id collisions
// from a single shared Gen, though in practice each compile gets its own.
type Gen struct {
	mu      sync.Mutex
	counter int
}

// New returns a fresh, zeroed generator.
func New() *Gen { return &Gen{} }

// UniqueName returns "<prefix>_<n>" for a fresh monotonic n, suitable
// anywhere a FeatherScala-level unique binder is needed.
func (g *Gen) UniqueName(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s_%d", prefix, g.counter)
}

// UniqueCName is UniqueName with its result guaranteed to be a valid C
// identifier: prefix is assumed already C-safe (callers pass literal
// strings like "env" or "closure"), only the counter varies.
func (g *Gen) UniqueCName(prefix string) string {
	return g.UniqueName("fsc_" + prefix)
}

// Reset zeroes the counter. Exposed for tests and for a fresh top-level
// compilation that wants deterministic output independent of however many
// names a prior compile in the same process minted.
func (g *Gen) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}
