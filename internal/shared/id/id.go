// Package id generates identifiers used to correlate add-on activity in logs.
//
// Every refresh cycle (periodic tick, lifecycle refresh, page load, teardown
// clear) gets a prefixed ULID so the lines it logs can be grouped even when
// overlapping cycles interleave.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// CycleID identifies one refresh cycle.
type CycleID string

// Cycle prefixes.
const (
	SyncPrefix  = "sync"
	PagePrefix  = "page"
	ClearPrefix = "clear"
	// RequestPrefix marks trace and span ids of API requests.
	RequestPrefix = "req"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
		now:     time.Now,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
// and clock, for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		entropy: entropy,
		now:     now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewCycleID generates a cycle id for the given prefix.
func NewCycleID(prefix string) CycleID {
	return CycleID(Default().GenerateWithPrefix(prefix))
}

func (id CycleID) String() string { return string(id) }

// NewRequestID returns an id for tracing one API request.
func NewRequestID() string {
	return Default().GenerateWithPrefix(RequestPrefix)
}

// Timestamp extracts the creation time from a (possibly prefixed) id.
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
