package testutil

import "fmt"

// SequentialIDs generates "<prefix>-0001", "<prefix>-0002", ...
// It satisfies store.IDGenerator.
type SequentialIDs struct {
	prefix  string
	counter *Counter
}

// NewSequentialIDs creates a generator. An empty prefix means "id".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDs{prefix: prefix, counter: NewCounter()}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.counter.Next())
}

// Reset restarts the sequence.
func (g *SequentialIDs) Reset() {
	g.counter.Reset()
}
