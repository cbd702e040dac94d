// Package id generates process-local correlation identifiers for events.
package id

import (
	"sync"
	"time"
)

// seqBits is the number of low bits reserved for the per-millisecond sequence.
const seqBits = 20

// Generator produces strictly increasing 64-bit identifiers suitable for
// use as activity ids: [44 bits ms timestamp][20 bits sequence].
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	seq    uint64
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Next returns a new identifier. If the clock goes backwards it keeps using
// the last observed millisecond and increments the sequence. If the sequence
// saturates within one millisecond it waits for the next one.
func (g *Generator) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}

	if ms == g.lastMs {
		if g.seq == (1<<seqBits)-1 {
			for {
				ms = NowMs()
				if ms > g.lastMs {
					break
				}
				time.Sleep(time.Millisecond / 8)
			}
			g.seq = 0
		} else {
			g.seq++
		}
	} else {
		g.seq = 0
	}

	g.lastMs = ms
	return uint64(ms)<<seqBits | g.seq
}
