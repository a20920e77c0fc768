// Package entropy implements the keystroke-driven entropy collector:
// operator-typed lines are folded into a SHA-256 pool once their
// estimated entropy crosses each successive 256-bit threshold.
package entropy

import (
	"bytes"
	"compress/zlib"
	"crypto/sha256"
	"math"
)

// thresholdBits is the granularity at which typed entropy is folded into
// the output pool.
const thresholdBits = 256

// Collector accumulates operator input lines and produces pooled bytes
// once enough estimated entropy has been typed.
type Collector struct {
	buffer    []byte // the current line buffer, not yet folded
	pool      []byte // folded output, ready to hand out
	threshold float64
}

// NewCollector starts an empty collector.
func NewCollector() *Collector {
	return &Collector{threshold: thresholdBits}
}

// AddLine feeds one line of operator-typed input. When the running
// estimate for the unfolded buffer crosses the next 256-bit threshold,
// the buffer's SHA-256 is folded into the pool and the buffer is reset.
func (c *Collector) AddLine(line string) {
	c.buffer = append(c.buffer, line...)

	estimate := maxEntropyEstimate(c.buffer)
	if estimate < c.threshold {
		return
	}

	sum := sha256.Sum256(c.buffer)
	c.pool = append(c.pool, sum[:]...)
	c.buffer = c.buffer[:0]
}

// Available reports how many pooled bytes are currently ready.
func (c *Collector) Available() int {
	return len(c.pool)
}

// Random returns exactly size bytes from the pool, consuming them. It
// reports false if fewer than size bytes are available; callers should
// keep feeding AddLine until Available() >= size.
func (c *Collector) Random(size int) ([]byte, bool) {
	if len(c.pool) < size {
		return nil, false
	}
	out := make([]byte, size)
	copy(out, c.pool[:size])
	c.pool = c.pool[size:]
	return out, true
}

// NeededChunks reports how many 32-byte chunks remain to satisfy size
// bytes, given what's already pooled.
func (c *Collector) NeededChunks(size int) int {
	remaining := size - len(c.pool)
	if remaining <= 0 {
		return 0
	}
	return (remaining + 31) / 32
}

// maxEntropyEstimate is the conservative minimum of the self-entropy and
// compression-bound estimates, in bits.
func maxEntropyEstimate(data []byte) float64 {
	self := maxSelfEntropy(data)
	kolmogorov := maxCompressionEntropy(data)
	if kolmogorov < self {
		return kolmogorov
	}
	return self
}

// maxSelfEntropy is the Shannon entropy of the byte-frequency histogram,
// times the length: an upper bound valid for data the length of actual
// operator keystrokes.
func maxSelfEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	total := float64(len(data))
	var entropyPerByte float64
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		entropyPerByte += p * math.Log2(p)
	}
	return math.Abs(entropyPerByte * total)
}

// maxCompressionEntropy is 8 * len(zlib-compress(data, best)), an upper
// bound on the total information content of data.
func maxCompressionEntropy(data []byte) float64 {
	var buf bytes.Buffer
	w, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = w.Write(data)
	_ = w.Close()
	return float64(8 * buf.Len())
}
