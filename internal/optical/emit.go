// Package optical implements the unidirectional animated-QR link that
// moves arbitrary byte payloads in both directions: an emitter framing a
// payload as a cycling BCUR-multi QR sequence, and a receiver reassembling
// frames from any of four dialects back into the original payload.
package optical

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// chunkSize is the number of base64 bytes packed into each bech32-encoded
// fragment. Chosen so a fragment's framing string still fits comfortably
// in a version-12 QR code alongside the ur:bytes/i-of-N/seq/checksum/
// prefix overhead.
const chunkSize = 100

// BuildSequence frames payload as an ordered BCUR-multi fragment sequence
// encoding base64(payload), per spec.md §4.4. A single-fragment sequence
// (len(payload) small enough for one chunk) is still framed with xofy,
// since "emission uses BCUR-multi at all times."
func BuildSequence(payload []byte) ([]string, error) {
	b64 := base64.StdEncoding.EncodeToString(payload)
	checksum := contentChecksum(payload)
	seqID, err := newSequenceID()
	if err != nil {
		return nil, err
	}

	var chunks [][]byte
	for i := 0; i < len(b64); i += chunkSize {
		end := i + chunkSize
		if end > len(b64) {
			end = len(b64)
		}
		chunks = append(chunks, []byte(b64[i:end]))
	}
	if len(chunks) == 0 {
		chunks = [][]byte{{}}
	}

	total := len(chunks)
	fragments := make([]string, total)
	for i, chunk := range chunks {
		encoded, err := encodeChunk(chunk)
		if err != nil {
			return nil, err
		}
		fragments[i] = fmt.Sprintf("ur:bytes/%dof%d/%s/%s/%s", i+1, total, seqID, checksum, encoded)
	}
	return fragments, nil
}

// Display cycles the fragment sequence indefinitely at the configured
// inter-frame delay, invoking render for each frame, until ctx is
// cancelled (the operator abort in spec.md §5's cancellation semantics).
func Display(ctx context.Context, fragments []string, delay time.Duration, render func(frame string) error) error {
	if len(fragments) == 0 {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "nothing to display")
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	i := 0
	if err := render(fragments[0]); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			i = (i + 1) % len(fragments)
			if err := render(fragments[i]); err != nil {
				return err
			}
		}
	}
}
