package optical

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/bech32"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// bech32HRP is the human-readable part used for every bech32-chunked BCUR
// payload fragment. The wire format itself (spec.md §4.4) only cares about
// the data part; the hrp is fixed so fragments are self-describing.
const bech32HRP = "ur"

// encodeChunk bech32-encodes a raw byte chunk, per the original
// implementation's bech32-chunked BCUR payload encoding (supplementing
// spec.md §4.4, which names the wire format but not its chunk boundary).
func encodeChunk(chunk []byte) (string, error) {
	converted, err := bech32.ConvertBits(chunk, 8, 5, true)
	if err != nil {
		return "", hermiterr.Wrap(err, "converting chunk to 5-bit groups")
	}
	encoded, err := bech32.Encode(bech32HRP, converted)
	if err != nil {
		return "", hermiterr.Wrap(err, "bech32-encoding chunk")
	}
	return encoded, nil
}

// decodeChunk reverses encodeChunk.
func decodeChunk(s string) ([]byte, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return nil, hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "invalid bech32 chunk: %v", err)
	}
	if hrp != bech32HRP {
		return nil, hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "unexpected bech32 hrp %q", hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "converting chunk from 5-bit groups: %v", err)
	}
	return raw, nil
}

// contentChecksum is the short content-hash checksum shared by every
// fragment of one sequence, letting a reassembler detect a mixed sequence.
func contentChecksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:4])
}

// newSequenceID returns a stable random identifier for one emitted
// sequence.
func newSequenceID() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", hermiterr.Wrap(err, "generating sequence id")
	}
	return hex.EncodeToString(buf), nil
}
