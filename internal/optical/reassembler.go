package optical

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// dialect identifies which of the four QR payload framings a reassembler
// has locked onto, chosen from the first fragment observed.
type dialect int

const (
	dialectUnknown dialect = iota
	dialectSingle
	dialectBCURSingle
	dialectBCURMulti
	dialectSpecterMulti
)

var (
	reBCURSingle   = regexp.MustCompile(`(?i)^ur:bytes/([^/]+)/([^/]+)$`)
	reBCURMulti    = regexp.MustCompile(`(?i)^ur:bytes/([0-9]+)of([0-9]+)/([^/]+)/([^/]+)/([^/]+)$`)
	reSpecterMulti = regexp.MustCompile(`^p([0-9]+)of([0-9]+) (.+)$`)
)

// classify picks a dialect for the first fragment of a sequence. Order
// matters: the single-fragment fallback must be tried last since it
// matches any non-empty string.
func classify(data string) dialect {
	switch {
	case reBCURMulti.MatchString(data):
		return dialectBCURMulti
	case reBCURSingle.MatchString(data):
		return dialectBCURSingle
	case reSpecterMulti.MatchString(data):
		return dialectSpecterMulti
	default:
		return dialectSingle
	}
}

// Reassembler collects fragments of one QR sequence, dialect-dispatched
// from the first fragment observed, and decodes the completed payload.
// Progress is reported as (received, total) for the UI.
type Reassembler struct {
	dialect  dialect
	total    int
	seqID    string
	checksum string
	slots    []string
	filled   int
}

// NewReassembler starts an empty reassembler with no dialect chosen yet.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Collect feeds one fragment's text payload. Once the dialect is chosen
// by the first fragment, subsequent fragments must match it and, for
// multi-part dialects, must share the same total and sequence id.
// Duplicate fragments of an already-filled slot are idempotent.
func (r *Reassembler) Collect(data string) error {
	if r.dialect == dialectUnknown {
		r.dialect = classify(data)
	}

	switch r.dialect {
	case dialectSingle:
		return r.collectSingle(data)
	case dialectBCURSingle:
		return r.collectBCURSingle(data)
	case dialectBCURMulti:
		return r.collectBCURMulti(data)
	case dialectSpecterMulti:
		return r.collectSpecterMulti(data)
	default:
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "unrecognized QR fragment format")
	}
}

func (r *Reassembler) collectSingle(data string) error {
	if r.total != 0 {
		return nil // already complete; idempotent
	}
	r.total = 1
	r.slots = []string{data}
	r.filled = 1
	return nil
}

func (r *Reassembler) collectBCURSingle(data string) error {
	m := reBCURSingle.FindStringSubmatch(data)
	if m == nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "fragment does not match dialect bcur-single")
	}
	if r.total != 0 {
		return nil
	}
	r.total = 1
	r.checksum = m[1]
	r.slots = []string{m[2]}
	r.filled = 1
	return nil
}

func (r *Reassembler) collectBCURMulti(data string) error {
	m := reBCURMulti.FindStringSubmatch(data)
	if m == nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "fragment does not match dialect bcur-multi")
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "invalid fragment index")
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "invalid fragment total")
	}
	seqID, checksum, chunk := m[3], m[4], m[5]

	return r.storeMulti(idx-1, total, seqID, checksum, chunk)
}

func (r *Reassembler) collectSpecterMulti(data string) error {
	m := reSpecterMulti.FindStringSubmatch(data)
	if m == nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "fragment does not match dialect specter-multi")
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "invalid fragment index")
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "invalid fragment total")
	}
	return r.storeMulti(idx-1, total, "", "", m[3])
}

// storeMulti is shared slot-filling logic for the two multi-part dialects.
// seqID/checksum participation in the identity check is skipped when empty
// (specter-multi carries neither).
func (r *Reassembler) storeMulti(index, total int, seqID, checksum, segment string) error {
	if r.slots == nil {
		r.total = total
		r.seqID = seqID
		r.checksum = checksum
		r.slots = make([]string, total)
	}

	if r.total != total {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "mismatched total")
	}
	if seqID != "" && r.seqID != seqID {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "mixed sequence ids")
	}
	if checksum != "" && r.checksum != checksum {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "mixed sequence checksums")
	}
	if index < 0 || index >= total {
		return hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "fragment index out of range")
	}

	if r.slots[index] == "" {
		r.slots[index] = segment
		r.filled++
	}
	return nil
}

// IsComplete reports whether every slot of the sequence has been filled.
func (r *Reassembler) IsComplete() bool {
	return r.total > 0 && r.filled == r.total
}

// Progress reports (received, total) for the UI.
func (r *Reassembler) Progress() (int, int) {
	return r.filled, r.total
}

// Decode assembles the collected fragments into the original payload
// string. It is only valid once IsComplete reports true.
func (r *Reassembler) Decode() (string, error) {
	if !r.IsComplete() {
		return "", hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "sequence not complete")
	}

	switch r.dialect {
	case dialectSingle, dialectSpecterMulti:
		return strings.Join(r.slots, ""), nil
	case dialectBCURSingle:
		return decodeBase64Payload(r.slots[0])
	case dialectBCURMulti:
		var b64 strings.Builder
		for _, chunk := range r.slots {
			raw, err := decodeChunk(chunk)
			if err != nil {
				return "", err
			}
			b64.Write(raw)
		}
		return decodeBase64Payload(b64.String())
	default:
		return "", hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "unrecognized dialect")
	}
}

func decodeBase64Payload(b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "invalid base64 payload: %v", err)
	}
	return string(raw), nil
}
