package wallet

import (
	"strconv"
	"strings"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// HardenedStart is the index at which hardened children begin (2^31). A
// hardened segment is encoded as n + HardenedStart.
const HardenedStart = uint32(1) << 31

// Path is a parsed BIP-32 derivation path, one child index per segment, in
// order from the root.
type Path []uint32

// ParsePath parses a path string such as "m/84'/0'/0'/0/0" into segment
// indices, hardening any segment suffixed with ' or h.
func ParsePath(path string) (Path, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "m" {
		return Path{}, nil
	}

	hadSlash := strings.HasPrefix(path, "m/") || strings.HasPrefix(path, "M/")
	path = strings.TrimPrefix(path, "m/")
	path = strings.TrimPrefix(path, "M/")
	if path == "" {
		if hadSlash {
			return nil, hermiterr.ErrInvalidPath
		}
		return Path{}, nil
	}

	segments := strings.Split(path, "/")
	result := make(Path, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return nil, hermiterr.ErrInvalidPath
		}

		hardened := false
		switch seg[len(seg)-1] {
		case '\'', 'h', 'H':
			hardened = true
			seg = seg[:len(seg)-1]
		}

		n, err := strconv.ParseUint(seg, 10, 32)
		if err != nil || n >= uint64(HardenedStart) {
			return nil, hermiterr.ErrInvalidPath
		}

		idx := uint32(n)
		if hardened {
			idx += HardenedStart
		}
		result = append(result, idx)
	}

	return result, nil
}

// String renders the path back to "m/84'/0'/..." form.
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('m')
	for _, idx := range p {
		b.WriteByte('/')
		if idx >= HardenedStart {
			b.WriteString(strconv.FormatUint(uint64(idx-HardenedStart), 10))
			b.WriteByte('\'')
		} else {
			b.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
	}
	return b.String()
}

// HasHardenedSegment reports whether any segment of the path is hardened.
func (p Path) HasHardenedSegment() bool {
	for _, idx := range p {
		if idx >= HardenedStart {
			return true
		}
	}
	return false
}
