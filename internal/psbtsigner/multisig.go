package psbtsigner

import hermiterr "github.com/unchained-capital/hermit/pkg/errors"

// opcode constants relevant to standard bare/witness multisig scripts.
const (
	op0             = 0x00
	op1             = 0x51
	op16            = 0x60
	opPushdata1     = 0x4c
	opCheckMultisig = 0xae
)

// quorum parses a bare or witness multisig script of the canonical form
// OP_m <pubkey>... OP_n OP_CHECKMULTISIG and returns (m, n, pubkeys).
func quorum(script []byte) (m, n int, pubkeys [][]byte, err error) {
	if len(script) < 3 {
		return 0, 0, nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "script too short")
	}
	if script[0] < op1 || script[0] > op16 {
		return 0, 0, nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "not a multisig script")
	}
	m = int(script[0]) - op1 + 1

	i := 1
	for i < len(script) {
		op := script[i]
		i++
		if op >= op1 && op <= op16 {
			n = int(op) - op1 + 1
			break
		}
		if op >= 0x01 && op < opPushdata1 {
			if i+int(op) > len(script) {
				return 0, 0, nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "truncated pubkey push")
			}
			pubkeys = append(pubkeys, script[i:i+int(op)])
			i += int(op)
			continue
		}
		return 0, 0, nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "unexpected opcode in multisig script")
	}

	if i >= len(script) || script[i] != opCheckMultisig {
		return 0, 0, nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "missing OP_CHECKMULTISIG")
	}
	if n != len(pubkeys) {
		return 0, 0, nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "pubkey count disagrees with n")
	}
	if m > n || m < 1 {
		return 0, 0, nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "invalid quorum")
	}
	return m, n, pubkeys, nil
}
