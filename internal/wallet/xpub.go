package wallet

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// SLIP-132 version bytes for BIP-84 (native SegWit) extended public keys.
// No SLIP-132 prefix exists for BIP-86 (Taproot), so those paths keep the
// standard xpub/tpub version.
var (
	zpubVersion = [4]byte{0x04, 0xb2, 0x47, 0x46} // mainnet zpub
	vpubVersion = [4]byte{0x04, 0x5f, 0x1c, 0xf6} // testnet/signet vpub
)

const bip84Purpose = 84

// convertToSLIP132 re-encodes a standard xpub/tpub string with the
// SLIP-132 version prefix for purpose 84' (zpub/vpub); any other purpose
// is returned unchanged. btcutil/base58's CheckEncode/CheckDecode carry
// only a single version byte (sized for address payloads), while an
// extended-key version prefix is 4 bytes, so the checksum here is computed
// directly against base58.Encode/Decode rather than the Check* helpers.
func convertToSLIP132(xpub string, purpose uint32, params *chaincfg.Params) (string, error) {
	if purpose != bip84Purpose {
		return xpub, nil
	}

	payload, version, err := decodeBase58Check(xpub)
	if err != nil {
		return "", hermiterr.Wrap(err, "decoding xpub")
	}

	if version != params.HDPublicKeyID {
		return "", hermiterr.WithDetails(hermiterr.ErrInvalidPath,
			map[string]string{"reason": "xpub version does not match configured network"})
	}

	newVersion := vpubVersion
	if params.Net == chaincfg.MainNetParams.Net {
		newVersion = zpubVersion
	}

	return encodeBase58Check(payload, newVersion), nil
}

// decodeBase58Check decodes a base58check string into its 4-byte version
// and payload, verifying the trailing double-SHA256 checksum.
func decodeBase58Check(encoded string) (payload []byte, version [4]byte, err error) {
	raw := base58.Decode(encoded)
	if len(raw) < 4+4 {
		return nil, version, hermiterr.ErrInvalidPath
	}

	body := raw[:len(raw)-4]
	checksum := raw[len(raw)-4:]
	if !checksumMatches(body, checksum) {
		return nil, version, hermiterr.ErrInvalidPath
	}

	copy(version[:], body[:4])
	return body[4:], version, nil
}

// encodeBase58Check base58check-encodes version+payload with a trailing
// double-SHA256 checksum.
func encodeBase58Check(payload []byte, version [4]byte) string {
	body := make([]byte, 0, 4+len(payload))
	body = append(body, version[:]...)
	body = append(body, payload...)
	return base58.Encode(append(body, checksumOf(body)...))
}

func checksumOf(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func checksumMatches(body, checksum []byte) bool {
	want := checksumOf(body)
	if len(want) != len(checksum) {
		return false
	}
	for i := range want {
		if want[i] != checksum[i] {
			return false
		}
	}
	return true
}
