// Package bitcoin holds the small set of Bitcoin protocol primitives that
// sit below btcsuite's higher-level packages.
package bitcoin

import (
	"crypto/sha256"

	//nolint:staticcheck // SA1019: RIPEMD160 is required by the Bitcoin P2PKH/HD-key spec, not a choice.
	"golang.org/x/crypto/ripemd160"
)

// Hash160 computes RIPEMD160(SHA256(data)), the hash BIP-32 uses to derive a
// key fingerprint and P2PKH uses to derive an address.
func Hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sum[:])
	return r.Sum(nil)
}
