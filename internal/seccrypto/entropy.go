package seccrypto

import (
	"crypto/rand"
	"io"
)

// Reader is the cryptographically secure random source used for mnemonic
// generation, shard padding, and key material. Wrapping crypto/rand.Reader
// behind a package variable keeps it swappable in tests.
//
//nolint:gochecknoglobals // required for testability
var Reader io.Reader = rand.Reader

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SecureRandomBytes returns n random bytes held in a SecureBytes container.
func SecureRandomBytes(n int) (*SecureBytes, error) {
	sb, err := NewSecureBytes(n)
	if err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(Reader, sb.Bytes()); err != nil {
		sb.Destroy()
		return nil, err
	}

	return sb, nil
}
