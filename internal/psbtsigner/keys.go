package psbtsigner

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"math/big"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// parseRSAPublicKey accepts both PKCS#1 and PKIX-wrapped RSA public keys,
// matching the two PEM forms operators commonly hand us.
func parseRSAPublicKey(der []byte) (*rsa.PublicKey, error) {
	if key, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return key, nil
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, hermiterr.New("COORDINATOR_KEY_INVALID", "PEM key is not an RSA public key")
	}
	return key, nil
}

type ecdsaSignature struct {
	R, S *big.Int
}

// ecdsaSignatureFromDER decodes a DER-encoded ECDSA signature (the standard
// wire form for secp256k1 signatures) into its (r, s) pair.
func ecdsaSignatureFromDER(der []byte) (*ecdsaSignature, error) {
	var sig ecdsaSignature
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return nil, hermiterr.Wrap(err, "invalid DER ECDSA signature")
	}
	return &sig, nil
}
