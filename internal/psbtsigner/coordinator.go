package psbtsigner

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/unchained-capital/hermit/internal/config"
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// coordinatorSigKey is the well-known PSBT unknown-field key an external
// coordinator attaches its signature under, per spec's external interfaces.
var coordinatorSigKey = []byte("coordinator_sig")

// CoordinatorCheck verifies an optional external-coordinator signature over
// the unsigned PSBT, per the two supported algorithms.
type CoordinatorCheck struct {
	Required  bool
	Algorithm string
	RSAKey    *rsa.PublicKey
	ECKey     *btcec.PublicKey
}

// NewCoordinatorCheck builds a CoordinatorCheck from configuration. The
// public key field may hold a PEM block (RSA) or hex-encoded compressed
// secp256k1 point (ECDSA), selected by cfg.Algorithm.
func NewCoordinatorCheck(cfg config.CoordinatorConfig) (*CoordinatorCheck, error) {
	c := &CoordinatorCheck{Required: cfg.SignatureRequired, Algorithm: cfg.Algorithm}
	if cfg.PublicKey == "" {
		return c, nil
	}

	switch cfg.Algorithm {
	case config.AlgorithmRSAPKCS1SHA256:
		block, _ := pem.Decode([]byte(cfg.PublicKey))
		if block == nil {
			return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "coordinator.public_key is not valid PEM")
		}
		key, err := parseRSAPublicKey(block.Bytes)
		if err != nil {
			return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "invalid RSA coordinator key: %v", err)
		}
		c.RSAKey = key
	case config.AlgorithmECDSASecp256k1SHA256:
		raw, err := hex.DecodeString(cfg.PublicKey)
		if err != nil {
			return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "coordinator.public_key is not valid hex")
		}
		key, err := btcec.ParsePubKey(raw)
		if err != nil {
			return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "invalid secp256k1 coordinator key: %v", err)
		}
		c.ECKey = key
	default:
		return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "unknown coordinator algorithm %q", cfg.Algorithm)
	}
	return c, nil
}

// Verify implements spec's §4.3.1 coordinator-signature check: make a deep
// copy of the PSBT, delete the signature entry from the copy, re-serialize
// to base64, and verify the attached signature over those bytes.
func (c *CoordinatorCheck) Verify(p *psbt.Packet) error {
	sig, present := findUnknown(p.Unknowns, coordinatorSigKey)
	if !present {
		if c.Required {
			return hermiterr.Wrap(hermiterr.ErrInvalidCoordinatorSignature, "missing")
		}
		return nil
	}

	unsigned, err := stripCoordinatorSig(p)
	if err != nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidCoordinatorSignature, "re-serializing PSBT for verification: %v", err)
	}

	if err := c.verifySignature(unsigned, sig); err != nil {
		return hermiterr.Wrap(hermiterr.ErrInvalidCoordinatorSignature, "%v", err)
	}
	return nil
}

func (c *CoordinatorCheck) verifySignature(message, sig []byte) error {
	digest := sha256.Sum256(message)

	switch c.Algorithm {
	case config.AlgorithmRSAPKCS1SHA256:
		if c.RSAKey == nil {
			return hermiterr.New("COORDINATOR_KEY_MISSING", "no RSA coordinator key configured")
		}
		return rsa.VerifyPKCS1v15(c.RSAKey, crypto.SHA256, digest[:], sig)
	case config.AlgorithmECDSASecp256k1SHA256:
		if c.ECKey == nil {
			return hermiterr.New("COORDINATOR_KEY_MISSING", "no secp256k1 coordinator key configured")
		}
		parsed, err := ecdsaSignatureFromDER(sig)
		if err != nil {
			return err
		}
		if !ecdsa.Verify(c.ECKey.ToECDSA(), digest[:], parsed.R, parsed.S) {
			return hermiterr.New("COORDINATOR_SIGNATURE_MISMATCH", "signature does not verify")
		}
		return nil
	default:
		return hermiterr.New("COORDINATOR_ALGORITHM_UNKNOWN", "no coordinator algorithm configured")
	}
}

// stripCoordinatorSig serializes p to base64 bytes with the coordinator_sig
// unknown entry removed, without mutating p itself.
func stripCoordinatorSig(p *psbt.Packet) ([]byte, error) {
	var orig bytes.Buffer
	if err := p.Serialize(&orig); err != nil {
		return nil, err
	}

	copyPkt, err := psbt.NewFromRawBytes(bytes.NewReader(orig.Bytes()), false)
	if err != nil {
		return nil, err
	}

	filtered := copyPkt.Unknowns[:0]
	for _, u := range copyPkt.Unknowns {
		if bytes.Equal(u.Key, coordinatorSigKey) {
			continue
		}
		filtered = append(filtered, u)
	}
	copyPkt.Unknowns = filtered

	b64, err := Emit(copyPkt)
	if err != nil {
		return nil, err
	}
	return []byte(b64), nil
}

func findUnknown(unknowns []*psbt.Unknown, key []byte) ([]byte, bool) {
	for _, u := range unknowns {
		if u != nil && bytes.Equal(u.Key, key) {
			return u.Value, true
		}
	}
	return nil, false
}
