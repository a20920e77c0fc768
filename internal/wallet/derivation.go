package wallet

import (
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/unchained-capital/hermit/internal/seccrypto"
	"github.com/unchained-capital/hermit/internal/wallet/bitcoin"
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// Root is the HD wallet's root key: the single BIP-32 master node the
// shard engine and mnemonic layer ultimately produce. It holds the root
// extended private key only while unlocked.
type Root struct {
	mu          sync.Mutex
	params      *chaincfg.Params
	master      *hdkeychain.ExtendedKey
	fingerprint [4]byte
	unlocked    bool
}

// NewRoot creates a locked root for the given network.
func NewRoot(params *chaincfg.Params) *Root {
	return &Root{params: params}
}

// Unlock derives the root extended private key from a 64-byte BIP-39 seed
// and records the root fingerprint (HASH160(compressed root pubkey)[:4]).
// Idempotent when already unlocked: re-unlocking with a different seed
// replaces the prior root.
func (r *Root) Unlock(seed *seccrypto.SecureBytes) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	master, err := hdkeychain.NewMaster(seed.Bytes(), r.params)
	if err != nil {
		return hermiterr.Wrap(err, "deriving master key from seed")
	}

	pub, err := master.ECPubKey()
	if err != nil {
		return hermiterr.Wrap(err, "deriving root public key")
	}

	hash := bitcoinHash160(pub.SerializeCompressed())
	r.master = master
	copy(r.fingerprint[:], hash[:4])
	r.unlocked = true
	return nil
}

// Lock drops the in-memory root extended private key.
func (r *Root) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.master = nil
	r.unlocked = false
}

// IsUnlocked reports whether the root currently holds a private key.
func (r *Root) IsUnlocked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unlocked
}

// Fingerprint returns the root key fingerprint; valid only while unlocked.
func (r *Root) Fingerprint() [4]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fingerprint
}

// deriveNode walks path from the root, requiring the private key to be
// present for every hardened segment.
func (r *Root) deriveNode(path Path) (*hdkeychain.ExtendedKey, error) {
	if !r.unlocked {
		return nil, hermiterr.ErrWalletLocked
	}

	node := r.master
	for _, idx := range path {
		if idx >= HardenedStart && !node.IsPrivate() {
			return nil, hermiterr.WithDetails(hermiterr.ErrInvalidPath,
				map[string]string{"reason": "hardened segment requires a private key"})
		}
		child, err := node.Derive(idx)
		if err != nil {
			return nil, hermiterr.Wrap(err, "deriving child key")
		}
		node = child
	}
	return node, nil
}

// Xpub derives the node at path and serializes its extended public key.
// When slip132 is true the 4-byte version prefix is swapped for the
// SLIP-132 variant matching purpose' (zpub/vpub for BIP-84, standard
// xpub/tpub otherwise, since no SLIP-132 prefix exists for Taproot).
func (r *Root) Xpub(path string, slip132 bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parsed, err := ParsePath(path)
	if err != nil {
		return "", err
	}

	node, err := r.deriveNode(parsed)
	if err != nil {
		return "", err
	}

	pub := node
	if node.IsPrivate() {
		pub, err = node.Neuter()
		if err != nil {
			return "", hermiterr.Wrap(err, "neutering extended key")
		}
	}

	xpub := pub.String()
	if !slip132 {
		return xpub, nil
	}

	purpose := uint32(0)
	if len(parsed) > 0 {
		purpose = parsed[0] - HardenedStart
	}
	return convertToSLIP132(xpub, purpose, r.params)
}

// PrivateKey derives the node at path and returns its 32-byte scalar. The
// caller is responsible for zeroing the returned slice after use.
func (r *Root) PrivateKey(path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parsed, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	node, err := r.deriveNode(parsed)
	if err != nil {
		return nil, err
	}

	priv, err := node.ECPrivKey()
	if err != nil {
		return nil, hermiterr.Wrap(err, "deriving private key")
	}
	scalar := make([]byte, 0, btcec.PrivKeyBytesLen)
	scalar = append(scalar, priv.Serialize()...)
	return scalar, nil
}

// PublicKey derives the node at path and returns its compressed public key.
// Like Xpub, it derives through deriveNode and so requires the wallet to be
// unlocked; it returns the raw key rather than a serialized extended key.
func (r *Root) PublicKey(path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parsed, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	node, err := r.deriveNode(parsed)
	if err != nil {
		return nil, err
	}

	pub, err := node.ECPubKey()
	if err != nil {
		return nil, hermiterr.Wrap(err, "deriving public key")
	}
	return pub.SerializeCompressed(), nil
}

func bitcoinHash160(data []byte) []byte {
	return bitcoin.Hash160(data)
}
