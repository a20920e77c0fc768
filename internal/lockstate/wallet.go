// Package lockstate holds the process-global wallet lock lifecycle: a
// single in-memory object exposing lock/unlock/is_unlocked plus a
// cooperative idle timer that locks the wallet after a period of
// inactivity. Unlike the teacher's session package, nothing is persisted
// to disk or an OS keyring — the root xprv lives in RAM only while
// unlocked, per spec.
package lockstate

import (
	"sync"
	"time"

	"github.com/unchained-capital/hermit/internal/seccrypto"
	"github.com/unchained-capital/hermit/internal/slip39"
	"github.com/unchained-capital/hermit/internal/wallet"
)

// Default idle-lock durations, mirrored from the teacher's session TTL
// bounds but repurposed as an idle timeout rather than a session expiry.
const (
	DefaultIdleTimeout = 15 * time.Minute
	MaxIdleTimeout     = 60 * time.Minute
	MinIdleTimeout     = 1 * time.Minute

	// tickInterval matches spec.md §5's 500ms cooperative idle tick.
	tickInterval = 500 * time.Millisecond
)

// Wallet is the process-global lock-guarded wallet object. It wraps an
// internal/wallet.Root and adds the unlock pipeline (shard combine ->
// BIP-39 entropy -> mnemonic -> seed) plus the idle-timer lock.
type Wallet struct {
	mu           sync.Mutex
	root         *wallet.Root
	idleTimeout  time.Duration
	lastActivity time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a locked wallet around root with the given idle timeout.
// idleTimeout is clamped to [MinIdleTimeout, MaxIdleTimeout].
func New(root *wallet.Root, idleTimeout time.Duration) *Wallet {
	if idleTimeout < MinIdleTimeout {
		idleTimeout = MinIdleTimeout
	}
	if idleTimeout > MaxIdleTimeout {
		idleTimeout = MaxIdleTimeout
	}
	return &Wallet{
		root:        root,
		idleTimeout: idleTimeout,
	}
}

// Unlock reconstructs the seed from SLIP-39 shard mnemonics and unlocks
// the root key. shardPassphrase is the SLIP-39 shard encryption
// passphrase (often empty, the documented no-encryption sentinel);
// walletPassphrase is the BIP-39 seed-stretching passphrase (the "25th
// word"). Idempotent: re-unlocking replaces the prior root and resets
// the idle timer.
func (w *Wallet) Unlock(mnemonics []string, shardPassphrase, walletPassphrase string) error {
	entropy, err := slip39.CombineMnemonics(mnemonics, shardPassphrase)
	if err != nil {
		return err
	}

	bip39Mnemonic, err := wallet.EntropyToMnemonic(entropy)
	wallet.ZeroBytes(entropy)
	if err != nil {
		return err
	}

	seedBytes, err := wallet.MnemonicToSeed(bip39Mnemonic, walletPassphrase)
	if err != nil {
		return err
	}
	defer wallet.ZeroBytes(seedBytes)

	seed, err := seccrypto.SecureBytesFromSlice(seedBytes)
	if err != nil {
		return err
	}
	if err := w.root.Unlock(seed); err != nil {
		return err
	}

	w.mu.Lock()
	w.lastActivity = now()
	w.mu.Unlock()
	return nil
}

// Lock synchronously drops all in-memory key material.
func (w *Wallet) Lock() {
	w.root.Lock()
}

// IsUnlocked reports whether the root currently holds a private key.
func (w *Wallet) IsUnlocked() bool {
	return w.root.IsUnlocked()
}

// Root exposes the underlying key-derivation surface for xpub/signing
// calls; it is only usable while the wallet is unlocked.
func (w *Wallet) Root() *wallet.Root {
	return w.root
}

// IdleTimeout reports the configured idle-lock duration.
func (w *Wallet) IdleTimeout() time.Duration {
	return w.idleTimeout
}

// Touch resets the idle counter. Call this on every operator input.
func (w *Wallet) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastActivity = now()
}

// idleFor returns how long it has been since the last Touch.
func (w *Wallet) idleFor() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastActivity.IsZero() {
		return 0
	}
	return now().Sub(w.lastActivity)
}

// StartIdleTimer launches the cooperative idle-timer goroutine: every
// tickInterval it checks elapsed idle time and locks the wallet once
// idleTimeout is exceeded. Call StopIdleTimer to end it.
func (w *Wallet) StartIdleTimer() {
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		return
	}
	w.stop = make(chan struct{})
	w.stopOnce = sync.Once{}
	stop := w.stop
	w.mu.Unlock()

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if w.IsUnlocked() && w.idleFor() >= w.idleTimeout {
					w.Lock()
				}
			case <-stop:
				return
			}
		}
	}()
}

// StopIdleTimer ends the idle-timer goroutine, if running.
func (w *Wallet) StopIdleTimer() {
	w.mu.Lock()
	stop := w.stop
	w.stop = nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	w.stopOnce.Do(func() { close(stop) })
}

// now is a seam so tests can observe wall-clock flow without sleeping the
// full idle timeout.
var now = time.Now
