package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/unchained-capital/hermit/internal/wallet"
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// out is a helper for CLI output that ignores write errors (standard
// pattern for CLI tools whose stdout write failures are not recoverable).
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func out(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with a trailing newline.
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func outln(w io.Writer, args ...interface{}) {
	fmt.Fprintln(w, args...)
}

// promptPasswordFn is the hidden-input reader used by promptPassword,
// swappable in tests so they don't depend on a real controlling terminal.
var promptPasswordFn = promptPasswordInteractive

// promptPassword prompts for hidden input on errOut/stdin. The caller is
// responsible for zeroing the returned bytes after use.
func promptPassword(errOut io.Writer, prompt string) ([]byte, error) {
	return promptPasswordFn(errOut, prompt)
}

func promptPasswordInteractive(errOut io.Writer, prompt string) ([]byte, error) {
	out(errOut, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(errOut)
	if err != nil {
		return nil, hermiterr.Wrap(err, "reading password")
	}
	return password, nil
}

// promptLine reads one line of visible input from r (shard mnemonics,
// shard names: nothing secret enough to need hidden entry).
func promptLine(errOut io.Writer, r *bufio.Reader, prompt string) (string, error) {
	out(errOut, "%s", prompt)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", hermiterr.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

// promptShardPassphrase prompts for a shard's own SLIP-39 passphrase.
// An empty line is the documented "no encryption" sentinel, not a
// zero-length passphrase.
func promptShardPassphrase(errOut io.Writer) ([]byte, error) {
	return promptPassword(errOut, "Shard passphrase (blank for none): ")
}

// promptWalletPassphrase prompts for the BIP-39 "25th word" seed
// passphrase used during unlock.
func promptWalletPassphrase(errOut io.Writer) ([]byte, error) {
	return promptPassword(errOut, "Wallet passphrase (blank for none): ")
}

// promptNewPassword prompts for a new password with confirmation, used
// when a shard's mnemonic is being encrypted for the first time.
func promptNewPassword(errOut io.Writer) ([]byte, error) {
	password, err := promptPassword(errOut, "Enter shard passphrase: ")
	if err != nil {
		return nil, err
	}

	confirm, err := promptPassword(errOut, "Confirm shard passphrase: ")
	if err != nil {
		wallet.ZeroBytes(password)
		return nil, err
	}
	defer wallet.ZeroBytes(confirm)

	if string(password) != string(confirm) {
		wallet.ZeroBytes(password)
		return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "passphrases do not match")
	}
	return password, nil
}
