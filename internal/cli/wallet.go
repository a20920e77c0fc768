package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unchained-capital/hermit/internal/optical"
	"github.com/unchained-capital/hermit/internal/output"
	"github.com/unchained-capital/hermit/internal/psbtsigner"
	"github.com/unchained-capital/hermit/internal/slip39"
	"github.com/unchained-capital/hermit/internal/wallet"
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

func buildWalletCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Unlock, lock, sign, and inspect the wallet",
	}

	cmd.AddCommand(buildUnlockCmd(app))
	cmd.AddCommand(buildLockCmd(app))
	cmd.AddCommand(buildSignCmd(app))
	cmd.AddCommand(buildDisplayXpubCmd(app))
	return cmd
}

// buildUnlockCmd implements spec.md §3's interactive reconstruction
// protocol: shards are offered one at a time until a full quorum of groups
// is satisfied, then combined into the seed and used to unlock the root.
func buildUnlockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Reconstruct the seed from a quorum of SLIP-39 shards and unlock the wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.Wallet.IsUnlocked() {
				outln(cmd.OutOrStdout(), "already unlocked")
				return nil
			}

			selector := slip39.NewSelector()
			reader := bufio.NewReader(cmd.InOrStdin())

			for {
				filled, satisfied := selector.Status()
				if satisfied {
					break
				}
				line, err := promptLine(app.ErrOut, reader, fmt.Sprintf("Shard (groups filled: %d), blank line to abort: ", filled))
				if err != nil {
					return err
				}
				if line == "" {
					return hermiterr.Wrap(hermiterr.ErrInsufficientShards, "unlock aborted before quorum was satisfied")
				}

				shard, ok, err := selector.Offer(line)
				if err != nil {
					outln(app.ErrOut, "rejected: ", err)
					continue
				}
				if !ok {
					outln(app.ErrOut, "rejected: shard does not fit the current selection")
					continue
				}
				selector.Add(shard)
			}

			mnemonics, err := selector.Mnemonics()
			if err != nil {
				return err
			}

			shardPass, err := promptShardPassphrase(app.ErrOut)
			if err != nil {
				return err
			}
			defer wallet.ZeroBytes(shardPass)

			walletPass, err := promptWalletPassphrase(app.ErrOut)
			if err != nil {
				return err
			}
			defer wallet.ZeroBytes(walletPass)

			if err := app.Wallet.Unlock(mnemonics, string(shardPass), string(walletPass)); err != nil {
				return err
			}
			app.Wallet.StartIdleTimer()

			outln(cmd.OutOrStdout(), "wallet unlocked, fingerprint", fmt.Sprintf("%x", app.Wallet.Root().Fingerprint()))
			return nil
		},
	}
}

func buildLockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Zero the in-memory root key immediately",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.Wallet.Lock()
			outln(cmd.OutOrStdout(), "wallet locked")
			return nil
		},
	}
}

// buildSignCmd implements the full PSBT pipeline of spec.md §4.3: parse,
// validate, describe, prompt for operator approval, sign, and emit. The
// PSBT is read either as a base64 argument (the CLI surface's
// `sign [BASE64_PSBT]` form) or, with no argument, reassembled from
// animated-QR fragment lines read from stdin via internal/optical.
func buildSignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sign [BASE64_PSBT]",
		Short: "Validate, approve, and sign a PSBT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Wallet.IsUnlocked() {
				return hermiterr.ErrWalletLocked
			}
			app.Wallet.Touch()

			raw, err := resolvePSBTInput(cmd, app, args)
			if err != nil {
				return err
			}

			signer := psbtsigner.New(app.Wallet.Root())
			signed, err := signer.Pipeline(raw, app.Coord, func(desc *psbtsigner.Description) bool {
				return promptApproval(app, desc)
			})
			if err != nil {
				return err
			}

			return emitSigned(cmd, app, signed)
		},
	}
}

func resolvePSBTInput(cmd *cobra.Command, app *App, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	outln(app.ErrOut, "Enter QR fragment lines (blank line when done):")
	reassembler := optical.NewReassembler()
	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		line, err := promptLine(app.ErrOut, reader, "> ")
		if err != nil {
			return "", err
		}
		if line == "" {
			break
		}
		if err := reassembler.Collect(line); err != nil {
			outln(app.ErrOut, "rejected fragment: ", err)
			continue
		}
		if reassembler.IsComplete() {
			break
		}
		received, total := reassembler.Progress()
		outln(app.ErrOut, fmt.Sprintf("received %d/%d", received, total))
	}

	if !reassembler.IsComplete() {
		return "", hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "sequence incomplete")
	}
	return reassembler.Decode()
}

func promptApproval(app *App, desc *psbtsigner.Description) bool {
	outln(app.ErrOut, fmt.Sprintf("inputs=%d outputs=%d total_in=%d total_out=%d fee=%d quorum=%d-of-%d",
		desc.InputCount, desc.OutputCount, desc.TotalIn, desc.TotalOut, desc.Fee, desc.Quorum.M, desc.Quorum.N))
	out(app.ErrOut, "Approve and sign? [y/N]: ")

	var response string
	_, _ = fmt.Fscanln(os.Stdin, &response)
	return response == "y" || response == "yes"
}

func emitSigned(cmd *cobra.Command, app *App, signed string) error {
	fragments, err := optical.BuildSequence([]byte(signed))
	if err != nil {
		return err
	}

	for _, frame := range fragments {
		if output.CanRenderQR(cmd.OutOrStdout()) {
			if err := output.RenderQR(cmd.OutOrStdout(), frame, output.DefaultQRConfig()); err != nil {
				return err
			}
		} else {
			outln(cmd.OutOrStdout(), frame)
		}
	}
	return nil
}

// buildDisplayXpubCmd implements the CLI surface's `display-xpub PATH`.
func buildDisplayXpubCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "display-xpub PATH",
		Short: "Display the extended public key at a derivation path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Wallet.IsUnlocked() {
				return hermiterr.ErrWalletLocked
			}
			app.Wallet.Touch()

			xpub, err := app.Wallet.Root().Xpub(args[0], false)
			if err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), xpub)
			return nil
		},
	}
}
