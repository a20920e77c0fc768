package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unchained-capital/hermit/internal/entropy"
	"github.com/unchained-capital/hermit/internal/optical"
	"github.com/unchained-capital/hermit/internal/output"
	"github.com/unchained-capital/hermit/internal/slip39"
	"github.com/unchained-capital/hermit/internal/wallet"
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

func buildShardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shards",
		Short: "Build, import, export, and manage SLIP-39 shards",
	}

	cmd.AddCommand(buildFamilyFromPhraseCmd(app))
	cmd.AddCommand(buildFamilyFromRandomCmd(app))
	cmd.AddCommand(buildFamilyFromFamilyCmd(app))
	cmd.AddCommand(buildImportShardFromPhraseCmd(app))
	cmd.AddCommand(buildImportShardFromQRCmd(app))
	cmd.AddCommand(buildExportShardAsPhraseCmd(app))
	cmd.AddCommand(buildExportShardAsQRCmd(app))
	cmd.AddCommand(buildCopyShardCmd(app))
	cmd.AddCommand(buildRenameShardCmd(app))
	cmd.AddCommand(buildDeleteShardCmd(app))
	cmd.AddCommand(buildListShardsCmd(app))
	return cmd
}

// buildListShardsCmd supplements spec.md §6's shard-management verbs with
// a read-only listing of everything currently in the store, formatted as
// a table for a terminal or JSON for a script consuming Hermit's output.
func buildListShardsCmd(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list-shards",
		Short: "List every shard currently held in the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			f := output.NewFormatter(output.DetectFormat(w, output.ParseFormat(format)), w)

			names := app.Shards.Names()
			if f.IsJSON() {
				return f.Print(names)
			}

			table := output.NewTable("NAME", "GROUP", "MEMBER")
			for _, name := range names {
				shard, err := app.Shards.Get(name)
				if err != nil {
					return err
				}
				group := fmt.Sprintf("%d/%d", shard.GroupIndex+1, shard.GroupCount)
				member := fmt.Sprintf("%d/%d", shard.MemberIndex+1, shard.MemberThreshold)
				table.AddRow(name, group, member)
			}
			return table.Render(w)
		},
	}
	cmd.Flags().StringVar(&format, "format", "auto", "output format: text, json, or auto")
	return cmd
}

// groupSpecFlags holds the --threshold/--groups flags shared by every
// build-family-from-* command.
type groupSpecFlags struct {
	threshold int
	groups    string // "m1:n1,m2:n2,..."
}

func (f *groupSpecFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.threshold, "threshold", 1, "number of groups required to reconstruct the family")
	cmd.Flags().StringVar(&f.groups, "groups", "2:3", "comma-separated member-threshold:member-count per group")
}

func (f *groupSpecFlags) parse() ([]slip39.GroupSpec, error) {
	parts := strings.Split(f.groups, ",")
	specs := make([]slip39.GroupSpec, 0, len(parts))
	for _, part := range parts {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(fields) != 2 {
			return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "invalid group spec %q, want m:n", part)
		}
		m, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "invalid member threshold in %q", part)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, hermiterr.Wrap(hermiterr.ErrConfigInvalid, "invalid member count in %q", part)
		}
		specs = append(specs, slip39.GroupSpec{MemberThreshold: m, MemberCount: n})
	}
	return specs, nil
}

// newFamilyPassphrase prompts for the SLIP-39 passphrase a freshly built
// family's shards are encrypted under, with confirmation. A blank entry is
// the documented no-encryption sentinel.
func newFamilyPassphrase(app *App) (string, error) {
	passphrase, err := promptNewPassword(app.ErrOut)
	if err != nil {
		return "", err
	}
	defer wallet.ZeroBytes(passphrase)
	return string(passphrase), nil
}

// persistFamily writes every shard of a freshly generated family into the
// store, named "<prefix>-g<group>-m<member>".
func persistFamily(app *App, prefix string, family *slip39.Family) error {
	for gi, group := range family.Groups {
		for mi, mnemonic := range group {
			shard, err := slip39.ParseShard(mnemonic)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("%s-g%d-m%d", prefix, gi+1, mi+1)
			if err := app.Shards.Add(name, shard); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildFamilyFromPhraseCmd(app *App) *cobra.Command {
	flags := &groupSpecFlags{}
	var name string
	cmd := &cobra.Command{
		Use:   "build-family-from-phrase PHRASE",
		Short: "Build a SLIP-39 shard family from an existing BIP-39 phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := strings.Join(args, " ")
			entropyBytes, err := wallet.MnemonicToEntropy(phrase)
			if err != nil {
				return err
			}
			defer wallet.ZeroBytes(entropyBytes)

			groups, err := flags.parse()
			if err != nil {
				return err
			}

			passphrase, err := newFamilyPassphrase(app)
			if err != nil {
				return err
			}

			family, err := slip39.GenerateShards(entropyBytes, flags.threshold, groups, passphrase, false, 0)
			if err != nil {
				return err
			}
			if name == "" {
				name = "family"
			}
			if err := persistFamily(app, name, family); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "built family", name, "with", len(family.Groups), "group(s)")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "shard name prefix (default: family)")
	return cmd
}

func buildFamilyFromRandomCmd(app *App) *cobra.Command {
	flags := &groupSpecFlags{}
	var name string
	var words int
	cmd := &cobra.Command{
		Use:   "build-family-from-random",
		Short: "Build a SLIP-39 shard family from freshly collected keystroke entropy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secretSize := 16
			if words == 24 {
				secretSize = 32
			}

			secret, err := collectRandomSecret(app, cmd, secretSize)
			if err != nil {
				return err
			}
			defer wallet.ZeroBytes(secret)

			groups, err := flags.parse()
			if err != nil {
				return err
			}

			passphrase, err := newFamilyPassphrase(app)
			if err != nil {
				return err
			}

			family, err := slip39.GenerateShards(secret, flags.threshold, groups, passphrase, false, 0)
			if err != nil {
				return err
			}
			if name == "" {
				name = "family"
			}
			if err := persistFamily(app, name, family); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "built family", name, "with", len(family.Groups), "group(s)")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "shard name prefix (default: family)")
	cmd.Flags().IntVar(&words, "words", 12, "BIP-39 word count (12 or 24)")
	return cmd
}

// collectRandomSecret drives spec.md §3's keystroke-entropy collector:
// the operator types free-form lines until enough estimated entropy has
// accumulated for secretSize bytes.
func collectRandomSecret(app *App, cmd *cobra.Command, secretSize int) ([]byte, error) {
	collector := entropy.NewCollector()
	reader := bufio.NewReader(cmd.InOrStdin())

	for {
		secret, ok := collector.Random(secretSize)
		if ok {
			return secret, nil
		}
		need := collector.NeededChunks(secretSize)
		line, err := promptLine(app.ErrOut, reader, fmt.Sprintf("Type random characters (~%d more 256-bit chunks needed): ", need))
		if err != nil {
			return nil, err
		}
		collector.AddLine(line)
	}
}

// familySpec is the on-disk shape build-family-from-family reads: the
// quorum structure of a family without its secret, so the same structure
// can be rebuilt around a newly supplied phrase (secret rotation keeping
// the group/member layout fixed).
type familySpec struct {
	GroupThreshold int                `json:"group_threshold"`
	Groups         []slip39.GroupSpec `json:"groups"`
}

func buildFamilyFromFamilyCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "build-family-from-family SPEC_FILE PHRASE",
		Short: "Rebuild a shard family with a new phrase but the same quorum structure",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) //nolint:gosec // G304: operator-supplied path
			if err != nil {
				return hermiterr.Wrap(err, "reading family spec %s", args[0])
			}
			var spec familySpec
			if err := json.Unmarshal(data, &spec); err != nil {
				return hermiterr.Wrap(hermiterr.ErrConfigInvalid, "parsing family spec: %v", err)
			}

			phrase := strings.Join(args[1:], " ")
			entropyBytes, err := wallet.MnemonicToEntropy(phrase)
			if err != nil {
				return err
			}
			defer wallet.ZeroBytes(entropyBytes)

			passphrase, err := newFamilyPassphrase(app)
			if err != nil {
				return err
			}

			family, err := slip39.GenerateShards(entropyBytes, spec.GroupThreshold, spec.Groups, passphrase, false, 0)
			if err != nil {
				return err
			}
			if name == "" {
				name = "family"
			}
			if err := persistFamily(app, name, family); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "rebuilt family", name, "with", len(family.Groups), "group(s)")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "shard name prefix (default: family)")
	return cmd
}

func buildImportShardFromPhraseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import-shard-from-phrase NAME",
		Short: "Import a single SLIP-39 shard from its mnemonic phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := promptLine(app.ErrOut, reader, "Shard mnemonic: ")
			if err != nil {
				return err
			}
			shard, err := slip39.ParseShard(line)
			if err != nil {
				return err
			}
			if err := app.Shards.Add(args[0], shard); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "imported shard", args[0])
			return nil
		},
	}
}

func buildImportShardFromQRCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import-shard-from-qr NAME",
		Short: "Import a single SLIP-39 shard from an animated QR sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic, err := readQRFragments(cmd, app)
			if err != nil {
				return err
			}
			shard, err := slip39.ParseShard(mnemonic)
			if err != nil {
				return err
			}
			if err := app.Shards.Add(args[0], shard); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "imported shard", args[0])
			return nil
		},
	}
}

func readQRFragments(cmd *cobra.Command, app *App) (string, error) {
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
	}
	if !reassembler.IsComplete() {
		return "", hermiterr.Wrap(hermiterr.ErrInvalidQRSequence, "sequence incomplete")
	}
	return reassembler.Decode()
}

func buildExportShardAsPhraseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export-shard-as-phrase NAME",
		Short: "Print a shard's mnemonic phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shard, err := app.Shards.Get(args[0])
			if err != nil {
				return err
			}
			mnemonic, err := shard.Mnemonic()
			if err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), mnemonic)
			return nil
		},
	}
}

func buildExportShardAsQRCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export-shard-as-qr NAME",
		Short: "Emit a shard's mnemonic as an animated QR sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shard, err := app.Shards.Get(args[0])
			if err != nil {
				return err
			}
			mnemonic, err := shard.Mnemonic()
			if err != nil {
				return err
			}

			fragments, err := optical.BuildSequence([]byte(mnemonic))
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
		},
	}
}

func buildCopyShardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "copy-shard OLD NEW",
		Short: "Duplicate a shard under a new name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Shards.Copy(args[0], args[1]); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "copied", args[0], "to", args[1])
			return nil
		},
	}
}

func buildRenameShardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-shard OLD NEW",
		Short: "Rename a shard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Shards.Rename(args[0], args[1]); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "renamed", args[0], "to", args[1])
			return nil
		},
	}
}

func buildDeleteShardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-shard NAME",
		Short: "Delete a shard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Shards.Delete(args[0]); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	}
}
