// Package main is the entry point for the hermit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/unchained-capital/hermit/internal/cli"
	"github.com/unchained-capital/hermit/internal/config"
	"github.com/unchained-capital/hermit/internal/output"
)

// Build info variables set via ldflags during build.
//
//nolint:gochecknoglobals // Required for ldflags injection at build time
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "hermit:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	config.ApplyEnvironment(cfg)
	for _, w := range cfg.Warnings {
		output.Warn(w)
	}

	network := &chaincfg.MainNetParams
	if config.Testnet() {
		network = &chaincfg.TestNet3Params
	}

	app, err := cli.NewApp(cfg, network)
	if err != nil {
		return err
	}
	defer app.Close()

	root := cli.BuildRootCommand(app)
	return root.Execute()
}
