// Package cli implements Hermit's command-line interface: the wallet and
// shards command trees spec.md §6 documents as the (thin, external) CLI
// surface around the core unlock/sign/shard-management operations.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/unchained-capital/hermit/internal/config"
	"github.com/unchained-capital/hermit/internal/lockstate"
	"github.com/unchained-capital/hermit/internal/psbtsigner"
	"github.com/unchained-capital/hermit/internal/shardstore"
	"github.com/unchained-capital/hermit/internal/wallet"
)

// App holds every dependency a command needs, built once in cmd/hermit's
// main and threaded explicitly into each command's RunE instead of being
// read from package-level globals (Design Note 9).
type App struct {
	Cfg *config.Config
	Log *config.Logger

	Wallet  *lockstate.Wallet
	Shards  *shardstore.Store
	Runner  *shardstore.CommandRunner
	Coord   *psbtsigner.CoordinatorCheck
	Network *chaincfg.Params

	Out    io.Writer
	ErrOut io.Writer
}

// NewApp wires together a complete App from a loaded configuration. The
// wallet starts locked; the caller is responsible for starting and
// stopping its idle timer around the command's lifetime.
func NewApp(cfg *config.Config, network *chaincfg.Params) (*App, error) {
	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err := config.NewLogger(logLevel, cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}
	if cfg.Logging.JSON {
		logger.SetJSONOutput(true)
	}

	root := wallet.NewRoot(network)
	idleTimeout := lockstate.DefaultIdleTimeout
	if cfg.Coordinator.RelockTimeout > 0 {
		idleTimeout = time.Duration(cfg.Coordinator.RelockTimeout) * time.Second
	}
	lw := lockstate.New(root, idleTimeout)

	store := shardstore.New(cfg.GetShardsFile())
	if loadErr := store.Load(); loadErr != nil {
		return nil, loadErr
	}

	runner := shardstore.NewCommandRunner(
		cfg.GetShardsFile(),
		cfg.Commands.PersistShards,
		cfg.Commands.BackupShards,
		cfg.Commands.RestoreBackup,
		cfg.Commands.GetPersistedShards,
	)

	coord, err := psbtsigner.NewCoordinatorCheck(cfg.Coordinator)
	if err != nil {
		return nil, err
	}

	return &App{
		Cfg:     cfg,
		Log:     logger,
		Wallet:  lw,
		Shards:  store,
		Runner:  runner,
		Coord:   coord,
		Network: network,
		Out:     os.Stdout,
		ErrOut:  os.Stderr,
	}, nil
}

// Close releases resources (log file handle, idle timer).
func (a *App) Close() {
	a.Wallet.StopIdleTimer()
	if a.Log != nil {
		_ = a.Log.Close()
	}
}
