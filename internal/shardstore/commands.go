package shardstore

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// CommandRunner executes the four operator-configured shell templates that
// persist, back up, restore, and retrieve the shard store file, grounded
// on the teacher's backup.Service shape (NewService/Create/Restore)
// repurposed from in-process encryption into a thin os/exec delegate,
// since spec.md §6 defines these as external command delegation rather
// than in-process cryptography.
type CommandRunner struct {
	shardsFile   string
	persist      string
	backup       string
	restore      string
	getPersisted string
}

// NewCommandRunner builds a runner bound to shardsFile, the path every
// template's "{0}" placeholder is interpolated to.
func NewCommandRunner(shardsFile, persistShards, backupShards, restoreBackup, getPersistedShards string) *CommandRunner {
	return &CommandRunner{
		shardsFile:   shardsFile,
		persist:      persistShards,
		backup:       backupShards,
		restore:      restoreBackup,
		getPersisted: getPersistedShards,
	}
}

// Persist runs the persistShards hook.
func (r *CommandRunner) Persist(ctx context.Context) error {
	return r.run(ctx, r.persist, "persistShards")
}

// Backup runs the backupShards hook.
func (r *CommandRunner) Backup(ctx context.Context) error {
	return r.run(ctx, r.backup, "backupShards")
}

// Restore runs the restoreBackup hook.
func (r *CommandRunner) Restore(ctx context.Context) error {
	return r.run(ctx, r.restore, "restoreBackup")
}

// GetPersisted runs the getPersistedShards hook and returns its stdout.
func (r *CommandRunner) GetPersisted(ctx context.Context) ([]byte, error) {
	template := strings.ReplaceAll(r.getPersisted, "{0}", r.shardsFile)
	cmd := commandFor(ctx, template)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, hermiterr.Wrap(hermiterr.ErrGeneral, "getPersistedShards failed: %v: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (r *CommandRunner) run(ctx context.Context, template, label string) error {
	interpolated := strings.ReplaceAll(template, "{0}", r.shardsFile)
	cmd := commandFor(ctx, interpolated)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return hermiterr.Wrap(hermiterr.ErrGeneral, "%s failed: %v: %s", label, err, stderr.String())
	}
	return nil
}

// commandFor runs a template through the shell so defaults like
// "gzip -c {0} > {0}.gz" (pipes/redirection) work without Hermit having to
// parse shell syntax itself.
func commandFor(ctx context.Context, template string) *exec.Cmd {
	return exec.CommandContext(ctx, "/bin/sh", "-c", template) //nolint:gosec // G204: template is operator-configured, not user input
}
