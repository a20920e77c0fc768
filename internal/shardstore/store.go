// Package shardstore persists named SLIP-39 shards to disk and runs the
// operator-configured shell hooks that back up and restore that file.
//
// Metadata (shard names, the set held) lives in cleartext; the mnemonic
// content of each shard is only as protected as its own SLIP-39 passphrase
// made it when the shard was built, per spec.md §6. The store itself adds
// no encryption of its own.
package shardstore

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/unchained-capital/hermit/internal/fileutil"
	"github.com/unchained-capital/hermit/internal/slip39"
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// readFileIfExists returns (nil, nil) for a missing file instead of an
// error, matching Config.Load's "missing file means defaults" convention.
func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-configured, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// filePermissions matches the teacher's backup file permission convention.
const filePermissions = 0o600

// record is the on-disk shape of one entry: a shard name mapped to its
// packed bytes, base64-encoded since JSON strings must be valid UTF-8.
type record struct {
	Shards map[string]string `json:"shards"`
}

// Store holds named shards in memory and persists them as JSON, mirroring
// the BSON name-to-opaque-bytes document spec.md §6 describes (see
// DESIGN.md for the BSON-to-JSON substitution rationale).
type Store struct {
	mu     sync.RWMutex
	path   string
	shards map[string]slip39.Shard
}

// New returns an empty store bound to path. Load must be called to read
// any existing file before use.
func New(path string) *Store {
	return &Store{
		path:   path,
		shards: make(map[string]slip39.Shard),
	}
}

// Load reads the store file at path. A missing file is not an error: the
// store starts empty, matching Config.Load's "missing file means defaults"
// convention.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := readFileIfExists(s.path)
	if err != nil {
		return hermiterr.Wrap(err, "reading shard store %s", s.path)
	}
	if data == nil {
		s.shards = make(map[string]slip39.Shard)
		return nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return hermiterr.Wrap(hermiterr.ErrConfigInvalid, "parsing shard store %s: %v", s.path, err)
	}

	shards := make(map[string]slip39.Shard, len(rec.Shards))
	for name, encoded := range rec.Shards {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return hermiterr.Wrap(hermiterr.ErrConfigInvalid, "decoding shard %q: %v", name, err)
		}
		shard, err := slip39.UnpackShare(raw)
		if err != nil {
			return hermiterr.Wrap(hermiterr.ErrConfigInvalid, "unpacking shard %q: %v", name, err)
		}
		shards[name] = shard
	}

	s.shards = shards
	return nil
}

// Save writes the current in-memory contents to the store file atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	rec := record{Shards: make(map[string]string, len(s.shards))}
	for name, shard := range s.shards {
		rec.Shards[name] = base64.StdEncoding.EncodeToString(slip39.PackShare(shard))
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return hermiterr.Wrap(err, "serializing shard store")
	}
	if err := fileutil.WriteAtomic(s.path, data, filePermissions); err != nil {
		return hermiterr.Wrap(err, "writing shard store %s", s.path)
	}
	return nil
}

// Add inserts or overwrites a shard under name and persists the store.
func (s *Store) Add(name string, shard slip39.Shard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shards[name] = shard
	return s.saveLocked()
}

// Get returns the shard stored under name.
func (s *Store) Get(name string) (slip39.Shard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shard, ok := s.shards[name]
	if !ok {
		return slip39.Shard{}, hermiterr.Wrap(hermiterr.ErrNotFound, "shard %q not found", name)
	}
	return shard, nil
}

// Delete removes a shard by name and persists the store.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shards[name]; !ok {
		return hermiterr.Wrap(hermiterr.ErrNotFound, "shard %q not found", name)
	}
	delete(s.shards, name)
	return s.saveLocked()
}

// Rename moves a shard from oldName to newName, failing if oldName is
// absent or newName is already taken.
func (s *Store) Rename(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shard, ok := s.shards[oldName]
	if !ok {
		return hermiterr.Wrap(hermiterr.ErrNotFound, "shard %q not found", oldName)
	}
	if _, taken := s.shards[newName]; taken {
		return hermiterr.Wrap(hermiterr.ErrConfigInvalid, "shard %q already exists", newName)
	}
	delete(s.shards, oldName)
	s.shards[newName] = shard
	return s.saveLocked()
}

// Copy duplicates a shard under a new name, failing if srcName is absent
// or dstName is already taken.
func (s *Store) Copy(srcName, dstName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shard, ok := s.shards[srcName]
	if !ok {
		return hermiterr.Wrap(hermiterr.ErrNotFound, "shard %q not found", srcName)
	}
	if _, taken := s.shards[dstName]; taken {
		return hermiterr.Wrap(hermiterr.ErrConfigInvalid, "shard %q already exists", dstName)
	}
	s.shards[dstName] = shard
	return s.saveLocked()
}

// Names returns every stored shard name, sorted for deterministic display.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.shards))
	for name := range s.shards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
