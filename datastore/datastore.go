// Package datastore is a small JSON-file backed key/value store. Values live in
// memory and are flushed to disk periodically and on Close.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("datastore is closed")

// Config holds configuration options for the DataStore
type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration // 0 disables the background flush
	BackupCount      int           // number of backup files to keep
	Logger           zerolog.Logger
}

// DefaultConfig returns a default configuration
func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
		Logger:           zerolog.Nop(),
	}
}

type DataStore struct {
	mu           sync.RWMutex
	data         map[string]any
	closed       bool
	lastChecksum string

	saveMu sync.Mutex // serializes save; guards lastChecksum

	cfg    *Config
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new DataStore with default configuration
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig creates a new DataStore, loading filePath when it exists.
func NewWithConfig(cfg *Config) (*DataStore, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	ds := &DataStore{
		data: make(map[string]any),
		cfg:  cfg,
	}

	switch _, err := os.Stat(cfg.FilePath); {
	case errors.Is(err, os.ErrNotExist):
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			return nil, fmt.Errorf("create empty JSON file: %w", err)
		}
	case err == nil:
		if err := ds.load(); err != nil {
			return nil, fmt.Errorf("load data from file: %w", err)
		}
	default:
		return nil, fmt.Errorf("check file existence: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if cfg.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}

	return ds, nil
}

// Get retrieves a value by key. Values loaded from disk come back as
// generic JSON (map[string]any), values stored in this process as-is.
func (ds *DataStore) Get(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.closed {
		return nil, false
	}
	v, ok := ds.data[key]
	return v, ok
}

// Put stores a value under key.
func (ds *DataStore) Put(key string, value any) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.data[key] = value
	return nil
}

// Update runs fn with the current value for key while holding the write
// lock and stores what fn returns. If fn fails nothing is stored.
func (ds *DataStore) Update(key string, fn func(current any, exists bool) (any, error)) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	cur, ok := ds.data[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	ds.data[key] = next
	return nil
}

// Delete removes a key-value pair
func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.data, key)
}

// Keys returns all keys in sorted order.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush forces an immediate save to disk
func (ds *DataStore) Flush() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.save()
}

// Close stops the autosave loop and writes the final state.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()

	return ds.save()
}

func (ds *DataStore) save() error {
	ds.saveMu.Lock()
	defer ds.saveMu.Unlock()

	ds.mu.RLock()
	data, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	checksum := checksumOf(data)
	if checksum == ds.lastChecksum {
		return nil
	}

	if ds.cfg.BackupCount > 0 {
		if err := ds.createBackup(); err != nil {
			ds.cfg.Logger.Warn().Err(err).Msg("create backup")
		}
	}

	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}

	actual, err := os.ReadFile(ds.cfg.FilePath)
	if err != nil {
		return fmt.Errorf("read file for verification: %w", err)
	}
	if checksumOf(actual) != checksum {
		return errors.New("file checksum mismatch after write")
	}

	ds.lastChecksum = checksum
	return nil
}

func (ds *DataStore) load() error {
	raw, err := os.ReadFile(ds.cfg.FilePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	if data == nil {
		data = make(map[string]any)
	}

	ds.data = data
	// Checksum the canonical form so an unchanged store is not rewritten
	// just because the file was formatted differently.
	if canonical, err := json.MarshalIndent(data, "", "  "); err == nil {
		ds.lastChecksum = checksumOf(canonical)
	}
	return nil
}

// writeFileAtomic writes to a temp file, syncs it and renames it over the target.
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmp := ds.cfg.FilePath + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, ds.cfg.FilePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) createBackup() error {
	current, err := os.ReadFile(ds.cfg.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s.backup.%s", ds.cfg.FilePath, time.Now().Format("20060102_150405.000000000"))
	if err := os.WriteFile(name, current, 0o644); err != nil {
		return err
	}

	ds.pruneBackups()
	return nil
}

// pruneBackups keeps the newest BackupCount backups. Backup names embed a
// sortable timestamp so lexical order is chronological.
func (ds *DataStore) pruneBackups() {
	matches, err := filepath.Glob(ds.cfg.FilePath + ".backup.*")
	if err != nil || len(matches) <= ds.cfg.BackupCount {
		return
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-ds.cfg.BackupCount] {
		os.Remove(old)
	}
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.cfg.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.save(); err != nil {
				ds.cfg.Logger.Error().Err(err).Msg("auto-save")
			}
		}
	}
}

func checksumOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
