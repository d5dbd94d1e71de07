package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

const fileSuffix = ".cache"

var safeKeyRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

type fileEntry struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
	Value     []byte    `json:"value"`
}

// FileStore keeps one file per key under a directory, so cached payloads
// survive restarts and are shared by processes on the same host.
type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) (*FileStore, error) {
	return NewFileStoreWithClock(dir, time.Now)
}

func NewFileStoreWithClock(dir string, now func() time.Time) (*FileStore, error) {
	if dir == "" {
		return nil, crerr.New("cache dir is required")
	}
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create cache dir %q", dir)
	}
	return &FileStore{dir: dir, now: now}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	path := s.path(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, crerr.Wrapf(err, "read cache file %q", path)
	}

	var item fileEntry
	if err := sonic.Unmarshal(raw, &item); err != nil || item.Key != key {
		// Corrupt or colliding file: drop it and report a miss.
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !item.ExpiresAt.IsZero() && !item.ExpiresAt.After(s.now()) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, false, crerr.Wrapf(err, "remove expired cache file %q", path)
		}
		return nil, false, nil
	}

	return item.Value, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return nil
	}

	item := fileEntry{Key: key, Value: value}
	if ttl > 0 {
		item.ExpiresAt = s.now().Add(ttl).UTC()
	}
	raw, err := sonic.Marshal(item)
	if err != nil {
		return crerr.Wrap(err, "encode cache entry")
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return crerr.Wrap(err, "create cache temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return crerr.Wrap(err, "write cache temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return crerr.Wrap(err, "close cache temp file")
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return crerr.Wrap(err, "move cache file into place")
	}

	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return crerr.Wrapf(err, "delete cache key %q", key)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	name := key
	if !safeKeyRegex.MatchString(key) {
		sum := sha256.Sum256([]byte(key))
		name = hex.EncodeToString(sum[:])
	}
	return filepath.Join(s.dir, name+fileSuffix)
}
