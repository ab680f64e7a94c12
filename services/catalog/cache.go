package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// fileCache stores decoded TMDB payloads as JSON files with a TTL. Combined
// credit lists and detail records are re-read on every page of the locally
// paginated flows, so caching them keeps page changes from re-hitting TMDB.
type fileCache struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
}

func newFileCache(fs afero.Fs, dir string, ttlHours int) *fileCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &fileCache{fs: fs, dir: dir, ttl: time.Duration(ttlHours) * time.Hour}
}

// jitteredTTL staggers expiry deterministically per key (base TTL plus up to
// 6 hours derived from the key hash) so a burst of writes does not expire as
// a burst of misses.
func (c *fileCache) jitteredTTL(key string) time.Duration {
	h := sha256.Sum256([]byte(key))
	n := binary.BigEndian.Uint64(h[:8])
	return c.ttl + time.Duration(n%uint64(6*time.Hour))
}

func (c *fileCache) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:16])+".json")
}

func (c *fileCache) get(key string, v any) bool {
	if key == "" {
		return false
	}
	path := c.path(key)
	fi, err := c.fs.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(fi.ModTime()) > c.jitteredTTL(key) {
		_ = c.fs.Remove(path)
		return false
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *fileCache) set(key string, v any) error {
	if key == "" {
		return errors.New("empty cache key")
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := c.path(key)
	tmp := path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return err
	}
	return c.fs.Rename(tmp, path)
}
