package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"nestfix/internal/detect"
	"nestfix/internal/format"
	"nestfix/internal/project"
)

// Current schema version - increment when CachePayload or engine output changes
const diskCacheSchemaVersion uint16 = 1

// maxCachedText bounds the size of a cached result.
const maxCachedText = 64 << 20

// DiskCache stores formatted results on disk, keyed by the hash of the input
// text and the options that shaped the output.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is one cached format.Result.
type CachePayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Kind     uint8 // detect.Kind
	Text     string
	TextLen  uint32
	Fallback bool
	Err      string
}

// OpenDiskCache opens the cache at dir. An empty dir selects
// $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey hashes the input text together with everything that changes the
// output for it.
func CacheKey(text string, kind detect.Kind, opt format.Options) project.Digest {
	return project.Combine(
		project.Sum([]byte(text)),
		[]byte{byte(kind)},
		[]byte(strconv.Itoa(opt.IndentWidth)),
		[]byte(strconv.FormatBool(opt.UseTabs)),
		[]byte(strconv.Itoa(int(diskCacheSchemaVersion))),
	)
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := key.String()
	// two-level fan-out keeps directories small
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a result to the disk cache.
func (c *DiskCache) Put(key project.Digest, res format.Result) (err error) {
	if c == nil {
		return nil
	}
	payload, err := resultToPayload(res)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads a cached result. Entries from another schema are misses.
func (c *DiskCache) Get(key project.Digest) (format.Result, bool, error) {
	if c == nil {
		return format.Result{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return format.Result{}, false, nil
		}
		return format.Result{}, false, err
	}
	defer f.Close()

	var payload CachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return format.Result{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	res, ok := payloadToResult(&payload)
	return res, ok, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func resultToPayload(res format.Result) (*CachePayload, error) {
	n, err := safecast.Conv[uint32](len(res.Text))
	if err != nil || n > maxCachedText {
		return nil, fmt.Errorf("cache: result too large (%d bytes)", len(res.Text))
	}
	payload := &CachePayload{
		Schema:   diskCacheSchemaVersion,
		Kind:     uint8(res.Kind),
		Text:     res.Text,
		TextLen:  n,
		Fallback: res.Fallback,
	}
	if res.Err != nil {
		payload.Err = res.Err.Error()
		var fe *format.FailureError
		if errors.As(res.Err, &fe) && fe.Err != nil {
			payload.Err = fe.Err.Error()
		}
	}
	return payload, nil
}

func payloadToResult(payload *CachePayload) (format.Result, bool) {
	if payload == nil || payload.Schema != diskCacheSchemaVersion {
		return format.Result{}, false
	}
	if int(payload.TextLen) != len(payload.Text) {
		return format.Result{}, false
	}
	res := format.Result{
		Kind:     detect.Kind(payload.Kind),
		Text:     payload.Text,
		Fallback: payload.Fallback,
	}
	if payload.Err != "" {
		res.Err = &format.FailureError{Kind: res.Kind, Err: errors.New(payload.Err)}
	}
	return res, true
}
