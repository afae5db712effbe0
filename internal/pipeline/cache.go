package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Cache persists stage outputs as one JSON file per stage under dir.
// File presence is the sole hit signal: no TTLs, no content hashes. A single
// run owns the directory exclusively; concurrent runs against the same
// directory are not supported.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(stage string) string {
	return filepath.Join(c.dir, stage+".json")
}

// Has reports whether a payload for the stage is present.
func (c *Cache) Has(stage string) bool {
	_, err := os.Stat(c.path(stage))
	return err == nil
}

// Load unmarshals the stage payload into v. A present but unparsable file
// yields ErrCacheCorrupt so callers can fall back to recomputing.
func (c *Cache) Load(stage string, v any) error {
	data, err := os.ReadFile(c.path(stage))
	if err != nil {
		return fmt.Errorf("read cache %s: %w", stage, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCacheCorrupt, stage, err)
	}
	return nil
}

// Save marshals v and publishes it atomically: the payload is written to a
// temp file in the same directory and renamed into place, so a crash
// mid-write never leaves a file that Has reports but Load cannot parse.
func (c *Cache) Save(stage string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache %s: %w", stage, err)
	}

	tmp, err := os.CreateTemp(c.dir, stage+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache %s: %w", stage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache %s: %w", stage, err)
	}

	if err := os.Rename(tmpName, c.path(stage)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish cache %s: %w", stage, err)
	}
	return nil
}
