package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type localConfig struct {
	Dir string `json:"dir"`
}

type localStore struct {
	dir string
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args interface{}) (Store, error) {
	cfg := &localConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("local content dir is required")
	}
	return &localStore{dir: cfg.Dir}, nil
}

// NewLocal creates a store rooted at dir without going through the registry.
// Used by tests and by tools that already know the content lives on disk.
func NewLocal(dir string) Store {
	return &localStore{dir: dir}
}

func (s *localStore) List(ctx context.Context, dir string, exts ...string) ([]string, error) {
	_ = ctx
	full := filepath.Join(s.dir, filepath.FromSlash(dir))
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !matchExt(entry.Name(), exts) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(dir, "/")+"/"+entry.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *localStore) Read(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	return os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(key)))
}
