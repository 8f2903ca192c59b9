package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileStore is a Store backed by a YAML or TOML file. Nested tables are
// flattened into dotted keys, so
//
//	query:
//	  timeout:
//	    seconds: 30
//
// is read with Str("query.timeout.seconds").
type FileStore struct {
	*MapStore
	path   string
	logger *slog.Logger
}

// LoadFile parses path, choosing the format from its extension
// (.yaml, .yml or .toml).
func LoadFile(path string) (*FileStore, error) {
	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		MapStore: NewMapStore(values),
		path:     path,
		logger:   slog.Default(),
	}, nil
}

// WithLogger sets the logger used to report reload failures.
func (f *FileStore) WithLogger(l *slog.Logger) *FileStore {
	if l != nil {
		f.logger = l
	}
	return f
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// Reload re-reads the file. On failure the previous values are kept.
func (f *FileStore) Reload() error {
	values, err := readFile(f.path)
	if err != nil {
		return err
	}
	f.replace(values)
	return nil
}

// Watch reloads the store whenever the file is written, until ctx is done.
// The directory is watched rather than the file so editors that replace the
// file on save keep working. Watch blocks; run it in its own goroutine.
func (f *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", f.path, err)
	}

	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := f.Reload(); err != nil {
				f.logger.Warn("config reload failed, keeping previous values",
					slog.String("path", f.path), slog.Any("error", err))
				continue
			}
			f.logger.Debug("config reloaded", slog.String("path", f.path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("config watcher error", slog.String("path", f.path), slog.Any("error", err))
		}
	}
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse toml config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	out := make(map[string]string)
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(join(prefix, k), child, out)
		}
	case map[any]any:
		for k, child := range val {
			flatten(join(prefix, fmt.Sprint(k)), child, out)
		}
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, scalar(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case []map[string]any:
		// toml arrays of tables are indexed: servers.0.host
		for i, table := range val {
			flatten(join(prefix, strconv.Itoa(i)), table, out)
		}
	default:
		out[prefix] = scalar(val)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
