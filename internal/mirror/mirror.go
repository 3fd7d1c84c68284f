// Package mirror watches a local directory and pushes created or
// modified files into a remote folder, so a drop directory stays in sync
// with the storage backend.
package mirror

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/driftbox/driftbox/pkg/logging"
	"github.com/driftbox/driftbox/pkg/models"
)

// API is the slice of the storage client the mirror needs.
type API interface {
	ListFiles(ctx context.Context, folderID string) ([]models.Item, error)
	Upload(ctx context.Context, folderID, name string, content io.Reader) (*models.Item, error)
	Replace(ctx context.Context, fileID, name string, content io.Reader) (*models.Item, error)
}

// Config holds mirror configuration.
type Config struct {
	LocalDir string
	FolderID string        // remote folder bound to LocalDir ("" for root)
	Debounce time.Duration // quiet period after the last write before syncing
}

// Mirror uploads local changes into the bound remote folder. Files that
// already exist remotely by name are replaced in place, keeping their id.
type Mirror struct {
	api API
	cfg Config
}

// New creates a mirror.
func New(api API, cfg Config) *Mirror {
	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	return &Mirror{api: api, cfg: cfg}
}

// Run watches the directory until the context is cancelled. Events for
// the same file within the debounce window coalesce into one sync.
func (m *Mirror) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(m.cfg.LocalDir); err != nil {
		return err
	}
	logging.Info("mirroring directory",
		zap.String("dir", m.cfg.LocalDir),
		zap.String("folder_id", m.cfg.FolderID))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(m.cfg.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if skip(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watcher error", zap.Error(err))

		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < m.cfg.Debounce {
					continue
				}
				delete(pending, path)
				if err := m.SyncFile(ctx, path); err != nil {
					logging.Error("sync failed",
						zap.String("path", path), zap.Error(err))
				}
			}
		}
	}
}

// SyncFile uploads one local file, replacing the remote file of the same
// name when it exists.
func (m *Mirror) SyncFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // deleted before the debounce fired
		}
		return err
	}
	if info.IsDir() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(path)
	existing, err := m.api.ListFiles(ctx, m.cfg.FolderID)
	if err != nil {
		return err
	}

	for _, item := range existing {
		if item.Name == name {
			_, err := m.api.Replace(ctx, item.ID, name, f)
			if err == nil {
				logging.Info("replaced remote file", zap.String("name", name))
			}
			return err
		}
	}

	_, err = m.api.Upload(ctx, m.cfg.FolderID, name, f)
	if err == nil {
		logging.Info("uploaded new file", zap.String("name", name))
	}
	return err
}

// skip filters out editor droppings and hidden files.
func skip(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".tmp")
}
